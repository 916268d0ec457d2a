package docx

import (
	"strings"
)

// emptyTextNode is what a blanked text node collapses to. The element stays so the run remains valid.
const emptyTextNode = `<w:t/>`

// TextSpan identifies the text nodes that together contain a located string.
// StartOffset is relative to the start node's visible text; EndOffset is relative to the end node's
// visible text and is exclusive.
type TextSpan struct {
	StartNode   int
	EndNode     int
	StartOffset int
	EndOffset   int
}

// SingleNode reports whether the span lies inside one text node.
func (s TextSpan) SingleNode() bool {
	return s.StartNode == s.EndNode
}

// Replace substitutes the first occurrence of original in body's visible text with replacement and
// returns the new body. Formatting markup around the match is preserved.
//
// A match inside a single text node is spliced in place. A match spanning several text nodes (the
// source applied different run formatting mid-phrase) is collapsed: the first overlapping node receives
// the whole replacement and every other overlapping node is blanked. Text that shares the start or end
// node with the match but lies outside it is dropped along with the node's content.
//
// If original cannot be found the body is returned unchanged.
func Replace(body, original, replacement string) string {
	if original == "" {
		return body
	}

	if out, ok := replaceWithinNode(body, original, replacement); ok {
		return out
	}

	nodes := TextNodes(body)
	span, ok := locate(nodes, original)
	if !ok {
		return body
	}
	return collapseSpan(body, nodes, span, replacement)
}

// Locate finds the first occurrence of original across the text nodes of body.
func Locate(body, original string) (TextSpan, bool) {
	if original == "" {
		return TextSpan{}, false
	}
	return locate(TextNodes(body), original)
}

// replaceWithinNode handles the case where original sits entirely inside one text node.
// The escaped form is tried first since that is how the body stores it; the unescaped comparison
// catches quotes and apostrophes that Word stores literally.
func replaceWithinNode(body, original, replacement string) (string, bool) {
	escOriginal := EscapeXML(original)
	escReplacement := EscapeXML(replacement)

	nodes := TextNodes(body)
	for _, n := range nodes {
		if idx := strings.Index(n.Raw, escOriginal); idx >= 0 && !insideEntity(n.Raw, idx) {
			raw := n.Raw[:idx] + escReplacement + n.Raw[idx+len(escOriginal):]
			return spliceNode(body, n, raw), true
		}
	}

	for _, n := range nodes {
		if idx := strings.Index(n.Text, original); idx >= 0 {
			text := n.Text[:idx] + replacement + n.Text[idx+len(original):]
			return spliceNode(body, n, EscapeXML(text)), true
		}
	}

	return body, false
}

// insideEntity reports whether byte offset idx of raw falls inside an entity reference such as &amp;.
func insideEntity(raw string, idx int) bool {
	amp := strings.LastIndexByte(raw[:idx], '&')
	if amp < 0 {
		return false
	}
	return !strings.Contains(raw[amp:idx], ";")
}

// spliceNode rewrites the content of a single node, keeping its opening tag.
func spliceNode(body string, n TextNode, raw string) string {
	element := body[n.Start:n.End]
	openEnd := strings.IndexByte(element, '>') + 1
	open := element[:openEnd]
	if !strings.Contains(open, "xml:space") && raw != strings.TrimSpace(raw) {
		open = `<w:t xml:space="preserve">`
	}
	return body[:n.Start] + open + raw + "</w:t>" + body[n.End:]
}

// locate maps the first occurrence of original in the joined node text back onto nodes.
// Offsets are computed on unescaped text because that is what the search runs against.
func locate(nodes []TextNode, original string) (TextSpan, bool) {
	full := JoinedText(nodes)
	startIdx := strings.Index(full, original)
	if startIdx < 0 {
		return TextSpan{}, false
	}
	endIdx := startIdx + len(original)

	span := TextSpan{StartNode: -1, EndNode: -1}
	charCount := 0
	for i, n := range nodes {
		nodeLen := n.Len()
		if span.StartNode == -1 && charCount+nodeLen > startIdx {
			span.StartNode = i
			span.StartOffset = startIdx - charCount
		}
		if charCount+nodeLen >= endIdx {
			span.EndNode = i
			span.EndOffset = endIdx - charCount
			break
		}
		charCount += nodeLen
	}

	if span.StartNode == -1 || span.EndNode == -1 {
		return TextSpan{}, false
	}
	return span, true
}

// collapseSpan writes replacement into the first node of span and blanks the rest.
func collapseSpan(body string, nodes []TextNode, span TextSpan, replacement string) string {
	var sb strings.Builder
	sb.Grow(len(body) + len(replacement))

	cursor := 0
	for i := span.StartNode; i <= span.EndNode; i++ {
		n := nodes[i]
		sb.WriteString(body[cursor:n.Start])
		if i == span.StartNode {
			sb.WriteString(`<w:t xml:space="preserve">`)
			sb.WriteString(EscapeXML(replacement))
			sb.WriteString(`</w:t>`)
		} else {
			sb.WriteString(emptyTextNode)
		}
		cursor = n.End
	}
	sb.WriteString(body[cursor:])

	return sb.String()
}
