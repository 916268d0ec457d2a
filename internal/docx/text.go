package docx

import (
	"regexp"
	"strings"
)

// textNodePattern matches a non-empty <w:t> element and captures its raw (escaped) content.
// Self-closing <w:t/> elements carry no text and are not matched.
var textNodePattern = regexp.MustCompile(`<w:t(?:\s[^>]*[^/>])?>([^<]*)</w:t>`)

// plainTextPattern matches the elements that contribute to the visible text of a body.
var plainTextPattern = regexp.MustCompile(`<w:t(?:\s[^>]*[^/>])?>([^<]*)</w:t>|<w:tab\s*/>|<w:(?:br|cr)(?:\s[^>]*)?/>|</w:p>`)

// TextNode is one <w:t> element of a document body.
type TextNode struct {
	Start int    // byte offset of the opening tag in the body
	End   int    // byte offset just past the closing tag
	Raw   string // escaped content as stored in the body
	Text  string // unescaped visible text
}

// Len returns the visible (unescaped) length of the node in bytes.
func (n TextNode) Len() int {
	return len(n.Text)
}

// TextNodes returns the text-bearing <w:t> elements of body in document order.
func TextNodes(body string) []TextNode {
	matches := textNodePattern.FindAllStringSubmatchIndex(body, -1)
	nodes := make([]TextNode, 0, len(matches))
	for _, m := range matches {
		raw := body[m[2]:m[3]]
		nodes = append(nodes, TextNode{
			Start: m[0],
			End:   m[1],
			Raw:   raw,
			Text:  UnescapeXML(raw),
		})
	}
	return nodes
}

// JoinedText concatenates the visible text of nodes without separators.
func JoinedText(nodes []TextNode) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(n.Text)
	}
	return sb.String()
}

// PlainText extracts the visible text of body with one line per paragraph.
// Tabs become '\t' and explicit line breaks become '\n'.
func PlainText(body string) string {
	var sb strings.Builder
	for _, m := range plainTextPattern.FindAllStringSubmatchIndex(body, -1) {
		token := body[m[0]:m[1]]
		switch {
		case m[2] >= 0:
			sb.WriteString(UnescapeXML(body[m[2]:m[3]]))
		case strings.HasPrefix(token, "<w:tab"):
			sb.WriteByte('\t')
		default:
			sb.WriteByte('\n')
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
