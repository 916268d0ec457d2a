package docx

import (
	"regexp"
	"strings"
)

// dollarNodePattern matches a text node whose only content is a dollar sign.
var dollarNodePattern = regexp.MustCompile(`<w:t(?:\s[^>]*[^/>])?>\$</w:t>`)

const (
	runOpen       = "<w:r>"
	runOpenAttrs  = "<w:r "
	runPropsOpen  = "<w:rPr>"
	runPropsClose = "</w:rPr>"
	plainDollar   = `<w:t xml:space="preserve">$</w:t>`
)

// CleanCurrencyRuns removes the run properties that style a lone "$" text node differently from the
// text around it, so the sign renders in the paragraph's default formatting. Only the <w:rPr> block
// directly preceding the node (whitespace aside) is removed.
func CleanCurrencyRuns(body string) string {
	matches := dollarNodePattern.FindAllStringIndex(body, -1)
	if len(matches) == 0 {
		return body
	}

	var sb strings.Builder
	sb.Grow(len(body))

	cursor := 0
	for _, m := range matches {
		nodeStart, nodeEnd := m[0], m[1]
		propsStart := styledPropsStart(body[cursor:nodeStart])
		if propsStart < 0 {
			continue
		}
		sb.WriteString(body[cursor : cursor+propsStart])
		sb.WriteString(plainDollar)
		cursor = nodeEnd
	}
	sb.WriteString(body[cursor:])

	return sb.String()
}

// styledPropsStart returns the offset of the run's own <w:rPr> block when it immediately precedes the
// end of prefix, or -1 when the node is not directly preceded by run properties. The block is the
// first <w:rPr> after the enclosing <w:r> tag, so nested properties of a tracked change
// (<w:rPrChange><w:rPr>...</w:rPr></w:rPrChange>) stay inside the removed span.
func styledPropsStart(prefix string) int {
	trimmed := strings.TrimRight(prefix, " \t\r\n")
	if !strings.HasSuffix(trimmed, runPropsClose) {
		return -1
	}
	runStart := max(strings.LastIndex(trimmed, runOpen), strings.LastIndex(trimmed, runOpenAttrs))
	if runStart < 0 {
		return -1
	}
	propsStart := strings.Index(trimmed[runStart:], runPropsOpen)
	if propsStart < 0 {
		return -1
	}
	return runStart + propsStart
}
