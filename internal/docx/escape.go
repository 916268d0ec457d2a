// Package docx reads, edits and repackages the main body of Word (.docx) documents.
package docx

import "strings"

// EscapeXML escapes the five XML special characters in text
// Special characters: & < > " '
func EscapeXML(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + len(text)/4)

	for _, r := range text {
		switch r {
		case '&':
			result.WriteString("&amp;")
		case '<':
			result.WriteString("&lt;")
		case '>':
			result.WriteString("&gt;")
		case '"':
			result.WriteString("&quot;")
		case '\'':
			result.WriteString("&apos;")
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// xmlUnescaper reverses EscapeXML plus the numeric forms Word sometimes writes.
var xmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&apos;", "'",
	"&#39;", "'",
	"&#34;", "\"",
	"&amp;", "&",
)

// UnescapeXML converts escaped text node content back to the literal visible text.
func UnescapeXML(text string) string {
	if !strings.Contains(text, "&") {
		return text
	}
	return xmlUnescaper.Replace(text)
}
