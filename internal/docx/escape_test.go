package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeXML_EmptyString(t *testing.T) {
	assert.Equal(t, "", EscapeXML(""))
}

func TestEscapeXML_SpecialCharacters(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ampersand", "R&D", "R&amp;D"},
		{"angle brackets", "<b>", "&lt;b&gt;"},
		{"double quote", `"AI"`, "&quot;AI&quot;"},
		{"apostrophe", "I've", "I&apos;ve"},
		{"no specials", "Product Leader", "Product Leader"},
		{"unicode passes through", "résumé – 100%", "résumé – 100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeXML(tt.in))
		})
	}
}

func TestUnescapeXML_ReversesEscape(t *testing.T) {
	in := `Tom & Jerry's <"show">`
	assert.Equal(t, in, UnescapeXML(EscapeXML(in)))
}

func TestUnescapeXML_DoubleEscapedStaysSingleEscaped(t *testing.T) {
	assert.Equal(t, "&lt;", UnescapeXML("&amp;lt;"))
}

func TestUnescapeXML_NumericQuotes(t *testing.T) {
	assert.Equal(t, `it's "x"`, UnescapeXML("it&#39;s &#34;x&#34;"))
}
