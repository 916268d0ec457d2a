package docx

import (
	"testing"

	"github.com/jonathan/cv-tailor/internal/docx/docxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextNodes_OrderAndUnescape(t *testing.T) {
	body := docxtest.Body(
		docxtest.Paragraph(docxtest.Run("R&amp;D"), docxtest.PlainRun(" lead")),
	)

	nodes := TextNodes(body)
	require.Len(t, nodes, 2)
	assert.Equal(t, "R&amp;D", nodes[0].Raw)
	assert.Equal(t, "R&D", nodes[0].Text)
	assert.Equal(t, 3, nodes[0].Len())
	assert.Equal(t, " lead", nodes[1].Text)
	assert.Equal(t, "<w:t>"+" lead"+"</w:t>", body[nodes[1].Start:nodes[1].End])
}

func TestTextNodes_IgnoresNonTextElements(t *testing.T) {
	body := docxtest.Body(
		`<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>` +
			`<w:r><w:tab/><w:t/></w:r><w:tbl><w:tr><w:tc>` +
			docxtest.Paragraph(docxtest.PlainRun("cell")) +
			`</w:tc></w:tr></w:tbl></w:p>`,
	)

	nodes := TextNodes(body)
	require.Len(t, nodes, 1)
	assert.Equal(t, "cell", nodes[0].Text)
}

func TestPlainText_ParagraphsTabsAndBreaks(t *testing.T) {
	body := docxtest.Body(
		docxtest.Paragraph(docxtest.Run("Product Leader")),
		docxtest.Paragraph(
			docxtest.PlainRun("Hims"),
			`<w:r><w:tab/></w:r>`,
			docxtest.PlainRun("2021"),
		),
		docxtest.Paragraph(
			docxtest.PlainRun("operational"),
			`<w:r><w:br/></w:r>`,
			docxtest.PlainRun("expertise."),
		),
	)

	assert.Equal(t, "Product Leader\nHims\t2021\noperational\nexpertise.", PlainText(body))
}

func TestPlainText_Unescapes(t *testing.T) {
	body := docxtest.Body(docxtest.Paragraph(docxtest.PlainRun("A &lt;b&gt; &amp; &quot;c&quot;")))
	assert.Equal(t, `A <b> & "c"`, PlainText(body))
}

func TestJoinedText(t *testing.T) {
	nodes := []TextNode{{Text: "AB"}, {Text: ""}, {Text: "C"}}
	assert.Equal(t, "ABC", JoinedText(nodes))
}
