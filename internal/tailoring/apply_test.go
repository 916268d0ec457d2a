package tailoring

import (
	"strings"
	"testing"

	"github.com/jonathan/cv-tailor/internal/constraints"
	"github.com/jonathan/cv-tailor/internal/docx"
	"github.com/jonathan/cv-tailor/internal/docx/docxtest"
	"github.com/jonathan/cv-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultSummary = "I build products that improve people's lives by combining strategic thinking with hands-on design and operational expertise. " +
	"Over the past decade, I've led product strategy for companies generating $100M+ revenue, from early-stage hardware ventures " +
	"to global platforms serving billions. I focus on creating seamless experiences that solve real problems while driving business impact."

func templateBody() string {
	return docxtest.Body(
		docxtest.Paragraph(docxtest.Run("Michael Novack")),
		docxtest.Paragraph(docxtest.Run("Product Leader")),
		docxtest.Paragraph(docxtest.PlainRun(defaultSummary)),
		docxtest.Paragraph(docxtest.PlainRun("Built X, improving Y.")),
		docxtest.Paragraph(docxtest.Run("Grew revenue to "), docxtest.PlainRun("$5M in a year.")),
		docxtest.Paragraph(docxtest.PlainRun(DefaultSkillsAnchor)),
	)
}

func TestApply_EndToEndBullet(t *testing.T) {
	doc, err := docx.Open(docxtest.Archive(templateBody()))
	require.NoError(t, err)
	defer func() { _ = doc.Close() }()

	payload := &types.RewritePayload{
		Bullets: []types.BulletReplacement{
			{Original: "Built X, improving Y.", Tailored: "Launched X, driving 40% growth in Y."},
		},
	}

	body, report := Apply(doc.Body(), doc.PlainText(), payload, Options{})
	doc.SetBody(body)
	out, err := doc.Bytes()
	require.NoError(t, err)

	reopened, err := docx.Open(out)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	text := reopened.PlainText()
	assert.Contains(t, text, "Launched X, driving 40% growth in Y.")
	assert.NotContains(t, text, "Built X, improving Y.")
	assert.Equal(t, 1, report.Applied())

	styles, err := docxtest.ReadMember(out, "word/styles.xml")
	require.NoError(t, err)
	assert.Equal(t, docxtest.StylesXML, styles)
}

func TestApply_AllFields(t *testing.T) {
	body := templateBody()
	payload := &types.RewritePayload{
		Title:   "Senior Product Manager",
		Summary: "Product manager — growth and retention.",
		Bullets: []types.BulletReplacement{
			{Original: "  Built X, improving Y.  ", Tailored: "Launched X, driving 40% growth in Y."},
		},
		Skills: "SQL | Python | Looker",
	}

	out, report := Apply(body, docx.PlainText(body), payload, Options{})
	text := docx.PlainText(out)

	assert.Contains(t, text, "Senior Product Manager")
	assert.NotContains(t, text, "Product Leader")
	assert.Contains(t, text, "Product manager - growth and retention.")
	assert.NotContains(t, text, "I build products")
	assert.Contains(t, text, "Launched X, driving 40% growth in Y.")
	assert.Contains(t, text, "SQL | Python | Looker")
	assert.NotContains(t, text, "Generative AI")
	assert.Equal(t, 4, report.Applied())
	assert.Equal(t, 0, report.Skipped())
}

func TestApply_MissingAnchorsSkipped(t *testing.T) {
	body := docxtest.Body(docxtest.Paragraph(docxtest.PlainRun("Built X, improving Y.")))
	payload := &types.RewritePayload{
		Title:   "Senior Product Manager",
		Summary: "New summary.",
		Bullets: []types.BulletReplacement{
			{Original: "Not in the document.", Tailored: "Something else."},
			{Original: "Built X, improving Y.", Tailored: "Launched X."},
			{Original: "", Tailored: "Orphan."},
		},
		Skills: "SQL",
	}

	out, report := Apply(body, docx.PlainText(body), payload, Options{})

	assert.Equal(t, "Launched X.", docx.PlainText(out))
	assert.Equal(t, 1, report.Applied())
	assert.Equal(t, 5, report.Skipped())
}

func TestApply_BulletConstrained(t *testing.T) {
	body := docxtest.Body(docxtest.Paragraph(docxtest.PlainRun("Built X, improving Y.")))
	long := strings.Repeat("impact ", 40)
	payload := &types.RewritePayload{
		Bullets: []types.BulletReplacement{{Original: "Built X, improving Y.", Tailored: long + "— done"}},
	}

	out, _ := Apply(body, docx.PlainText(body), payload, Options{})
	text := docx.PlainText(out)

	assert.Equal(t, constraints.DefaultMaxBulletWords, constraints.WordCount(text))
	assert.NotContains(t, text, "—")
}

func TestApply_SkillsConstrained(t *testing.T) {
	body := docxtest.Body(docxtest.Paragraph(docxtest.PlainRun(DefaultSkillsAnchor)))
	parts := make([]string, 15)
	for i := range parts {
		parts[i] = "Competency" + string(rune('A'+i))
	}
	payload := &types.RewritePayload{Skills: strings.Join(parts, " | ")}

	out, _ := Apply(body, docx.PlainText(body), payload, Options{})

	assert.Equal(t, strings.Join(parts[:10], " | "), docx.PlainText(out))
}

func TestApply_SummaryAcrossWrappedRuns(t *testing.T) {
	anchors := Anchors{SummaryPattern: `Hello\s+world\.`}

	tests := []struct {
		name string
		body string
	}{
		{
			name: "space kept before break",
			body: docxtest.Body(docxtest.Paragraph(
				docxtest.Run("Hello "), `<w:r><w:br/></w:r>`, docxtest.Run("world."),
			)),
		},
		{
			name: "break without space",
			body: docxtest.Body(docxtest.Paragraph(
				docxtest.Run("Hello"), `<w:r><w:br/></w:r>`, docxtest.Run("world."),
			)),
		},
		{
			name: "single node",
			body: docxtest.Body(docxtest.Paragraph(docxtest.PlainRun("Hello world."))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := &types.RewritePayload{Summary: "Goodbye."}

			out, report := Apply(tt.body, docx.PlainText(tt.body), payload, Options{Anchors: anchors})

			assert.Contains(t, docx.PlainText(out), "Goodbye.")
			assert.NotContains(t, docx.PlainText(out), "Hello")
			require.NotEmpty(t, report.Outcomes)
			assert.True(t, report.Outcomes[1].Applied)
		})
	}
}

func TestApply_BulletAcrossRunsReported(t *testing.T) {
	body := docxtest.Body(docxtest.Paragraph(docxtest.Run("Built X, "), docxtest.PlainRun("improving Y.")))
	payload := &types.RewritePayload{
		Bullets: []types.BulletReplacement{{Original: "Built X, improving Y.", Tailored: "Shipped X."}},
	}

	out, report := Apply(body, docx.PlainText(body), payload, Options{})

	assert.Equal(t, "Shipped X.", docx.PlainText(out))
	require.Len(t, report.Outcomes, 4)
	bullet := report.Outcomes[2]
	assert.Equal(t, KindBullet, bullet.Kind)
	assert.True(t, bullet.Applied)
	assert.Equal(t, "merged 2 runs", bullet.Reason)
}

func TestApply_CurrencyRunsCleaned(t *testing.T) {
	body := docxtest.Body(docxtest.Paragraph(docxtest.Run("$"), docxtest.PlainRun("5M revenue")))

	out, _ := Apply(body, docx.PlainText(body), &types.RewritePayload{}, Options{})

	assert.Contains(t, out, `<w:r><w:t xml:space="preserve">$</w:t></w:r>`)
	assert.Equal(t, "$5M revenue", docx.PlainText(out))
}

func TestApply_NilPayload(t *testing.T) {
	body := templateBody()
	out, report := Apply(body, docx.PlainText(body), nil, Options{})

	assert.Equal(t, body, out)
	assert.Empty(t, report.Outcomes)
}

func TestAnchors_WithDefaults(t *testing.T) {
	a := Anchors{Title: "Engineer"}.WithDefaults()

	assert.Equal(t, "Engineer", a.Title)
	assert.Equal(t, DefaultSummaryPattern, a.SummaryPattern)
	assert.Equal(t, DefaultSkillsAnchor, a.Skills)
	assert.NoError(t, a.Validate())
	assert.Error(t, Anchors{SummaryPattern: "("}.Validate())
}

func TestWhitespaceVariants(t *testing.T) {
	assert.Equal(t, []string{"a b"}, whitespaceVariants("a b"))
	assert.Equal(t, []string{"a\nb c", "a b c", "ab c"}, whitespaceVariants("a\nb c"))
}
