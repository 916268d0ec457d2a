package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() *RewritePayload {
	return &RewritePayload{
		Title:   "Senior Product Manager",
		Summary: "Product manager focused on growth.",
		Bullets: []BulletReplacement{
			{Original: "Built X, improving Y.", Tailored: "Launched X, driving 40% growth in Y."},
			{Original: "Ran Z.", Tailored: "Scaled Z to 2M users."},
		},
		Skills: "SQL | Python",
	}
}

func TestRewritePayload_WithPolish_PositionalBullets(t *testing.T) {
	payload := samplePayload()
	polished := &PolishedContent{
		Title:   "Senior PM",
		Summary: "Growth-focused product manager.",
		Bullets: []string{"Shipped X, growing Y 40%.", "Grew Z to 2M users.", "extra bullet is ignored"},
		Skills:  "SQL | Python | Looker",
	}

	merged := payload.WithPolish(polished)

	assert.Equal(t, "Senior PM", merged.Title)
	assert.Equal(t, "Growth-focused product manager.", merged.Summary)
	assert.Equal(t, "SQL | Python | Looker", merged.Skills)
	require.Len(t, merged.Bullets, 2)
	assert.Equal(t, "Built X, improving Y.", merged.Bullets[0].Original)
	assert.Equal(t, "Shipped X, growing Y 40%.", merged.Bullets[0].Tailored)
	assert.Equal(t, "Ran Z.", merged.Bullets[1].Original)
	assert.Equal(t, "Grew Z to 2M users.", merged.Bullets[1].Tailored)

	// The input payload is left untouched.
	assert.Equal(t, "Launched X, driving 40% growth in Y.", payload.Bullets[0].Tailored)
}

func TestRewritePayload_WithPolish_FewerBullets(t *testing.T) {
	merged := samplePayload().WithPolish(&PolishedContent{Bullets: []string{"only first"}})

	assert.Equal(t, "only first", merged.Bullets[0].Tailored)
	assert.Equal(t, "Scaled Z to 2M users.", merged.Bullets[1].Tailored)
}

func TestRewritePayload_WithPolish_Nil(t *testing.T) {
	payload := samplePayload()
	assert.Equal(t, payload, payload.WithPolish(nil))
}

func TestRewritePayload_CloneNil(t *testing.T) {
	var p *RewritePayload
	assert.Nil(t, p.Clone())
}
