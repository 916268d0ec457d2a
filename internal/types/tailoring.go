// Package types provides type definitions for structured data used throughout the cv-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// BulletReplacement pairs a bullet as it appears in the source CV with its tailored rewrite.
// Pairs with an empty side are kept and skipped when the CV is edited.
type BulletReplacement struct {
	Original string `json:"original"`
	Tailored string `json:"tailored"`
}

// RewritePayload is the structured rewrite produced by the language model for one CV.
type RewritePayload struct {
	Title   string              `json:"title"`
	Summary string              `json:"summary"`
	Bullets []BulletReplacement `json:"bullets"`
	Skills  string              `json:"skills"`
}

// PolishedContent is the output of the polish pass. Bullets are positional: bullet i replaces the
// tailored text of bullet i of the payload that was polished.
type PolishedContent struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Bullets []string `json:"bullets"`
	Skills  string   `json:"skills"`
}

// Clone returns a deep copy of the payload.
func (p *RewritePayload) Clone() *RewritePayload {
	if p == nil {
		return nil
	}
	out := *p
	out.Bullets = make([]BulletReplacement, len(p.Bullets))
	copy(out.Bullets, p.Bullets)
	return &out
}

// WithPolish returns a copy of the payload with polished content merged in. Title, summary and skills
// are replaced wholesale; bullets are matched by position only, never by content, and polished
// bullets beyond the payload's bullet count are ignored.
func (p *RewritePayload) WithPolish(polished *PolishedContent) *RewritePayload {
	out := p.Clone()
	if polished == nil {
		return out
	}

	out.Title = polished.Title
	out.Summary = polished.Summary
	out.Skills = polished.Skills
	for i, bullet := range polished.Bullets {
		if i >= len(out.Bullets) {
			break
		}
		out.Bullets[i].Tailored = bullet
	}
	return out
}

// ExtractJobRequest is the body of POST /api/extract-job.
type ExtractJobRequest struct {
	URL string `json:"url" validate:"required"`
}

// ExtractJobResponse is the success body of POST /api/extract-job.
type ExtractJobResponse struct {
	JobDescription string `json:"jobDescription"`
}

// ErrorResponse is the JSON error body returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
