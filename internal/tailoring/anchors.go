package tailoring

import (
	"fmt"
	"regexp"
)

// Default anchors of the reference CV template.
const (
	DefaultTitleAnchor = "Product Leader"

	DefaultSummaryPattern = `I build products that improve people's lives by combining strategic thinking with hands-on design and operational\s+expertise\. ` +
		`Over the past decade, I've led product strategy for companies generating \$100M\+ revenue, from early-stage\s+hardware ventures ` +
		`to global platforms serving billions\. I focus on creating seamless experiences that solve real problems\s+while driving business impact\.`

	DefaultSkillsAnchor = "Generative AI | LLM Integration | Personalization Algorithms | Customer Data Platforms | Machine Learning | " +
		"Data Analytics | Go-to-Market (GTM) Strategy | Marketplaces | UX/UI Design | Agile Methodologies | Wireframing | Python | SQL"
)

// Anchors are the fixed source strings of the CV template that get substituted.
type Anchors struct {
	// Title is the literal title text.
	Title string `json:"title" yaml:"title"`
	// SummaryPattern is a regular expression matched against the CV's plain text; whitespace in the
	// template may be wrapped differently, so the pattern should use \s+ between words that can wrap.
	SummaryPattern string `json:"summary_pattern" yaml:"summary_pattern"`
	// Skills is the literal skills line.
	Skills string `json:"skills" yaml:"skills"`
}

// DefaultAnchors returns the anchors of the reference template.
func DefaultAnchors() Anchors {
	return Anchors{
		Title:          DefaultTitleAnchor,
		SummaryPattern: DefaultSummaryPattern,
		Skills:         DefaultSkillsAnchor,
	}
}

// WithDefaults fills empty anchors from DefaultAnchors.
func (a Anchors) WithDefaults() Anchors {
	def := DefaultAnchors()
	if a.Title == "" {
		a.Title = def.Title
	}
	if a.SummaryPattern == "" {
		a.SummaryPattern = def.SummaryPattern
	}
	if a.Skills == "" {
		a.Skills = def.Skills
	}
	return a
}

// Validate checks that the summary pattern compiles.
func (a Anchors) Validate() error {
	if a.SummaryPattern == "" {
		return nil
	}
	if _, err := regexp.Compile(a.SummaryPattern); err != nil {
		return fmt.Errorf("invalid summary pattern: %w", err)
	}
	return nil
}
