// Package constraints post-processes rewritten CV content so it fits the layout of the source document.
package constraints

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-tailor/internal/types"
)

// Field identifies which part of the CV a value belongs to.
type Field string

// Field constants
const (
	FieldTitle   Field = "title"
	FieldSummary Field = "summary"
	FieldBullet  Field = "bullet"
	FieldSkills  Field = "skills"
)

// TruncationStrategy names how an over-long value is cut back.
type TruncationStrategy string

const (
	// TruncateNone leaves the value as-is.
	TruncateNone TruncationStrategy = "none"
	// TruncateWords keeps the first MaxWords words and terminates them with a period.
	TruncateWords TruncationStrategy = "words"
	// TruncateSegments keeps the first MaxSegments separator-delimited segments.
	TruncateSegments TruncationStrategy = "segments"
)

const (
	// DefaultMaxBulletWords keeps a bullet on two lines of the source layout.
	DefaultMaxBulletWords = 30
	// DefaultMaxSkillsChars keeps the skills line on two lines of the source layout.
	DefaultMaxSkillsChars = 140
	// DefaultMaxSkillSegments is how many skills survive truncation.
	DefaultMaxSkillSegments = 10
	// DefaultSkillSeparator separates entries on the skills line.
	DefaultSkillSeparator = " | "
)

// Rule is the layout policy applied to one field.
type Rule struct {
	MaxWords      int                `json:"max_words,omitempty" yaml:"max_words,omitempty" validate:"gte=0"`
	MaxChars      int                `json:"max_chars,omitempty" yaml:"max_chars,omitempty" validate:"gte=0"`
	Separator     string             `json:"separator,omitempty" yaml:"separator,omitempty"`
	MaxSegments   int                `json:"max_segments,omitempty" yaml:"max_segments,omitempty" validate:"gte=0"`
	Strategy      TruncationStrategy `json:"strategy,omitempty" yaml:"strategy,omitempty" validate:"omitempty,oneof=none words segments"`
	NormalizeDash bool               `json:"normalize_dash,omitempty" yaml:"normalize_dash,omitempty"`
}

// Rules maps each field to its policy.
type Rules map[Field]Rule

// DefaultRules returns the policies that match the reference CV layout.
func DefaultRules() Rules {
	return Rules{
		FieldTitle:   {Strategy: TruncateNone},
		FieldSummary: {Strategy: TruncateNone, NormalizeDash: true},
		FieldBullet: {
			MaxWords:      DefaultMaxBulletWords,
			Strategy:      TruncateWords,
			NormalizeDash: true,
		},
		FieldSkills: {
			MaxChars:    DefaultMaxSkillsChars,
			Separator:   DefaultSkillSeparator,
			MaxSegments: DefaultMaxSkillSegments,
			Strategy:    TruncateSegments,
		},
	}
}

// Rule returns the policy for field, falling back to the default policy.
func (r Rules) Rule(field Field) Rule {
	if rule, ok := r[field]; ok {
		return rule
	}
	return DefaultRules()[field]
}

// dashReplacer maps em and en dashes to a plain hyphen.
var dashReplacer = strings.NewReplacer("—", "-", "–", "-")

// NormalizeDashes replaces em dashes and en dashes with a hyphen.
func NormalizeDashes(s string) string {
	return dashReplacer.Replace(s)
}

// Enforce applies rule to value. It never consults the document, only the candidate string.
func Enforce(field Field, value string, rule Rule) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}

	if rule.NormalizeDash {
		value = NormalizeDashes(value)
	}

	switch rule.Strategy {
	case TruncateWords:
		if rule.MaxWords > 0 {
			if count := WordCount(value); count > rule.MaxWords {
				log.Printf("[CONSTRAINTS] %s too long (%d words), truncating to %d words", field, count, rule.MaxWords)
				value = TruncateToWords(value, rule.MaxWords)
			}
		}
	case TruncateSegments:
		if rule.MaxChars > 0 && utf8.RuneCountInString(value) > rule.MaxChars {
			log.Printf("[CONSTRAINTS] %s too long (%d chars), truncating to %d", field, utf8.RuneCountInString(value), rule.MaxChars)
			value = TruncateSegmentList(value, rule.Separator, rule.MaxSegments, rule.MaxChars)
		}
	}

	return value
}

// EnforcePayload returns a copy of payload with every field constrained by rules.
func EnforcePayload(payload *types.RewritePayload, rules Rules) *types.RewritePayload {
	if payload == nil {
		return nil
	}

	out := &types.RewritePayload{
		Title:   Enforce(FieldTitle, payload.Title, rules.Rule(FieldTitle)),
		Summary: Enforce(FieldSummary, payload.Summary, rules.Rule(FieldSummary)),
		Skills:  Enforce(FieldSkills, payload.Skills, rules.Rule(FieldSkills)),
		Bullets: make([]types.BulletReplacement, len(payload.Bullets)),
	}
	bulletRule := rules.Rule(FieldBullet)
	for i, b := range payload.Bullets {
		out.Bullets[i] = types.BulletReplacement{
			Original: b.Original,
			Tailored: Enforce(FieldBullet, b.Tailored, bulletRule),
		}
	}
	return out
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// TruncateToWords keeps the first maxWords words, joined by single spaces, and ends them with a period.
func TruncateToWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "."
}

// TruncateSegmentList keeps the first maxSegments entries of a separator-delimited list. If the result
// is still longer than maxChars runes, trailing entries are dropped until it fits; a single entry that
// alone exceeds maxChars is cut at maxChars runes.
func TruncateSegmentList(s, separator string, maxSegments, maxChars int) string {
	if separator == "" {
		separator = DefaultSkillSeparator
	}

	segments := strings.Split(s, separator)
	if maxSegments > 0 && len(segments) > maxSegments {
		segments = segments[:maxSegments]
	}

	result := strings.Join(segments, separator)
	if maxChars <= 0 {
		return result
	}
	for len(segments) > 1 && utf8.RuneCountInString(result) > maxChars {
		segments = segments[:len(segments)-1]
		result = strings.Join(segments, separator)
	}
	if utf8.RuneCountInString(result) > maxChars {
		result = strings.TrimSpace(string([]rune(result)[:maxChars]))
	}
	return result
}
