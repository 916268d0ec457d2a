// Package tailoring applies a rewrite payload to the body of a CV document.
package tailoring

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/jonathan/cv-tailor/internal/constraints"
	"github.com/jonathan/cv-tailor/internal/docx"
	"github.com/jonathan/cv-tailor/internal/types"
)

// Options configures Apply.
type Options struct {
	Anchors Anchors
	Rules   constraints.Rules
}

// Substitution kinds reported by Apply.
const (
	KindTitle   = "title"
	KindSummary = "summary"
	KindBullet  = "bullet"
	KindSkills  = "skills"
)

// Outcome records what happened to one substitution.
type Outcome struct {
	Kind    string
	Applied bool
	Reason  string
}

// Report summarizes the substitutions attempted by Apply.
type Report struct {
	Outcomes []Outcome
}

// Applied returns the number of substitutions that changed the body.
func (r Report) Applied() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Applied {
			n++
		}
	}
	return n
}

// Skipped returns the number of substitutions that left the body unchanged.
func (r Report) Skipped() int {
	return len(r.Outcomes) - r.Applied()
}

func (r *Report) record(kind string, applied bool, reason string) {
	r.Outcomes = append(r.Outcomes, Outcome{Kind: kind, Applied: applied, Reason: reason})
}

// Apply substitutes the payload into body and returns the new body. cvText is the plain text of the
// same document and is used to resolve the summary pattern to its exact source text.
//
// Substitutions run in a fixed order: title, summary, bullets, skills, then currency cleanup. Each one
// is best-effort; an anchor that is missing from the document is skipped and the rest still apply.
func Apply(body, cvText string, payload *types.RewritePayload, opts Options) (string, Report) {
	var report Report
	if payload == nil {
		return body, report
	}

	anchors := opts.Anchors.WithDefaults()
	constrained := constraints.EnforcePayload(payload, opts.Rules)

	// Title
	if constrained.Title != "" {
		body = replaceAndRecord(&report, KindTitle, body, anchors.Title, constrained.Title)
	} else {
		report.record(KindTitle, false, "empty title")
	}

	// Summary
	body = applySummary(&report, body, cvText, anchors.SummaryPattern, constrained.Summary)

	// Bullets
	for _, b := range constrained.Bullets {
		original := strings.TrimSpace(b.Original)
		if original == "" || b.Tailored == "" {
			report.record(KindBullet, false, "empty bullet")
			continue
		}
		body = replaceAndRecord(&report, KindBullet, body, original, b.Tailored)
	}

	// Skills
	if constrained.Skills != "" {
		body = replaceAndRecord(&report, KindSkills, body, anchors.Skills, constrained.Skills)
	} else {
		report.record(KindSkills, false, "empty skills")
	}

	body = docx.CleanCurrencyRuns(body)

	log.Printf("[TAILOR] Applied %d substitutions, skipped %d", report.Applied(), report.Skipped())
	return body, report
}

func replaceAndRecord(report *Report, kind, body, original, replacement string) string {
	out, reason, ok := substitute(body, original, replacement)
	if !ok {
		log.Printf("[TAILOR] %s not found in document: %q", kind, truncate(original, 60))
		report.record(kind, false, "not found")
		return body
	}
	report.record(kind, true, reason)
	return out
}

// substitute replaces original in body. A match spread over several runs is collapsed into the first
// one, which the returned reason notes.
func substitute(body, original, replacement string) (string, string, bool) {
	span, found := docx.Locate(body, original)
	if !found {
		return body, "", false
	}
	out := docx.Replace(body, original, replacement)
	if out == body {
		return body, "", false
	}
	if !span.SingleNode() {
		runs := span.EndNode - span.StartNode + 1
		log.Printf("[TAILOR] %q spans %d runs, merged into one", truncate(original, 60), runs)
		return out, fmt.Sprintf("merged %d runs", runs), true
	}
	return out, "", true
}

// applySummary resolves pattern against cvText and replaces the matched text. The plain text may
// wrap lines where the body has no whitespace (or a single space), so whitespace variants of the match
// are tried in turn.
func applySummary(report *Report, body, cvText, pattern, summary string) string {
	if summary == "" {
		report.record(KindSummary, false, "empty summary")
		return body
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		log.Printf("[TAILOR] invalid summary pattern: %v", err)
		report.record(KindSummary, false, "invalid pattern")
		return body
	}

	match := re.FindString(cvText)
	if match == "" {
		log.Printf("[TAILOR] summary pattern did not match CV text")
		report.record(KindSummary, false, "not found")
		return body
	}

	for _, candidate := range whitespaceVariants(match) {
		if out, reason, ok := substitute(body, candidate, summary); ok {
			report.record(KindSummary, true, reason)
			return out
		}
	}

	log.Printf("[TAILOR] summary matched CV text but not document body")
	report.record(KindSummary, false, "not found")
	return body
}

var lineBreakPattern = regexp.MustCompile(`[ \t]*\n\s*`)

// whitespaceVariants returns s as-is, with whitespace runs collapsed to one space, and with line
// breaks removed (a break rendered from markup that has no text of its own), without duplicates.
func whitespaceVariants(s string) []string {
	variants := []string{s}
	collapsed := strings.Join(strings.Fields(s), " ")
	if collapsed != s {
		variants = append(variants, collapsed)
	}
	joined := strings.Join(strings.Fields(lineBreakPattern.ReplaceAllString(s, "")), " ")
	if joined != collapsed {
		variants = append(variants, joined)
	}
	return variants
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
