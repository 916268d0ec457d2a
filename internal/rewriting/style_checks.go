package rewriting

import (
	"log"
	"regexp"
	"strings"

	"github.com/jonathan/cv-tailor/internal/types"
)

// Common strong action verbs for CV bullets (heuristic check)
var strongVerbs = map[string]bool{
	"achieved": true, "built": true, "created": true, "delivered": true,
	"designed": true, "drove": true, "established": true, "executed": true,
	"grew": true, "launched": true, "led": true, "optimized": true,
	"pioneered": true, "scaled": true, "shipped": true, "spearheaded": true,
	"transformed": true,
}

// fillerPhrases weaken a bullet and are called out in the rewrite prompt.
var fillerPhrases = []string{
	"in order to",
	"was able to",
	"responsible for",
	"helped to",
	"worked on",
}

var digitPattern = regexp.MustCompile(`\d`)

// BulletQuality holds heuristic checks of one tailored bullet
type BulletQuality struct {
	StrongVerb bool
	Quantified bool
	Filler     []string
}

// OK reports whether every check passed.
func (q BulletQuality) OK() bool {
	return q.StrongVerb && q.Quantified && len(q.Filler) == 0
}

// CheckBullet runs the heuristic checks on text
func CheckBullet(text string) BulletQuality {
	textLower := strings.ToLower(strings.TrimSpace(text))
	return BulletQuality{
		StrongVerb: checkStrongVerb(textLower),
		Quantified: checkQuantifiedImpact(text),
		Filler:     findFillerPhrases(textLower),
	}
}

// ReviewPayload logs bullets that fail the heuristic checks. It never changes the payload.
func ReviewPayload(payload *types.RewritePayload) int {
	weak := 0
	for i, b := range payload.Bullets {
		q := CheckBullet(b.Tailored)
		if q.OK() {
			continue
		}
		weak++
		log.Printf("[REWRITE] Bullet %d may be weak (strong verb: %t, quantified: %t, filler: %v)", i+1, q.StrongVerb, q.Quantified, q.Filler)
	}
	return weak
}

// checkStrongVerb checks if text starts with a strong action verb
func checkStrongVerb(textLower string) bool {
	words := strings.Fields(textLower)
	if len(words) == 0 {
		return false
	}

	firstWord := strings.TrimRight(words[0], ".,!?;:")
	if strongVerbs[firstWord] {
		return true
	}

	// Past-tense verbs ending in -ed are usually action verbs
	return strings.HasSuffix(firstWord, "ed") && len(firstWord) > 3
}

// checkQuantifiedImpact checks if text contains numbers or metrics
func checkQuantifiedImpact(text string) bool {
	return digitPattern.MatchString(text) || strings.Contains(text, "%")
}

// findFillerPhrases returns the filler phrases present in textLower
func findFillerPhrases(textLower string) []string {
	var found []string
	for _, phrase := range fillerPhrases {
		if strings.Contains(textLower, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}
