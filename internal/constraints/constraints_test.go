package constraints

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonathan/cv-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func skills(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "Skill" + string(rune('A'+i))
	}
	return strings.Join(parts, DefaultSkillSeparator)
}

func TestEnforce_BulletTruncatedToMaxWords(t *testing.T) {
	rules := DefaultRules()
	got := Enforce(FieldBullet, words(45), rules.Rule(FieldBullet))

	assert.Equal(t, DefaultMaxBulletWords, WordCount(got))
	assert.True(t, strings.HasSuffix(got, "word."))
}

func TestEnforce_BulletWithinLimitUnchanged(t *testing.T) {
	in := "Launched X, driving 40% growth in Y."
	assert.Equal(t, in, Enforce(FieldBullet, in, DefaultRules().Rule(FieldBullet)))
}

func TestEnforce_BulletDashesNormalized(t *testing.T) {
	got := Enforce(FieldBullet, "Led growth — and retention – initiatives", DefaultRules().Rule(FieldBullet))

	assert.Equal(t, "Led growth - and retention - initiatives", got)
	assert.NotContains(t, got, "—")
	assert.NotContains(t, got, "–")
}

func TestEnforce_SummaryDashesNormalized(t *testing.T) {
	got := Enforce(FieldSummary, "Product leader — growth focused", DefaultRules().Rule(FieldSummary))
	assert.Equal(t, "Product leader - growth focused", got)
}

func TestEnforce_SkillsTruncatedToSegments(t *testing.T) {
	// 15 segments of "SkillX" padded past 140 characters.
	parts := make([]string, 15)
	for i := range parts {
		parts[i] = "Competency" + string(rune('A'+i))
	}
	in := strings.Join(parts, DefaultSkillSeparator)
	require.Greater(t, utf8.RuneCountInString(in), DefaultMaxSkillsChars)

	got := Enforce(FieldSkills, in, DefaultRules().Rule(FieldSkills))

	assert.LessOrEqual(t, utf8.RuneCountInString(got), DefaultMaxSkillsChars)
	segments := strings.Split(got, DefaultSkillSeparator)
	assert.LessOrEqual(t, len(segments), DefaultMaxSkillSegments)
	assert.Equal(t, "CompetencyA", segments[0])
}

func TestEnforce_SkillsShortUnchanged(t *testing.T) {
	in := skills(12)
	require.LessOrEqual(t, utf8.RuneCountInString(in), DefaultMaxSkillsChars)

	assert.Equal(t, in, Enforce(FieldSkills, in, DefaultRules().Rule(FieldSkills)))
}

func TestEnforce_EmptyValue(t *testing.T) {
	assert.Equal(t, "", Enforce(FieldBullet, "   ", DefaultRules().Rule(FieldBullet)))
}

func TestTruncateSegmentList_TenSegmentsFit(t *testing.T) {
	// Ten 10-char segments plus separators is 127 chars, so the segment cut alone is enough.
	parts := make([]string, 15)
	for i := range parts {
		parts[i] = "abcdefghi" + string(rune('a'+i))
	}
	got := TruncateSegmentList(strings.Join(parts, " | "), " | ", 10, 140)

	assert.Equal(t, strings.Join(parts[:10], " | "), got)
}

func TestTruncateSegmentList_DropsTrailingSegmentsToFit(t *testing.T) {
	parts := make([]string, 10)
	for i := range parts {
		parts[i] = strings.Repeat("x", 20)
	}
	got := TruncateSegmentList(strings.Join(parts, " | "), " | ", 10, 140)

	assert.LessOrEqual(t, utf8.RuneCountInString(got), 140)
	assert.Len(t, strings.Split(got, " | "), 6)
}

func TestTruncateSegmentList_SingleLongSegmentCut(t *testing.T) {
	got := TruncateSegmentList(strings.Repeat("y", 200), " | ", 10, 140)
	assert.Equal(t, 140, utf8.RuneCountInString(got))
}

func TestTruncateToWords(t *testing.T) {
	assert.Equal(t, "one two.", TruncateToWords("one two three", 2))
	assert.Equal(t, "one two", TruncateToWords("one two", 2))
}

func TestRules_RuleFallsBackToDefaults(t *testing.T) {
	rules := Rules{FieldBullet: {MaxWords: 5, Strategy: TruncateWords}}

	assert.Equal(t, 5, rules.Rule(FieldBullet).MaxWords)
	assert.Equal(t, DefaultMaxSkillsChars, rules.Rule(FieldSkills).MaxChars)
}

func TestEnforcePayload(t *testing.T) {
	payload := &types.RewritePayload{
		Title:   "  Senior Product Manager ",
		Summary: "Growth — retention",
		Bullets: []types.BulletReplacement{
			{Original: "Built X, improving Y.", Tailored: words(40)},
		},
		Skills: "SQL | Python",
	}

	out := EnforcePayload(payload, DefaultRules())

	assert.Equal(t, "Senior Product Manager", out.Title)
	assert.Equal(t, "Growth - retention", out.Summary)
	assert.Equal(t, "Built X, improving Y.", out.Bullets[0].Original)
	assert.Equal(t, DefaultMaxBulletWords, WordCount(out.Bullets[0].Tailored))
	assert.Equal(t, "SQL | Python", out.Skills)

	// The input is not modified.
	assert.Equal(t, 40, WordCount(payload.Bullets[0].Tailored))
}

func TestEnforcePayload_Nil(t *testing.T) {
	assert.Nil(t, EnforcePayload(nil, DefaultRules()))
}

func FuzzEnforce(f *testing.F) {
	f.Add("Led a team — of five – engineers")
	f.Add(words(45))
	f.Add(skills(20))
	f.Add(strings.Repeat("Kubernetes ", 30))
	f.Add("  ")

	rules := DefaultRules()
	f.Fuzz(func(t *testing.T, value string) {
		bullet := Enforce(FieldBullet, value, rules.Rule(FieldBullet))
		assert.LessOrEqual(t, WordCount(bullet), DefaultMaxBulletWords)
		assert.NotContains(t, bullet, "—")
		assert.NotContains(t, bullet, "–")

		summary := Enforce(FieldSummary, value, rules.Rule(FieldSummary))
		assert.NotContains(t, summary, "—")
		assert.NotContains(t, summary, "–")

		skillLine := Enforce(FieldSkills, value, rules.Rule(FieldSkills))
		assert.LessOrEqual(t, utf8.RuneCountInString(skillLine), DefaultMaxSkillsChars)
	})
}
