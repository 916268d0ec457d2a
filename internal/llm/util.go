package llm

import (
	"regexp"
	"strings"
)

// fencePattern matches a markdown code fence with an optional language tag.
var fencePattern = regexp.MustCompile("```[a-zA-Z]*[ \\t]*\\n?")

// CleanJSONBlock strips markdown code fences from a model response. Models often wrap JSON in
// ```json ... ``` blocks even when told not to. If prose surrounds the object, only the outermost
// {...} span is kept.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))

	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return text
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
