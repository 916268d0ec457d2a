// Package rewriting asks a language model to tailor CV content to a job description.
package rewriting

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/cv-tailor/internal/constraints"
	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/prompts"
	"github.com/jonathan/cv-tailor/internal/schemas"
	"github.com/jonathan/cv-tailor/internal/types"
)

const promptFile = "tailoring.json"

// Prompt keys in tailoring.json
const (
	PromptRewrite = "rewrite-cv"
	PromptPolish  = "polish-cv"
)

// Generator runs the rewrite and polish passes against an LLM client.
type Generator struct {
	Client llm.Client
	// Tier is the model tier used for the rewrite pass.
	Tier llm.ModelTier
	// PolishTier is the model tier used for the polish pass; Tier is used when empty.
	PolishTier llm.ModelTier
	// TitleAnchor is the template title the model is told to replace.
	TitleAnchor string
	// MaxBulletWords and MaxSkillsChars are quoted to the model; the constraints package enforces them.
	MaxBulletWords int
	MaxSkillsChars int
}

// NewGenerator returns a Generator with the default tiers and limits.
func NewGenerator(client llm.Client, titleAnchor string) *Generator {
	return &Generator{
		Client:         client,
		Tier:           llm.TierAdvanced,
		PolishTier:     llm.TierAdvanced,
		TitleAnchor:    titleAnchor,
		MaxBulletWords: constraints.DefaultMaxBulletWords,
		MaxSkillsChars: constraints.DefaultMaxSkillsChars,
	}
}

// Generate produces the tailored title, summary, bullets and skills for cvText.
// A response that is not valid RewritePayload JSON is a *ParseError.
func (g *Generator) Generate(ctx context.Context, cvText, jobDescription string) (*types.RewritePayload, error) {
	prompt, err := prompts.Render(promptFile, PromptRewrite, map[string]any{
		"CV":             cvText,
		"JobDescription": jobDescription,
		"TitleAnchor":    g.TitleAnchor,
		"MaxBulletWords": g.MaxBulletWords,
		"MaxSkillsChars": g.MaxSkillsChars,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build rewrite prompt: %w", err)
	}

	responseText, err := g.Client.GenerateJSON(ctx, prompt, g.Tier)
	if err != nil {
		return nil, &APICallError{Message: "rewrite request failed", Cause: err}
	}

	jsonText := llm.CleanJSONBlock(responseText)
	if err := schemas.Validate(schemas.RewritePayload, jsonText); err != nil {
		log.Printf("[REWRITE] Failed to parse model response: %s", truncate(responseText, 500))
		return nil, &ParseError{Message: "failed to parse AI response", Cause: err}
	}

	var payload types.RewritePayload
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, &ParseError{Message: "failed to parse AI response", Cause: err}
	}

	log.Printf("[REWRITE] Received title %q, %d bullets, %d skills chars", payload.Title, len(payload.Bullets), len(payload.Skills))
	ReviewPayload(&payload)
	return &payload, nil
}

// Polish asks the model to make payload read more naturally and merges the result back by position.
// Callers are expected to keep payload when Polish fails.
func (g *Generator) Polish(ctx context.Context, payload *types.RewritePayload) (*types.RewritePayload, error) {
	if payload == nil {
		return nil, fmt.Errorf("payload is required")
	}

	var bullets strings.Builder
	for i, b := range payload.Bullets {
		if i > 0 {
			bullets.WriteString("\n")
		}
		fmt.Fprintf(&bullets, "%d. %s", i+1, b.Tailored)
	}

	prompt, err := prompts.Render(promptFile, PromptPolish, map[string]any{
		"Title":   payload.Title,
		"Summary": payload.Summary,
		"Bullets": bullets.String(),
		"Skills":  payload.Skills,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build polish prompt: %w", err)
	}

	tier := g.PolishTier
	if tier == "" {
		tier = g.Tier
	}
	responseText, err := g.Client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return nil, &APICallError{Message: "polish request failed", Cause: err}
	}

	jsonText := llm.CleanJSONBlock(responseText)
	if err := schemas.Validate(schemas.PolishedContent, jsonText); err != nil {
		return nil, &ParseError{Message: "failed to parse polish response", Cause: err}
	}

	var polished types.PolishedContent
	if err := json.Unmarshal([]byte(jsonText), &polished); err != nil {
		return nil, &ParseError{Message: "failed to parse polish response", Cause: err}
	}

	if len(polished.Bullets) != len(payload.Bullets) {
		log.Printf("[REWRITE] Polish returned %d bullets for %d originals, merging by position", len(polished.Bullets), len(payload.Bullets))
	}
	return MergePolished(payload, &polished), nil
}

// MergePolished overlays polished onto payload: title, summary and skills are replaced and bullet i
// of polished replaces the tailored text of bullet i of payload. Extra polished bullets are dropped.
func MergePolished(payload *types.RewritePayload, polished *types.PolishedContent) *types.RewritePayload {
	return payload.WithPolish(polished)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
