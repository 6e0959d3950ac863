// Package narrative produces the qualitative review of an application with a
// language model, and a deterministic stand-in when the model cannot be used.
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"underwriting-workers/internal/common/validation"
	"underwriting-workers/internal/models"
)

const responseSchema = `{
  "type": "object",
  "required": ["reasoning", "strengths", "concerns"],
  "properties": {
    "reasoning":       {"type": "string"},
    "strengths":       {"type": "array", "items": {"type": "string"}},
    "concerns":        {"type": "array", "items": {"type": "string"}},
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "riskFactors":     {"type": "array", "items": {"type": "string"}}
  }
}`

var schema = validation.MustCompile(responseSchema)

// Generator asks the chat collaborator for a JSON review and validates it.
type Generator struct {
	client ChatClient
	opts   ChatOptions
}

func NewGenerator(client ChatClient, opts ChatOptions) *Generator {
	return &Generator{client: client, opts: opts}
}

// Generate returns an error for any collaborator, timeout or shape failure.
// Callers substitute Fallback.
func (g *Generator) Generate(ctx context.Context, in Input) (models.NarrativeAnalysis, error) {
	content, err := g.client.Complete(ctx, buildMessages(in), g.opts)
	if err != nil {
		return models.NarrativeAnalysis{}, err
	}
	return Parse(content)
}

type response struct {
	Reasoning       string   `json:"reasoning"`
	Strengths       []string `json:"strengths"`
	Concerns        []string `json:"concerns"`
	Recommendations []string `json:"recommendations"`
	RiskFactors     []string `json:"riskFactors"`
}

// Parse decodes a model reply. Markdown code fences around the JSON are tolerated.
func Parse(content string) (models.NarrativeAnalysis, error) {
	raw := []byte(stripCodeFence(content))

	if err := schema.ValidateBytes(raw).Err(); err != nil {
		return models.NarrativeAnalysis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.NarrativeAnalysis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return models.NarrativeAnalysis{
		Reasoning:       strings.TrimSpace(r.Reasoning),
		Strengths:       nonNil(r.Strengths),
		Concerns:        nonNil(r.Concerns),
		Recommendations: nonNil(r.Recommendations),
		RiskFactors:     nonNil(r.RiskFactors),
		Source:          models.NarrativeFromLLM,
	}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
