// internal/insights/gemini.go
package insights

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

var replySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"strengths": {
			Type:        genai.TypeString,
			Description: "Personalized insights into the developer's coding strengths.",
		},
		"badgeExplanationsString": {
			Type:        genai.TypeString,
			Description: `A JSON string where keys are badge titles and values are their explanations. Example: "{\"Star Rank\": \"Awarded for more than 500 stars.\"}"`,
		},
		"improvementSuggestions": {
			Type:        genai.TypeString,
			Description: "Tailored improvement suggestions for the developer.",
		},
	},
	Required: []string{"strengths", "badgeExplanationsString", "improvementSuggestions"},
}

// Gemini is a Model backed by the Gemini API with JSON output enforced.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini API client for modelName.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, model: modelName}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   replySchema,
	})
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", g.model, err)
	}
	return resp.Text(), nil
}
