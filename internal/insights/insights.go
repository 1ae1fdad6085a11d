// internal/insights/insights.go
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	custom_errors "dev-leaderboard/internal/errors"
	"dev-leaderboard/internal/model"
)

// Model turns a prompt into the raw JSON text of a reply.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Request is what the narrative is generated from.
type Request struct {
	Username    string
	Stats       model.Stats
	BadgeTitles []string
}

// reply is the shape the model is asked to produce. The badge explanations
// travel as a JSON object encoded inside a string because structured output
// cannot describe a map with arbitrary keys.
type reply struct {
	Strengths               string `json:"strengths"`
	BadgeExplanationsString string `json:"badgeExplanationsString"`
	ImprovementSuggestions  string `json:"improvementSuggestions"`
}

var promptTemplate = template.Must(template.New("insights").Parse(
	`You are an AI expert in analyzing developer profiles and providing personalized insights.

Based on the provided data, generate insights into the developer's coding strengths, explain the reasons for their badge acquisition, and suggest tailored improvements.

GitHub Username: {{.Username}}
Total Stars: {{.Stats.TotalStars}}
Total Forks: {{.Stats.TotalForks}}
Total Followers: {{.Stats.TotalFollowers}}
Weekly Commits: {{.Stats.WeeklyCommits}}
Badges: {{range $i, $b := .BadgeTitles}}{{if $i}}, {{end}}{{$b}}{{end}}

Output should be structured as a JSON object matching the following, ensuring 'badgeExplanationsString' is a valid JSON string:
{
  "strengths": "Insight into coding strengths",
  "badgeExplanationsString": "{\"Badge Title 1\": \"Reason for acquiring badge 1\", \"Badge Title 2\": \"Reason for acquiring badge 2\"}",
  "improvementSuggestions": "Tailored improvement suggestions"
}
`))

// Generator produces insights through a Model.
type Generator struct {
	model  Model
	logger *slog.Logger
}

// NewGenerator creates a new Generator instance.
func NewGenerator(m Model, logger *slog.Logger) *Generator {
	return &Generator{model: m, logger: logger}
}

// Generate asks the model for insights. A reply that cannot be decoded,
// including malformed badge explanations, fails with ErrMalformedInsights.
func (g *Generator) Generate(ctx context.Context, req Request) (*model.Insights, error) {
	prompt, err := renderPrompt(req)
	if err != nil {
		return nil, err
	}

	text, err := g.model.Generate(ctx, prompt)
	if err != nil {
		g.logger.Error("Insights model call failed", "username", req.Username, "error", err)
		return nil, fmt.Errorf("generate insights for %s: %w", req.Username, err)
	}

	insights, err := decodeReply(text)
	if err != nil {
		g.logger.Error("Failed to decode insights reply", "username", req.Username, "error", err)
		return nil, err
	}
	return insights, nil
}

func renderPrompt(req Request) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("failed to render insights prompt: %w", err)
	}
	return buf.String(), nil
}

func decodeReply(text string) (*model.Insights, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: model returned no output", custom_errors.ErrMalformedInsights)
	}

	var r reply
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, fmt.Errorf("%w: reply is not valid JSON: %v", custom_errors.ErrMalformedInsights, err)
	}

	explanations := map[string]string{}
	if raw := strings.TrimSpace(r.BadgeExplanationsString); raw != "" {
		if err := json.Unmarshal([]byte(raw), &explanations); err != nil {
			return nil, fmt.Errorf("%w: badge explanations are not a JSON object: %v. Raw string: %s",
				custom_errors.ErrMalformedInsights, err, r.BadgeExplanationsString)
		}
		if explanations == nil {
			explanations = map[string]string{}
		}
	}

	return &model.Insights{
		Strengths:              r.Strengths,
		BadgeExplanations:      explanations,
		ImprovementSuggestions: r.ImprovementSuggestions,
	}, nil
}
