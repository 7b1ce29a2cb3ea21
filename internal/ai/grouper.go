package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pbscan/pbscan-cli/internal/model"
)

// Grouper asks the model to cluster raw component or substrate spellings
// under canonical labels. One call handles one batch of uncached names.
type Grouper struct {
	client *Client
	model  string
}

func NewGrouper(client *Client, model string) *Grouper {
	return &Grouper{client: client, model: model}
}

const grouperSystemPrompt = `You deduplicate free-text names of building components and paint substrates from lead inspection reports.
Group spellings, abbreviations, and typos of the same real-world thing under one canonical Title Case name.
Respond with JSON only: [{"canonical": "Door Frame", "variants": ["door frame", "dr frame"], "confidence": 0.95}, ...].
Every input name must appear in exactly one group's variants. Do not invent names that were not in the input.`

// GroupNames submits one batch of names and returns the model's groups.
func (g *Grouper) GroupNames(ctx context.Context, names []string) ([]model.NameGroup, error) {
	resp, err := g.client.Generate(ctx, GenerateRequest{
		Model: g.model,
		Messages: []Message{
			{Role: "system", Content: grouperSystemPrompt},
			{Role: "user", Content: "Names:\n" + strings.Join(names, "\n")},
		},
		MaxTokens:   2048,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("group names: %w", err)
	}

	var groups []model.NameGroup
	if err := json.Unmarshal([]byte(extractJSON(resp.Content())), &groups); err != nil {
		return nil, fmt.Errorf("group names: unparseable model response: %w", err)
	}
	return groups, nil
}
