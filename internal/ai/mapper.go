package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Mapper asks the model to assign spreadsheet headers to canonical fields
// when static alias matching cannot resolve them. The caller validates the
// returned header names against the original list before trusting them.
type Mapper struct {
	client *Client
	model  string
}

func NewMapper(client *Client, model string) *Mapper {
	return &Mapper{client: client, model: model}
}

type mappingReply struct {
	Mappings   map[string]string `json:"mappings"`
	Unmapped   []string          `json:"unmappedColumns"`
	Confidence float64           `json:"confidence"`
}

const mapperSystemPrompt = `You map spreadsheet column headers from XRF lead-paint inspection exports to canonical field names.
Canonical fields: readingId, component, color, leadContent, location, unitNumber, roomType, roomNumber, substrate, side, condition, timestamp.
Respond with JSON only: {"mappings": {"<field>": "<exact header from the list>"}, "unmappedColumns": [...], "confidence": 0.0-1.0}.
Only use header strings exactly as given. Omit fields you cannot map.`

// MapColumns submits the full header list plus sample rows and returns the
// model's field-to-header assignments.
func (m *Mapper) MapColumns(ctx context.Context, headers []string, samples [][]string) (map[string]string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Headers: %s\n", strings.Join(headers, " | "))
	for i, row := range samples {
		fmt.Fprintf(&sb, "Sample row %d: %s\n", i+1, strings.Join(row, " | "))
	}

	resp, err := m.client.Generate(ctx, GenerateRequest{
		Model: m.model,
		Messages: []Message{
			{Role: "system", Content: mapperSystemPrompt},
			{Role: "user", Content: sb.String()},
		},
		MaxTokens:   1024,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("map columns: %w", err)
	}

	var reply mappingReply
	if err := json.Unmarshal([]byte(extractJSON(resp.Content())), &reply); err != nil {
		return nil, fmt.Errorf("map columns: unparseable model response: %w", err)
	}
	return reply.Mappings, nil
}

// extractJSON strips markdown fences and surrounding prose from a model
// response, keeping the outermost JSON object.
func extractJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}
