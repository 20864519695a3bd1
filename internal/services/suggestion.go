package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/splitmate-api/internal/models"
)

// ErrSuggestionsNotConfigured is returned when no suggestion backend is set up.
var ErrSuggestionsNotConfigured = errors.New("item suggestions are not configured")

// ItemSuggester proposes item names for an event.
type ItemSuggester interface {
	SuggestItems(ctx context.Context, event *models.Event) ([]string, error)
}

// OpenAISuggester asks an OpenAI chat model for item ideas.
type OpenAISuggester struct {
	client *openai.Client
	model  string
}

// NewOpenAISuggester returns nil when apiKey is empty.
func NewOpenAISuggester(apiKey string) *OpenAISuggester {
	if apiKey == "" {
		return nil
	}
	return &OpenAISuggester{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// SuggestItems analyzes the event and returns candidate item names
func (s *OpenAISuggester) SuggestItems(ctx context.Context, event *models.Event) ([]string, error) {
	if s == nil || s.client == nil {
		return nil, ErrSuggestionsNotConfigured
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: suggestionPrompt(event),
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseSuggestions(resp.Choices[0].Message.Content)
}

func suggestionPrompt(event *models.Event) string {
	existing := make([]string, 0, len(event.Items))
	for _, item := range event.Items {
		existing = append(existing, item.Name)
	}

	return fmt.Sprintf(`You help a group plan a shared event. Suggest things the group needs to bring or buy.

Event name: %s
Event type: %s
Location: %s
Description:
%s

Items already on the list: %s

Return a JSON array of short item names, for example ["Charcoal", "Paper plates"].

Rules:
- Return an empty array [] if nothing is missing
- Do not repeat items already on the list
- Return only JSON, no explanation`,
		event.Name, event.Type, event.Location, event.Description, strings.Join(existing, ", "))
}

// parseSuggestions accepts the raw model output, with or without a markdown fence
func parseSuggestions(content string) ([]string, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var names []string
	if err := json.Unmarshal([]byte(trimmed), &names); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	return names, nil
}
