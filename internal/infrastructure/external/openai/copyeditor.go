package openai

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/presslane/docflow/internal/application/port"
)

// Config holds copy editor configuration
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

// CopyEditor produces advisory copy-editing suggestions with a chat model.
// Suggestions are surfaced to reviewers; they never change document state.
type CopyEditor struct {
	client *openai.Client
	model  string
	temp   float32
	logger *zap.Logger
}

// NewCopyEditor creates a model-backed copy editor
func NewCopyEditor(cfg Config, logger *zap.Logger) *CopyEditor {
	return &CopyEditor{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
		temp:   cfg.Temperature,
		logger: logger,
	}
}

// Suggest asks the model for copy-editing remarks on a body of text
func (ce *CopyEditor) Suggest(ctx context.Context, body string) ([]port.Suggestion, error) {
	// Rely on prompt engineering for JSON output; response_format breaks
	// with some models
	req := openai.ChatCompletionRequest{
		Model:       ce.model,
		Temperature: ce.temp,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildSuggestPrompt(body),
			},
		},
	}

	resp, err := ce.client.CreateChatCompletion(ctx, req)
	if err != nil {
		ce.logger.Error("OpenAI API call failed", zap.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	suggestions, err := parseSuggestions(resp.Choices[0].Message.Content)
	if err != nil {
		ce.logger.Error("Failed to parse OpenAI response",
			zap.Error(err),
			zap.String("content", resp.Choices[0].Message.Content))
		return nil, err
	}

	ce.logger.Info("Copy edit completed", zap.Int("suggestions", len(suggestions)))
	return suggestions, nil
}

// suggestionEnvelope matches the JSON shape the prompt asks for
type suggestionEnvelope struct {
	Suggestions []port.Suggestion `json:"suggestions"`
}

// parseSuggestions decodes the model output, falling back to extracting
// the first JSON object when the model wraps it in prose or markdown
func parseSuggestions(content string) ([]port.Suggestion, error) {
	var envelope suggestionEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err == nil {
		return envelope.Suggestions, nil
	}

	if start := findJSONStart(content); start >= 0 {
		if end := findJSONEnd(content, start); end > start {
			if err := json.Unmarshal([]byte(content[start:end]), &envelope); err == nil {
				return envelope.Suggestions, nil
			}
		}
	}

	return nil, fmt.Errorf("failed to parse suggestions from response")
}

// findJSONStart finds the first '{' in the content
func findJSONStart(content string) int {
	for i := 0; i < len(content); i++ {
		if content[i] == '{' {
			return i
		}
	}
	return -1
}

// findJSONEnd finds the matching closing brace, skipping string literals
func findJSONEnd(content string, start int) int {
	if start < 0 || start >= len(content) || content[start] != '{' {
		return -1
	}

	braceCount := 0
	inString := false
	escapeNext := false

	for i := start; i < len(content); i++ {
		char := content[i]

		if escapeNext {
			escapeNext = false
			continue
		}

		if char == '\\' {
			escapeNext = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if char == '{' {
			braceCount++
		} else if char == '}' {
			braceCount--
			if braceCount == 0 {
				return i + 1
			}
		}
	}

	return -1
}
