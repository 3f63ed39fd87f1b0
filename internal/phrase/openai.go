// Package phrase backs the persona engine's Generator interface with
// the OpenAI chat-completions API.
package phrase

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/stellarlinkco/kazubot/internal/config"
	"github.com/stellarlinkco/kazubot/internal/persona"
)

const (
	defaultTemperature = 0.3
	jealousTemperature = 0.2
)

type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
}

func NewClient(cfg config.ProviderConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.DefaultMaxTokens
	}

	return &Client{
		api:       openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Generate produces one persona reply for the user text. Hints are
// appended to the persona system prompt; jealous mode runs colder.
func (c *Client) Generate(ctx context.Context, userText string, mode persona.Mode, hints []string) (string, error) {
	sys := persona.SystemPrompt
	if len(hints) > 0 {
		sys += " " + strings.Join(hints, " ")
	}

	temperature := float32(defaultTemperature)
	if mode == persona.ModeJealous {
		temperature = jealousTemperature
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sys},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
