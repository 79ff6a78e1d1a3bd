// Package openai implements llm.Client on the OpenAI chat completions API.
// Mistral exposes the same API and is reached through its base URL.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/sweetpotato0/radsafe/llm"
	"github.com/sweetpotato0/radsafe/message"
)

// Endpoints and default models.
const (
	MistralBaseURL = "https://api.mistral.ai/v1"
	MistralModel   = "mistral-small-latest"
	DefaultModel   = "gpt-4o-mini"
)

var _ llm.Client = (*Provider)(nil)

// Config holds the chat settings. Temperature stays at zero so that grading
// verdicts are repeatable.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
}

// DefaultConfig returns the OpenAI defaults for apiKey.
func DefaultConfig(apiKey string) *Config {
	return &Config{APIKey: apiKey, Model: DefaultModel, MaxTokens: 2000}
}

// MistralConfig returns a config aimed at the Mistral endpoint.
func MistralConfig(apiKey, model string) *Config {
	cfg := DefaultConfig(apiKey)
	cfg.BaseURL = MistralBaseURL
	cfg.Model = MistralModel
	if model != "" {
		cfg.Model = model
	}
	return cfg
}

// Provider is an llm.Client for any OpenAI-compatible endpoint.
type Provider struct {
	config *Config
	client openai.Client
}

// New builds a provider. A nil config means DefaultConfig with no key.
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	return &Provider{config: config, client: openai.NewClient(opts...)}
}

// Model returns the configured model name.
func (p *Provider) Model() string { return p.config.Model }

// Generate implements llm.Client.
func (p *Provider) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if req == nil {
		return nil, errors.New("generate request cannot be nil")
	}

	completion, err := p.client.Chat.Completions.New(ctx, p.params(req))
	if err != nil {
		return nil, fmt.Errorf("chat completion (%s): %w", p.config.Model, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat completion (%s): no choices returned", p.config.Model)
	}
	return &llm.GenerateResponse{Message: message.Assistant(completion.Choices[0].Message.Content)}, nil
}

func (p *Provider) params(req *llm.GenerateRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(p.config.Model),
		Messages:    toParams(req.Messages),
		Temperature: openai.Float(p.config.Temperature),
	}
	if p.config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(p.config.MaxTokens)
	}
	if req.JSON {
		params.ResponseFormat.OfJSONObject = &shared.ResponseFormatJSONObjectParam{}
	}
	return params
}

// toParams maps chat messages onto SDK params. Unknown roles are skipped.
func toParams(msgs []*message.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		switch m.Role {
		case message.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case message.RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case message.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		}
	}
	return out
}
