// Package claude implements llm.Client on the Anthropic Messages API.
package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sweetpotato0/radsafe/llm"
	"github.com/sweetpotato0/radsafe/message"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-3-5-haiku-latest"

var _ llm.Client = (*Provider)(nil)

// Config holds Claude provider configuration
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
}

// DefaultConfig returns the defaults for apiKey.
func DefaultConfig(apiKey string) *Config {
	return &Config{APIKey: apiKey, Model: DefaultModel, MaxTokens: 2048}
}

// Provider is an llm.Client backed by Claude.
type Provider struct {
	config *Config
	client anthropic.Client
}

// New builds a provider; zero fields of config take their defaults.
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxTokens <= 0 {
		// The Messages API requires max_tokens.
		config.MaxTokens = DefaultConfig("").MaxTokens
	}

	// An empty auth token keeps ANTHROPIC_AUTH_TOKEN from overriding the key.
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey), option.WithAuthToken("")}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	return &Provider{config: config, client: anthropic.NewClient(opts...)}
}

// Model returns the configured model name.
func (p *Provider) Model() string { return p.config.Model }

// Generate implements llm.Client. Claude has no JSON response mode; the
// prompts already ask for JSON and llm.DecodeJSON tolerates fenced replies.
func (p *Provider) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if req == nil {
		return nil, errors.New("generate request cannot be nil")
	}

	resp, err := p.client.Messages.New(ctx, p.params(req.Messages))
	if err != nil {
		return nil, fmt.Errorf("claude messages (%s): %w", p.config.Model, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &llm.GenerateResponse{Message: message.Assistant(text.String())}, nil
}

// params lifts system messages into the system prompt and folds consecutive
// messages of one role into a single turn.
func (p *Provider) params(msgs []*message.Message) anthropic.MessageNewParams {
	var system []string
	var turns []anthropic.MessageParam
	for _, m := range msgs {
		if m == nil {
			continue
		}
		var role anthropic.MessageParamRole
		switch m.Role {
		case message.RoleSystem:
			system = append(system, m.Content)
			continue
		case message.RoleUser:
			role = anthropic.MessageParamRoleUser
		case message.RoleAssistant:
			role = anthropic.MessageParamRoleAssistant
		default:
			continue
		}
		block := anthropic.NewTextBlock(m.Content)
		if n := len(turns); n > 0 && turns[n-1].Role == role {
			turns[n-1].Content = append(turns[n-1].Content, block)
			continue
		}
		turns = append(turns, anthropic.MessageParam{Role: role, Content: []anthropic.ContentBlockParamUnion{block}})
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.config.Model),
		Messages:    turns,
		MaxTokens:   p.config.MaxTokens,
		Temperature: anthropic.Float(p.config.Temperature),
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n")}}
	}
	return params
}
