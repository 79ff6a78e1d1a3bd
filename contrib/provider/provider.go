// Package provider resolves a caller's model selection into a chat client.
//
// Resolution is explicit: a selection without a usable API key yields a
// MissingCredential result instead of an error deep inside the pipeline, so
// the caller can reject the request before any retrieval work starts.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sweetpotato0/radsafe/contrib/provider/claude"
	"github.com/sweetpotato0/radsafe/contrib/provider/gemini"
	"github.com/sweetpotato0/radsafe/contrib/provider/openai"
	"github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/llm"
)

// Provider names accepted in Selection.Provider.
const (
	Mistral   = "mistral"
	Gemini    = "gemini"
	OpenAI    = "openai"
	Anthropic = "anthropic"
)

// DefaultProvider is used for empty or unknown provider names.
const DefaultProvider = Mistral

type backend struct {
	display string
	models  []string // first entry is the default
}

var catalog = map[string]backend{
	Mistral:   {display: "Mistral", models: []string{"mistral-small-latest"}},
	Gemini:    {display: "Gemini", models: []string{"gemini-2.5-flash-lite", "gemini-2.5-flash", "gemini-2.5-pro"}},
	OpenAI:    {display: "OpenAI", models: []string{"gpt-4o-mini", "gpt-4o"}},
	Anthropic: {display: "Anthropic", models: []string{"claude-3-5-haiku-latest", "claude-sonnet-4-5"}},
}

// Selection is what a caller asks for.
type Selection struct {
	Provider string
	Model    string
	// APIKeys are supplied with the request and win over FallbackKeys.
	APIKeys map[string]string
	// FallbackKeys usually come from config.Settings.APIKeys.
	FallbackKeys map[string]string
}

// Status tags a Resolution.
type Status int

const (
	StatusOK Status = iota
	StatusMissingCredential
)

// Resolution is the outcome of Resolve: either a ready client or the name of
// the provider whose key is missing.
type Resolution struct {
	Status   Status
	Provider string
	Model    string
	Client   llm.Client
}

// OK reports whether a client is available.
func (r Resolution) OK() bool {
	return r.Status == StatusOK && r.Client != nil
}

// Err returns a *errors.CredentialError for a missing credential and nil otherwise.
func (r Resolution) Err() error {
	if r.Status == StatusMissingCredential {
		return &errors.CredentialError{Provider: DisplayName(r.Provider)}
	}
	return nil
}

// Factory builds a client for a provider, model and key.
type Factory func(ctx context.Context, model, apiKey string) (llm.Client, error)

// Resolver turns selections into clients.
type Resolver struct {
	factories map[string]Factory
	timeout   time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFactory replaces the client constructor for one provider.
func WithFactory(provider string, f Factory) Option {
	return func(r *Resolver) {
		if f != nil {
			r.factories[Normalize(provider)] = f
		}
	}
}

// WithTimeout bounds every call of resolved clients.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// NewResolver creates a resolver wired to the real SDK backends.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		factories: map[string]Factory{
			Mistral:   newMistral,
			Gemini:    newGemini,
			OpenAI:    newOpenAI,
			Anthropic: newClaude,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve picks the provider, model and key for sel. A missing key is not an
// error: it is reported through the returned Resolution. The error is set only
// when a backend client cannot be constructed.
func (r *Resolver) Resolve(ctx context.Context, sel Selection) (Resolution, error) {
	name := Normalize(sel.Provider)
	model := ResolveModel(name, sel.Model)
	res := Resolution{Provider: name, Model: model}

	key := lookupKey(name, sel.APIKeys, sel.FallbackKeys)
	if key == "" {
		res.Status = StatusMissingCredential
		return res, nil
	}

	client, err := r.factories[name](ctx, model, key)
	if err != nil {
		return res, fmt.Errorf("failed to create %s client: %w", DisplayName(name), err)
	}
	res.Client = llm.WithTimeout(client, r.timeout)
	return res, nil
}

// Normalize maps a provider name onto a known provider, defaulting to Mistral.
func Normalize(provider string) string {
	name := strings.ToLower(strings.TrimSpace(provider))
	if _, ok := catalog[name]; ok {
		return name
	}
	return DefaultProvider
}

// ResolveModel returns model when it is on the provider's allow-list and the
// provider default otherwise.
func ResolveModel(provider, model string) string {
	s := catalog[Normalize(provider)]
	model = strings.TrimSpace(model)
	for _, m := range s.models {
		if m == model {
			return m
		}
	}
	return s.models[0]
}

// Models lists the allowed models of a provider, default first.
func Models(provider string) []string {
	return append([]string(nil), catalog[Normalize(provider)].models...)
}

// DisplayName returns the human-facing provider name.
func DisplayName(provider string) string {
	return catalog[Normalize(provider)].display
}

func lookupKey(provider string, sources ...map[string]string) string {
	for _, keys := range sources {
		if k := strings.TrimSpace(keys[provider]); k != "" {
			return k
		}
	}
	return ""
}

func newMistral(_ context.Context, model, key string) (llm.Client, error) {
	return openai.New(openai.MistralConfig(key, model)), nil
}

func newOpenAI(_ context.Context, model, key string) (llm.Client, error) {
	cfg := openai.DefaultConfig(key)
	cfg.Model = model
	return openai.New(cfg), nil
}

func newClaude(_ context.Context, model, key string) (llm.Client, error) {
	cfg := claude.DefaultConfig(key)
	cfg.Model = model
	return claude.New(cfg), nil
}

func newGemini(ctx context.Context, model, key string) (llm.Client, error) {
	cfg := gemini.DefaultConfig(key)
	cfg.Model = model
	return gemini.New(ctx, cfg)
}
