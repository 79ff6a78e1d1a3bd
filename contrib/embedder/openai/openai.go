// Package openai implements vector.Embedder on the OpenAI embeddings API.
// Mistral's mistral-embed speaks the same protocol and is reached by pointing
// the client at the Mistral base URL.
package openai

import (
	"context"
	"errors"
	"fmt"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sweetpotato0/radsafe/vector"
)

// Mistral defaults.
const (
	MistralBaseURL   = "https://api.mistral.ai/v1"
	MistralModel     = "mistral-embed"
	MistralDimension = 1024
)

// DefaultBatchSize bounds the inputs of one request. Mistral rejects large
// batches of 800-character chunks well before OpenAI's input limit.
const DefaultBatchSize = 32

var _ vector.Embedder = (*OpenAIEmbedder)(nil)

// OpenAIEmbedder embeds through an OpenAI-compatible endpoint.
type OpenAIEmbedder struct {
	client    openaisdk.Client
	model     openaisdk.EmbeddingModel
	dimension int
	batchSize int
}

type config struct {
	baseURL   string
	model     openaisdk.EmbeddingModel
	dimension int
	batchSize int
}

// Option configures an OpenAIEmbedder.
type Option func(*config)

// WithBaseURL targets an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithModel selects the embedding model.
func WithModel(model openaisdk.EmbeddingModel) Option {
	return func(c *config) { c.model = model }
}

// WithDimension sets the vector length the index expects.
func WithDimension(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.dimension = n
		}
	}
}

// WithBatchSize bounds the inputs sent per request.
func WithBatchSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// New returns an embedder for text-embedding-3-small unless configured
// otherwise.
func New(apiKey string, opts ...Option) *OpenAIEmbedder {
	cfg := config{
		model:     openaisdk.EmbeddingModelTextEmbedding3Small,
		dimension: 1536,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	return &OpenAIEmbedder{
		client:    openaisdk.NewClient(reqOpts...),
		model:     cfg.model,
		dimension: cfg.dimension,
		batchSize: cfg.batchSize,
	}
}

// NewMistral returns an embedder for mistral-embed.
func NewMistral(apiKey string, opts ...Option) *OpenAIEmbedder {
	base := []Option{
		WithBaseURL(MistralBaseURL),
		WithModel(MistralModel),
		WithDimension(MistralDimension),
	}
	return New(apiKey, append(base, opts...)...)
}

// Dimension implements vector.Embedder.
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// Embed implements vector.Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return vectors[0], nil
}

// EmbedBatch implements vector.Embedder, splitting texts into requests of at
// most batchSize inputs.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, batch := range Batches(texts, e.batchSize) {
		vecs, err := e.embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *OpenAIEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: e.model,
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for _, emb := range resp.Data {
		idx := int(emb.Index)
		if idx < 0 || idx >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", idx)
		}
		out[idx] = ConvertVector(emb.Embedding, e.dimension)
	}
	return out, nil
}

// Batches splits texts into consecutive groups of at most size.
func Batches(texts []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]string
	for start := 0; start < len(texts); start += size {
		out = append(out, texts[start:min(start+size, len(texts))])
	}
	return out
}

// ConvertVector narrows input to float32 and pads or truncates it to expected.
func ConvertVector(input []float64, expected int) []float32 {
	vec := make([]float32, expected)
	for i := 0; i < len(input) && i < expected; i++ {
		vec[i] = float32(input[i])
	}
	return vec
}
