// Package gemini implements vector.Embedder on the Gemini embedding API.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/sweetpotato0/radsafe/vector"
	"google.golang.org/api/option"
)

// Defaults for text-embedding-004.
const (
	DefaultModel     = "text-embedding-004"
	DefaultDimension = 768
)

var _ vector.Embedder = (*Embedder)(nil)

// Embedder implements vector.Embedder with genai.
type Embedder struct {
	client    *genai.Client
	model     *genai.EmbeddingModel
	dimension int
}

// New creates a Gemini embedder. An empty model selects DefaultModel.
func New(ctx context.Context, apiKey, model string, dimension int) (*Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not configured")
	}
	if model == "" {
		model = DefaultModel
	}
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Embedder{
		client:    client,
		model:     client.EmbeddingModel(model),
		dimension: dimension,
	}, nil
}

// Close releases the client connection.
func (e *Embedder) Close() error {
	return e.client.Close()
}

// Dimension return number of embedding dimensions
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed converts text to a vector embedding
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("no embedding returned")
	}
	return fit(resp.Embedding.Values, e.dimension), nil
}

// EmbedBatch converts multiple texts to embeddings
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	batch := e.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}
	resp, err := e.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("batch embed contents: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	out := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		out[i] = fit(emb.Values, e.dimension)
	}
	return out, nil
}

func fit(values []float32, dim int) []float32 {
	vec := make([]float32, dim)
	copy(vec, values)
	return vec
}
