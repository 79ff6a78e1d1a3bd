package embedder

import (
	"context"
	"fmt"

	"github.com/sweetpotato0/radsafe/rag/document"
	"github.com/sweetpotato0/radsafe/vector"
)

// Embedder exposes methods tailored for RAG components.
type Embedder interface {
	EmbedDocuments(ctx context.Context, chunks []document.Chunk) ([][]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// VectorAdapter bridges the generic vector.Embedder interface into a rag Embedder.
type VectorAdapter struct {
	base      vector.Embedder
	batchSize int
}

// NewVectorAdapter creates a new adapter. Documents are embedded in batches
// of batchSize; a non-positive value selects 64.
func NewVectorAdapter(base vector.Embedder, batchSize int) *VectorAdapter {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &VectorAdapter{base: base, batchSize: batchSize}
}

// EmbedDocuments embeds chunk texts in batches, preserving order.
func (v *VectorAdapter) EmbedDocuments(ctx context.Context, chunks []document.Chunk) ([][]float32, error) {
	if v == nil || v.base == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	out := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += v.batchSize {
		end := min(start+v.batchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		vecs, err := v.base.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// EmbedQuery embeds the query string.
func (v *VectorAdapter) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if v == nil || v.base == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	return v.base.Embed(ctx, query)
}
