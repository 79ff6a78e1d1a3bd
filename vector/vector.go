// Package vector defines the similarity index a corpus collection lives in.
package vector

import (
	"context"
	"math"
)

// Embedding is one indexed chunk: its vector, its text and its provenance.
type Embedding struct {
	ID     string
	Vector []float32
	Text   string
	// Source is the document the chunk came from. Re-indexing a document
	// replaces every chunk of the same Source.
	Source   string
	Metadata map[string]any
	// Score is filled by Search; higher is more similar.
	Score float32
}

// VectorStore holds one collection.
type VectorStore interface {
	// Upsert adds or replaces embeddings by ID.
	Upsert(ctx context.Context, embeddings ...*Embedding) error

	// Search returns up to topK embeddings, most similar first.
	Search(ctx context.Context, queryVector []float32, topK int) ([]*Embedding, error)

	// DeleteBySource removes every embedding of source and reports how many
	// were removed.
	DeleteBySource(ctx context.Context, source string) (int, error)

	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Embedder turns text into vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// the lengths differ or either vector is zero.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Validate rejects embeddings a store cannot index. dimension <= 0 accepts
// any non-empty vector.
func Validate(e *Embedding, dimension int) error {
	switch {
	case e == nil:
		return errNil
	case e.ID == "":
		return errNoID
	case len(e.Vector) == 0:
		return errNoVector
	case dimension > 0 && len(e.Vector) != dimension:
		return &DimensionError{Want: dimension, Got: len(e.Vector)}
	}
	return nil
}

// CloneMetadata copies a metadata map; nil stays nil.
func CloneMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
