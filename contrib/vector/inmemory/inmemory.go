// Package inmemory is a process-local vector.VectorStore for tests, the CLI
// and single-process deployments.
package inmemory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/sweetpotato0/radsafe/vector"
)

const defaultTopK = 10

// InMemoryVectorStore ranks by cosine similarity with a linear scan. Ties
// keep insertion order so results are deterministic.
type InMemoryVectorStore struct {
	mu         sync.RWMutex
	embeddings map[string]*vector.Embedding
	order      []string
}

// NewInMemoryVectorStore returns an empty store.
func NewInMemoryVectorStore() *InMemoryVectorStore {
	return &InMemoryVectorStore{embeddings: make(map[string]*vector.Embedding)}
}

// Upsert implements vector.VectorStore. The batch is validated before any
// embedding is stored.
func (s *InMemoryVectorStore) Upsert(ctx context.Context, embeddings ...*vector.Embedding) error {
	for _, e := range embeddings {
		if err := vector.Validate(e, 0); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range embeddings {
		if _, exists := s.embeddings[e.ID]; !exists {
			s.order = append(s.order, e.ID)
		}
		s.embeddings[e.ID] = clone(e)
	}
	return nil
}

// Search implements vector.VectorStore. Stored vectors of another dimension
// are skipped.
func (s *InMemoryVectorStore) Search(ctx context.Context, queryVector []float32, topK int) ([]*vector.Embedding, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		embedding *vector.Embedding
		score     float32
	}
	hits := make([]hit, 0, len(s.order))
	for _, id := range s.order {
		e := s.embeddings[id]
		if len(e.Vector) != len(queryVector) {
			continue
		}
		hits = append(hits, hit{embedding: e, score: vector.CosineSimilarity(queryVector, e.Vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]*vector.Embedding, 0, min(topK, len(hits)))
	for _, h := range hits[:min(topK, len(hits))] {
		e := clone(h.embedding)
		e.Score = h.score
		out = append(out, e)
	}
	return out, nil
}

// DeleteBySource implements vector.VectorStore.
func (s *InMemoryVectorStore) DeleteBySource(_ context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	s.order = slices.DeleteFunc(s.order, func(id string) bool {
		if s.embeddings[id].Source != source {
			return false
		}
		delete(s.embeddings, id)
		removed++
		return true
	})
	return removed, nil
}

// Clear implements vector.VectorStore.
func (s *InMemoryVectorStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.embeddings = make(map[string]*vector.Embedding)
	s.order = nil
	return nil
}

// Count implements vector.VectorStore.
func (s *InMemoryVectorStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.embeddings), nil
}

func clone(e *vector.Embedding) *vector.Embedding {
	out := *e
	out.Vector = slices.Clone(e.Vector)
	out.Metadata = vector.CloneMetadata(e.Metadata)
	return &out
}
