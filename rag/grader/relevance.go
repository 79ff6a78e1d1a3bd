package grader

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	radsafeerrors "github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/rag/document"
)

// RelevanceResult is the outcome of FilterRelevant.
type RelevanceResult struct {
	// Relevant keeps the input order.
	Relevant []document.Chunk
	// Irrelevant counts dropped chunks.
	Irrelevant int
}

// FilterRelevant grades every chunk concurrently on a pool sized to the
// number of chunks, capped at the configured worker count. Any grading
// error fails the whole call.
func (g *Grader) FilterRelevant(ctx context.Context, question string, chunks []document.Chunk) (RelevanceResult, error) {
	if len(chunks) == 0 {
		return RelevanceResult{}, nil
	}

	pool, err := ants.NewPool(min(g.workers, len(chunks)))
	if err != nil {
		return RelevanceResult{}, fmt.Errorf("%w: relevance pool: %v", radsafeerrors.ErrGrading, err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		verdicts = make([]bool, len(chunks))
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := range chunks {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			ok, err := g.Relevant(ctx, question, chunks[i])
			if err != nil {
				fail(err)
				return
			}
			verdicts[i] = ok
		}); err != nil {
			wg.Done()
			fail(fmt.Errorf("%w: submit relevance task: %v", radsafeerrors.ErrGrading, err))
			break
		}
	}
	wg.Wait()
	if firstErr != nil {
		return RelevanceResult{}, firstErr
	}

	res := RelevanceResult{Relevant: make([]document.Chunk, 0, len(chunks))}
	for i, ok := range verdicts {
		if ok {
			res.Relevant = append(res.Relevant, chunks[i])
		} else {
			res.Irrelevant++
		}
	}
	g.logger.Debug("relevance graded", "documents", len(chunks), "irrelevant", res.Irrelevant)
	return res, nil
}
