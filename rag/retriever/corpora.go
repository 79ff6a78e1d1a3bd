package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	radsafeerrors "github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/pkg/logging"
	"github.com/sweetpotato0/radsafe/rag/document"
	"golang.org/x/sync/errgroup"
)

// Searcher looks up the nearest chunks of one corpus. Implementations must be
// safe for concurrent use.
type Searcher interface {
	Search(ctx context.Context, query string) ([]document.Chunk, error)
}

// Corpora queries the international standards corpus and the national
// legislation corpus together.
type Corpora struct {
	iaea      Searcher
	danishLaw Searcher
	timeout   time.Duration
	logger    *slog.Logger
}

// CorporaOption customises Corpora.
type CorporaOption func(*Corpora)

// WithLookupTimeout bounds each corpus lookup.
func WithLookupTimeout(d time.Duration) CorporaOption {
	return func(c *Corpora) {
		c.timeout = d
	}
}

// NewCorpora pairs the two corpus searchers.
func NewCorpora(iaea, danishLaw Searcher, opts ...CorporaOption) (*Corpora, error) {
	if iaea == nil || danishLaw == nil {
		return nil, fmt.Errorf("both corpus searchers are required")
	}
	c := &Corpora{
		iaea:      iaea,
		danishLaw: danishLaw,
		logger:    logging.WithComponent("retriever"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Retrieve queries both corpora concurrently and waits for both. If either
// lookup fails the whole call fails; partial results are never returned.
// Results are IAEA hits then Danish law hits, deduplicated by chunk key with
// the first occurrence kept.
func (c *Corpora) Retrieve(ctx context.Context, query string) ([]document.Chunk, error) {
	var iaeaDocs, dkDocs []document.Chunk

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		iaeaDocs, err = c.lookup(gctx, c.iaea, query)
		return err
	})
	g.Go(func() (err error) {
		dkDocs, err = c.lookup(gctx, c.danishLaw, query)
		return err
	})
	if err := g.Wait(); err != nil {
		if !radsafeerrors.Is(err, radsafeerrors.ErrRetrieval) {
			err = fmt.Errorf("%w: %w", radsafeerrors.ErrRetrieval, err)
		}
		return nil, err
	}

	merged := document.Dedupe(iaeaDocs, dkDocs)
	c.logger.Debug("corpora searched",
		"query", logging.Trim(query, 120),
		"iaea", len(iaeaDocs),
		"danish_law", len(dkDocs),
		"merged", len(merged),
	)
	return merged, nil
}

func (c *Corpora) lookup(ctx context.Context, s Searcher, query string) ([]document.Chunk, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return s.Search(ctx, query)
}
