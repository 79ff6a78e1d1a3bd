package retriever

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	radsafeerrors "github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/pkg/logging"
	"github.com/sweetpotato0/radsafe/rag/document"
)

// OpenFunc opens the corpus handles. It may hold resources such as database
// pools; returned closers are released once the handles are invalidated and
// no longer in use.
type OpenFunc func(ctx context.Context) (*Corpora, []io.Closer, error)

// generation is one opened set of handles and the number of leases on it.
type generation struct {
	corpora *Corpora
	closers []io.Closer
	leases  int
	retired bool
}

func (g *generation) close() error {
	var errs []error
	for _, c := range g.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Registry caches opened corpora for the process. Readers lease the cached
// handles; Invalidate forces the next caller to reopen, which ingestion does
// after rebuilding an index. Retired handles are closed when their last
// lease is released.
type Registry struct {
	open OpenFunc

	mu      sync.Mutex
	current *generation
}

// NewRegistry wraps open.
func NewRegistry(open OpenFunc) *Registry {
	return &Registry{open: open}
}

// Acquire leases the cached corpora, opening them on first use. The returned
// release must be called exactly once when the caller is done with them.
func (r *Registry) Acquire(ctx context.Context) (*Corpora, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		corpora, closers, err := r.open(ctx)
		if err != nil {
			return nil, nil, err
		}
		r.current = &generation{corpora: corpora, closers: closers}
	}
	g := r.current
	g.leases++

	var once sync.Once
	return g.corpora, func() { once.Do(func() { r.release(g) }) }, nil
}

func (r *Registry) release(g *generation) {
	r.mu.Lock()
	g.leases--
	drained := g.retired && g.leases == 0
	r.mu.Unlock()

	if drained {
		if err := g.close(); err != nil {
			logging.WithComponent("retriever.registry").Warn("closing retired corpora failed", "error", err)
		}
	}
}

// Retrieve implements the workflow retriever on top of the cached corpora.
func (r *Registry) Retrieve(ctx context.Context, query string) ([]document.Chunk, error) {
	corpora, release, err := r.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: open corpora: %w", radsafeerrors.ErrRetrieval, err)
	}
	defer release()
	return corpora.Retrieve(ctx, query)
}

// Invalidate drops the cached handles. Their resources are closed now when
// nothing holds a lease, otherwise by the last release; only an immediate
// close reports its error.
func (r *Registry) Invalidate() error {
	r.mu.Lock()
	g := r.current
	r.current = nil
	if g == nil {
		r.mu.Unlock()
		return nil
	}
	g.retired = true
	idle := g.leases == 0
	r.mu.Unlock()

	if !idle {
		return nil
	}
	return g.close()
}
