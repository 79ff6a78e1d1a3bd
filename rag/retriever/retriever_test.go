package retriever

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetpotato0/radsafe/contrib/vector/inmemory"
	radsafeerrors "github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/rag/chunking"
	"github.com/sweetpotato0/radsafe/rag/document"
	"github.com/sweetpotato0/radsafe/rag/embedder"
)

// keywordEmbedder maps text onto counts of a fixed vocabulary.
type keywordEmbedder struct {
	vocab []string
}

func (k keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	text = strings.ToLower(text)
	vec := make([]float32, len(k.vocab)+1)
	for i, w := range k.vocab {
		vec[i] = float32(strings.Count(text, w))
	}
	vec[len(k.vocab)] = 0.01
	return vec, nil
}

func (k keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, _ := k.Embed(ctx, t)
		out = append(out, v)
	}
	return out, nil
}

func (k keywordEmbedder) Dimension() int { return len(k.vocab) + 1 }

func newTestRetriever(t *testing.T, collection string) *Retriever {
	t.Helper()
	emb := embedder.NewVectorAdapter(keywordEmbedder{vocab: []string{"dose", "radon", "waste"}}, 2)
	r, err := New(collection, inmemory.NewInMemoryVectorStore(), emb, chunking.NewRecursiveChunker(), WithSearchTopK(2))
	require.NoError(t, err)
	return r
}

func TestRetrieverIndexAndSearchKeepProvenance(t *testing.T) {
	ctx := context.Background()
	r := newTestRetriever(t, CollectionDanishLaw)

	n, err := r.IndexDocuments(ctx,
		document.Document{Source: "bek-669.pdf", Content: "Dose limits for workers: dose of 20 mSv.", Metadata: map[string]any{"page": 3}},
		document.Document{Source: "radon.pdf", Content: "Radon in dwellings."},
		document.Document{Source: "waste.pdf", Content: "Radioactive waste storage."},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	hits, err := r.Search(ctx, "what is the dose limit")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "bek-669.pdf", hits[0].Source)
	assert.Equal(t, document.TypeDanishLaw, hits[0].Type)
	assert.Equal(t, 3, hits[0].Metadata["page"])
	assert.NotContains(t, hits[0].Metadata, "source")

	// Re-indexing the same source overwrites instead of duplicating.
	_, err = r.IndexDocuments(ctx, document.Document{Source: "radon.pdf", Content: "Radon in dwellings, updated."})
	require.NoError(t, err)
	count, _ := r.Count(ctx)
	assert.Equal(t, 3, count)
}

func TestReindexDropsStaleChunks(t *testing.T) {
	ctx := context.Background()
	r := newTestRetriever(t, CollectionIAEA)

	long := strings.Repeat("The annual dose limit applies. ", 100)
	n, err := r.IndexDocuments(ctx, document.Document{Source: "gsr-part3.pdf", Content: long})
	require.NoError(t, err)
	require.Greater(t, n, 1)

	n, err = r.IndexDocuments(ctx, document.Document{Source: "gsr-part3.pdf", Content: "The annual dose limit is 20 mSv."})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	count, _ := r.Count(ctx)
	assert.Equal(t, 1, count)
}

func TestNewRejectsUnknownCollection(t *testing.T) {
	_, err := New("radiation-other", inmemory.NewInMemoryVectorStore(), embedder.NewVectorAdapter(keywordEmbedder{}, 0), nil)
	assert.Error(t, err)
}

type stubSearcher struct {
	chunks []document.Chunk
	err    error
	delay  time.Duration
}

func (s stubSearcher) Search(ctx context.Context, _ string) ([]document.Chunk, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.chunks, s.err
}

func TestCorporaMergesIAEAFirstAndDedupes(t *testing.T) {
	shared := strings.Repeat("s", 200)
	iaea := stubSearcher{chunks: []document.Chunk{
		{Text: shared + " iaea tail", Source: "gsr.pdf", Type: document.TypeIAEA},
		{Text: "iaea only", Source: "gsr.pdf", Type: document.TypeIAEA},
	}}
	dk := stubSearcher{chunks: []document.Chunk{
		{Text: shared + " danish tail", Source: "bek.pdf", Type: document.TypeDanishLaw},
		{Text: "danish only", Source: "bek.pdf", Type: document.TypeDanishLaw},
	}}
	c, err := NewCorpora(iaea, dk)
	require.NoError(t, err)

	got, err := c.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, document.TypeIAEA, got[0].Type)
	assert.Equal(t, "iaea only", got[1].Text)
	assert.Equal(t, "danish only", got[2].Text)
}

func TestCorporaFailsWhenEitherLookupFails(t *testing.T) {
	ok := stubSearcher{chunks: []document.Chunk{{Text: "x"}}}
	bad := stubSearcher{err: errors.New("connection refused")}

	c, _ := NewCorpora(ok, bad)
	got, err := c.Retrieve(context.Background(), "q")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, radsafeerrors.ErrRetrieval)

	slow := stubSearcher{delay: time.Second}
	c, _ = NewCorpora(slow, ok, WithLookupTimeout(10*time.Millisecond))
	_, err = c.Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, radsafeerrors.ErrRetrieval)
}

type closeCounter struct{ n *atomic.Int32 }

func (c closeCounter) Close() error {
	c.n.Add(1)
	return nil
}

func TestRegistryCachesUntilInvalidated(t *testing.T) {
	var opens, closes atomic.Int32
	reg := NewRegistry(func(context.Context) (*Corpora, []io.Closer, error) {
		opens.Add(1)
		c, err := NewCorpora(stubSearcher{}, stubSearcher{})
		return c, []io.Closer{closeCounter{&closes}}, err
	})

	for i := 0; i < 3; i++ {
		_, err := reg.Retrieve(context.Background(), "q")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), opens.Load())

	require.NoError(t, reg.Invalidate())
	assert.Equal(t, int32(1), closes.Load())

	_, release, err := reg.Acquire(context.Background())
	require.NoError(t, err)
	release()
	release()
	assert.Equal(t, int32(2), opens.Load())
	assert.Equal(t, int32(1), closes.Load())
}

// poolSearcher fails like a closed database pool once its pool is closed.
type poolSearcher struct {
	closed  *atomic.Bool
	entered chan struct{}
	proceed chan struct{}
}

func (p poolSearcher) Search(context.Context, string) ([]document.Chunk, error) {
	if p.entered != nil {
		close(p.entered)
		<-p.proceed
	}
	if p.closed.Load() {
		return nil, errors.New("sql: database is closed")
	}
	return []document.Chunk{{Text: "dose limits", Source: "gsr-part3.pdf", Type: document.TypeIAEA}}, nil
}

type poolCloser struct{ closed *atomic.Bool }

func (p poolCloser) Close() error {
	p.closed.Store(true)
	return nil
}

func TestInvalidateWaitsForInFlightRetrieval(t *testing.T) {
	var closed atomic.Bool
	entered, proceed := make(chan struct{}), make(chan struct{})
	reg := NewRegistry(func(context.Context) (*Corpora, []io.Closer, error) {
		c, err := NewCorpora(poolSearcher{closed: &closed, entered: entered, proceed: proceed}, stubSearcher{})
		return c, []io.Closer{poolCloser{&closed}}, err
	})

	type outcome struct {
		chunks []document.Chunk
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		chunks, err := reg.Retrieve(context.Background(), "dose limit")
		done <- outcome{chunks, err}
	}()

	<-entered
	require.NoError(t, reg.Invalidate())
	assert.False(t, closed.Load(), "handles closed under an in-flight retrieval")
	close(proceed)

	res := <-done
	require.NoError(t, res.err)
	assert.Len(t, res.chunks, 1)
	assert.True(t, closed.Load(), "retired handles closed after the last retrieval")
}

func TestRegistryOpenFailureIsRetrievalError(t *testing.T) {
	reg := NewRegistry(func(context.Context) (*Corpora, []io.Closer, error) {
		return nil, nil, errors.New("postgres down")
	})
	_, err := reg.Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, radsafeerrors.ErrRetrieval)
}
