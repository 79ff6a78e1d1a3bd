package websearch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetpotato0/radsafe/rag/document"
)

func TestRestrictToTrusted(t *testing.T) {
	assert.Equal(t, "radon limits (site:iaea.org OR site:retsinformation.dk OR site:sst.dk)", RestrictToTrusted("radon limits"))
}

func TestToChunksOnePerHit(t *testing.T) {
	chunks := ToChunks([]Result{
		{Title: "Dose limits", Link: "https://www.iaea.org/dose", Snippet: "Workers: 20 mSv"},
		{Title: "Title only"},
		{},
	})
	require.Len(t, chunks, 2)
	assert.Equal(t, document.Chunk{Text: "Workers: 20 mSv", Source: "https://www.iaea.org/dose", Type: document.TypeWeb, Metadata: map[string]any{"title": "Dose limits"}}, chunks[0])
	assert.Equal(t, "Title only", chunks[1].Text)
	assert.Equal(t, document.WebSourcePlaceholder, chunks[1].Source)
}

func TestSnippets(t *testing.T) {
	assert.Equal(t, "a\n\nb", Snippets([]Result{{Snippet: "a"}, {Title: "no snippet"}, {Snippet: " b "}}))
	assert.Equal(t, "", Snippets(nil))
}

type countingSearcher struct {
	calls   int
	results []Result
	err     error
}

func (s *countingSearcher) Search(context.Context, string, int) ([]Result, error) {
	s.calls++
	return s.results, s.err
}

type mapCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
	failSet bool
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, false, errors.New("cache down")
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errors.New("cache down")
	}
	m.data[key] = value
	return nil
}

func TestCachedSearcherServesRepeatsFromCache(t *testing.T) {
	next := &countingSearcher{results: []Result{{Title: "t", Link: "l", Snippet: "s"}}}
	cached := NewCachedSearcher(next, &mapCache{data: map[string][]byte{}}, 0)

	for i := 0; i < 3; i++ {
		got, err := cached.Search(context.Background(), "Radon  LIMITS", 5)
		require.NoError(t, err)
		assert.Equal(t, next.results, got)
	}
	_, _ = cached.Search(context.Background(), "radon limits", 5)
	assert.Equal(t, 1, next.calls)

	_, _ = cached.Search(context.Background(), "radon limits", 3)
	assert.Equal(t, 2, next.calls)
}

func TestCachedSearcherIgnoresCacheFailures(t *testing.T) {
	next := &countingSearcher{results: []Result{{Snippet: "s"}}}
	cached := NewCachedSearcher(next, &mapCache{data: map[string][]byte{}, failGet: true, failSet: true}, time.Minute)

	got, err := cached.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCachedSearcherDoesNotCacheErrors(t *testing.T) {
	next := &countingSearcher{err: errors.New("503")}
	cache := &mapCache{data: map[string][]byte{}}
	cached := NewCachedSearcher(next, cache, time.Minute)

	_, err := cached.Search(context.Background(), "q", 5)
	assert.Error(t, err)
	assert.Empty(t, cache.data)
}

type keyedSearcher struct {
	countingSearcher
	hasKey bool
}

func (s *keyedSearcher) Available() bool { return s.hasKey }

func TestAvailable(t *testing.T) {
	assert.False(t, Available(nil))
	assert.True(t, Available(&countingSearcher{}))
	assert.False(t, Available(&keyedSearcher{}))
	assert.True(t, Available(&keyedSearcher{hasKey: true}))

	cache := &mapCache{data: map[string][]byte{}}
	assert.False(t, NewCachedSearcher(&keyedSearcher{}, cache, 0).Available())
	assert.True(t, NewCachedSearcher(&countingSearcher{}, cache, 0).Available())
}
