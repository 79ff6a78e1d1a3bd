package brave

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	radsafeerrors "github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/websearch"
)

func TestSearchParsesResults(t *testing.T) {
	var gotQuery, gotCount, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotCount = r.URL.Query().Get("count")
		gotToken = r.Header.Get("X-Subscription-Token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"Dose <strong>limits</strong>","url":"https://www.iaea.org/dose","description":"Workers: <strong>20 mSv</strong> per year"},
			{"title":"Radon","url":"https://www.sst.dk/radon","description":""}
		]}}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "token", BaseURL: srv.URL, RequestsPerSecond: 100})
	results, err := c.Search(context.Background(), "dose limits (site:iaea.org)", 5)
	require.NoError(t, err)

	assert.Equal(t, "dose limits (site:iaea.org)", gotQuery)
	assert.Equal(t, "5", gotCount)
	assert.Equal(t, "token", gotToken)
	require.Len(t, results, 2)
	assert.Equal(t, websearch.Result{Title: "Dose limits", Link: "https://www.iaea.org/dose", Snippet: "Workers: 20 mSv per year"}, results[0])
}

func TestSearchWithoutKeySkipsNetwork(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := c.Search(context.Background(), "q", 5)
	assert.ErrorIs(t, err, websearch.ErrNoCredential)
}

func TestAvailableFollowsKey(t *testing.T) {
	assert.False(t, New(Config{APIKey: "  "}).Available())
	assert.True(t, New(Config{APIKey: "token"}).Available())

	cached := websearch.NewCachedSearcher(New(Config{}), nil, 0)
	assert.False(t, websearch.Available(cached))
}

func TestSearchStatusErrors(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusTooManyRequests)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL, RequestsPerSecond: 100})
	_, err := c.Search(context.Background(), "q", 5)
	assert.ErrorIs(t, err, radsafeerrors.ErrRateLimited)

	status.Store(http.StatusInternalServerError)
	_, err = c.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.NotErrorIs(t, err, radsafeerrors.ErrRateLimited)
}

func TestSearchUnexpectedShapeIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["not","an","object"]`))
	}))
	defer srv.Close()

	results, err := New(Config{APIKey: "k", BaseURL: srv.URL, RequestsPerSecond: 100}).Search(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
