// Package websearch defines the web search capability used when the local
// corpora cannot answer a question, plus the helpers shared by backends.
package websearch

import (
	"context"
	"errors"
	"strings"

	"github.com/sweetpotato0/radsafe/rag/document"
)

// DefaultResultCount is the number of hits requested per query.
const DefaultResultCount = 5

// TrustedDomains are the canonical sites of the two corpora.
var TrustedDomains = []string{"iaea.org", "retsinformation.dk", "sst.dk"}

// TrustedDomainFilter is appended to queries restricted to TrustedDomains.
var TrustedDomainFilter = buildFilter(TrustedDomains)

// ErrNoCredential is returned by backends without an API key. Callers treat
// it like an empty result.
var ErrNoCredential = errors.New("web search: no API key configured")

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Searcher runs a web search. Implementations must be safe for concurrent use.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]Result, error)
}

// Availability is implemented by searchers that can tell, without a request,
// whether they are able to search at all (for example a missing API key).
type Availability interface {
	Available() bool
}

// Available reports whether s can run searches. A nil searcher cannot;
// searchers without Availability are assumed able to.
func Available(s Searcher) bool {
	if s == nil {
		return false
	}
	if a, ok := s.(Availability); ok {
		return a.Available()
	}
	return true
}

// RestrictToTrusted appends TrustedDomainFilter to query.
func RestrictToTrusted(query string) string {
	return query + TrustedDomainFilter
}

// ToChunks converts hits into one Web chunk per hit. The snippet is the
// chunk text, falling back to the title; hits with neither are skipped.
func ToChunks(results []Result) []document.Chunk {
	chunks := make([]document.Chunk, 0, len(results))
	for _, r := range results {
		text := strings.TrimSpace(r.Snippet)
		if text == "" {
			text = strings.TrimSpace(r.Title)
		}
		if text == "" {
			continue
		}
		source := strings.TrimSpace(r.Link)
		if source == "" {
			source = document.WebSourcePlaceholder
		}
		var meta map[string]any
		if r.Title != "" {
			meta = map[string]any{"title": r.Title}
		}
		chunks = append(chunks, document.Chunk{
			Text:     text,
			Source:   source,
			Type:     document.TypeWeb,
			Metadata: meta,
		})
	}
	return chunks
}

// Snippets joins the non-empty snippets of results with blank lines.
func Snippets(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if s := strings.TrimSpace(r.Snippet); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func buildFilter(domains []string) string {
	sites := make([]string, 0, len(domains))
	for _, d := range domains {
		sites = append(sites, "site:"+d)
	}
	return " (" + strings.Join(sites, " OR ") + ")"
}
