package websearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/sweetpotato0/radsafe/pkg/logging"
)

// DefaultCacheTTL keeps results for an hour.
const DefaultCacheTTL = time.Hour

// Cache stores raw encoded results by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSearcher serves repeated queries from a Cache. Cache failures are
// logged and otherwise ignored; they never fail a search. Errors from the
// underlying searcher are not cached.
type CachedSearcher struct {
	next   Searcher
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSearcher wraps next. A non-positive ttl selects DefaultCacheTTL.
func NewCachedSearcher(next Searcher, cache Cache, ttl time.Duration) *CachedSearcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSearcher{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logging.WithComponent("websearch.cache"),
	}
}

// Search implements Searcher.
func (c *CachedSearcher) Search(ctx context.Context, query string, count int) ([]Result, error) {
	key := CacheKey(query, count)

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("search cache read failed", "error", err)
	} else if ok {
		var results []Result
		if err := json.Unmarshal(raw, &results); err == nil {
			return results, nil
		}
		c.logger.Warn("search cache entry unreadable", "key", key)
	}

	results, err := c.next.Search(ctx, query, count)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(results); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("search cache write failed", "error", err)
		}
	}
	return results, nil
}

// Available reports whether the wrapped searcher can search.
func (c *CachedSearcher) Available() bool {
	return Available(c.next)
}

// CacheKey normalises query and count into a fixed-length key.
func CacheKey(query string, count int) string {
	normalised := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(normalised + "|" + strconv.Itoa(count)))
	return hex.EncodeToString(sum[:])
}
