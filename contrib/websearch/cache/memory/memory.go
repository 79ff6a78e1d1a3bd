// Package memory keeps web search results in process memory.
package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sweetpotato0/radsafe/websearch"
)

var _ websearch.Cache = (*Cache)(nil)

// Cache implements websearch.Cache on go-cache.
type Cache struct {
	cache *cache.Cache
}

// New creates a cache whose entries expire after ttl unless Set says
// otherwise; expired entries are purged every cleanup interval.
func New(ttl, cleanup time.Duration) *Cache {
	if ttl <= 0 {
		ttl = websearch.DefaultCacheTTL
	}
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &Cache{cache: cache.New(ttl, cleanup)}
}

// Get implements websearch.Cache.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if x, found := c.cache.Get(key); found {
		raw, ok := x.([]byte)
		return raw, ok, nil
	}
	return nil, false, nil
}

// Set implements websearch.Cache.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
	return nil
}

// Len returns the number of cached entries, expired ones included until purge.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}
