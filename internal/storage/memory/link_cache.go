// Package memory holds a process-local link cache for single-instance
// deployments and tests.
package memory

import (
	"context"
	"time"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
	gocache "github.com/patrickmn/go-cache"
)

type LinkCache struct {
	cache *gocache.Cache
}

// NewLinkCache builds a cache whose expired entries are purged every
// cleanupInterval.
func NewLinkCache(cleanupInterval time.Duration) *LinkCache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	return &LinkCache{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (c *LinkCache) Get(_ context.Context, code string) (*links.CachedLink, error) {
	v, ok := c.cache.Get(code)
	if !ok {
		return nil, nil
	}
	cached := v.(links.CachedLink)
	return &cached, nil
}

func (c *LinkCache) Set(_ context.Context, code string, value links.CachedLink, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.cache.Set(code, value, ttl)
	return nil
}

func (c *LinkCache) Len() int {
	return c.cache.ItemCount()
}
