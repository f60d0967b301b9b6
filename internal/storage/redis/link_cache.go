package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
	goredis "github.com/redis/go-redis/v9"
)

const DefaultLinkCachePrefix = "link:"

// LinkCache stores the redirect projection of a link as JSON under
// prefix+code.
type LinkCache struct {
	client *Client
	prefix string
}

func NewLinkCache(client *Client, prefix string) *LinkCache {
	if prefix == "" {
		prefix = DefaultLinkCachePrefix
	}
	return &LinkCache{client: client, prefix: prefix}
}

func (c *LinkCache) Get(ctx context.Context, code string) (*links.CachedLink, error) {
	raw, err := c.client.rdb.Get(ctx, c.prefix+code).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached link: %w", err)
	}

	var cached links.CachedLink
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("decode cached link: %w", err)
	}
	return &cached, nil
}

func (c *LinkCache) Set(ctx context.Context, code string, value links.CachedLink, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached link: %w", err)
	}
	if err := c.client.rdb.Set(ctx, c.prefix+code, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set cached link: %w", err)
	}
	return nil
}
