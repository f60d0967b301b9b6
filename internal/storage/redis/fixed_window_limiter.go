package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/IgorGrieder/shortlink/internal/processing/ratelimit"
)

// FixedWindowLimiter counts requests per key in a window that starts with the
// key's first hit. The counter key carries the TTL, so the window resets when
// Redis expires it.
type FixedWindowLimiter struct {
	client *Client
	prefix string
}

func NewFixedWindowLimiter(client *Client, prefix string) *FixedWindowLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &FixedWindowLimiter{client: client, prefix: prefix}
}

// Consume counts one hit for key and reports whether it is within limit.
// A denied result carries the remaining window as RetryAfter.
func (l *FixedWindowLimiter) Consume(ctx context.Context, key string, limit int64, window time.Duration) (ratelimit.Result, error) {
	if key == "" {
		key = "unknown"
	}
	if window < time.Second {
		window = time.Second
	}
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	count, err := l.client.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return ratelimit.Result{}, fmt.Errorf("incr %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := l.client.rdb.Expire(ctx, redisKey, window).Err(); err != nil {
			return ratelimit.Result{}, fmt.Errorf("expire %s: %w", redisKey, err)
		}
	}

	if count <= limit {
		return ratelimit.Result{Allowed: true}, nil
	}

	retryAfter := window
	ttl, err := l.client.rdb.TTL(ctx, redisKey).Result()
	switch {
	case err != nil:
	case ttl > 0:
		retryAfter = ttl
	case ttl == -1:
		// The first hit's EXPIRE was lost; without a TTL the key would deny forever.
		if err := l.client.rdb.Expire(ctx, redisKey, window).Err(); err != nil {
			return ratelimit.Result{}, fmt.Errorf("expire %s: %w", redisKey, err)
		}
	}

	return ratelimit.Result{Allowed: false, RetryAfter: retryAfter}, nil
}
