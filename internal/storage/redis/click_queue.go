package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ClickQueue is a Redis list used as a FIFO: LPUSH on the producer side,
// BRPOP on the consumer side.
type ClickQueue struct {
	client *Client
}

func NewClickQueue(client *Client) *ClickQueue {
	return &ClickQueue{client: client}
}

func (q *ClickQueue) Push(ctx context.Context, key string, payload []byte) error {
	if err := q.client.rdb.LPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", key, err)
	}
	return nil
}

// Trim keeps the newest maxLen entries.
func (q *ClickQueue) Trim(ctx context.Context, key string, maxLen int64) error {
	if maxLen <= 0 {
		return nil
	}
	if err := q.client.rdb.LTrim(ctx, key, 0, maxLen-1).Err(); err != nil {
		return fmt.Errorf("ltrim %s: %w", key, err)
	}
	return nil
}

func (q *ClickQueue) BlockingPop(ctx context.Context, key string, timeout time.Duration) ([]byte, bool, error) {
	res, err := q.client.rdb.BRPop(ctx, timeout, key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("brpop %s: %w", key, err)
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return nil, false, fmt.Errorf("brpop %s: unexpected reply of %d elements", key, len(res))
	}
	return []byte(res[1]), true, nil
}

// Len reports the current queue depth.
func (q *ClickQueue) Len(ctx context.Context, key string) (int64, error) {
	return q.client.rdb.LLen(ctx, key).Result()
}
