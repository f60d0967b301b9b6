// Package ratelimit defines the limiter contract shared by the HTTP layer and
// the storage adapters.
package ratelimit

import (
	"context"
	"time"
)

type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter counts one hit for key within a window of the given length.
type Limiter interface {
	Consume(ctx context.Context, key string, limit int64, window time.Duration) (Result, error)
}

// Allow is the outcome used when no limiter is configured.
var Allow = Result{Allowed: true}

// Consume calls l, treating a nil limiter as always allowing.
func Consume(ctx context.Context, l Limiter, key string, limit int64, window time.Duration) (Result, error) {
	if l == nil {
		return Allow, nil
	}
	return l.Consume(ctx, key, limit, window)
}
