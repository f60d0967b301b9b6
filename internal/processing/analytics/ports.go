package analytics

import (
	"context"
	"time"
)

// Queue is a durable FIFO of encoded click events. BlockingPop returns
// ok=false when timeout elapses with nothing to pop.
type Queue interface {
	Push(ctx context.Context, key string, payload []byte) error
	Trim(ctx context.Context, key string, maxLen int64) error
	BlockingPop(ctx context.Context, key string, timeout time.Duration) (payload []byte, ok bool, err error)
}

type ClickStore interface {
	CreateClick(ctx context.Context, event ClickEvent) error
}
