package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const DefaultMaxQueueLength int64 = 100_000

// Tracker is the producer side of the click pipeline. Track never returns an
// error: a lost click is logged and counted, the redirect is unaffected.
type Tracker struct {
	queue  Queue
	key    string
	maxLen int64

	inflight sync.WaitGroup
}

func NewTracker(queue Queue, key string, maxLen int64) *Tracker {
	if maxLen <= 0 {
		maxLen = DefaultMaxQueueLength
	}
	return &Tracker{queue: queue, key: key, maxLen: maxLen}
}

// TrackAsync runs Track in the background under its own timeout, detached
// from ctx cancellation. Wait blocks until these calls finish.
func (t *Tracker) TrackAsync(ctx context.Context, ev ClickEvent, timeout time.Duration) {
	if t == nil || t.queue == nil {
		return
	}

	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		trackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		t.Track(trackCtx, ev)
	}()
}

// Wait blocks until every TrackAsync call has returned or ctx ends.
func (t *Tracker) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		t.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Track pushes ev and trims the queue to maxLen, dropping the oldest entries.
func (t *Tracker) Track(ctx context.Context, ev ClickEvent) {
	if t == nil || t.queue == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.ClicksEnqueued.WithLabelValues("error").Inc()
			logger.Error("click tracking panicked", zap.String("panic", fmt.Sprint(r)), zap.String("link_id", ev.LinkID))
		}
	}()

	payload, err := EncodeClickEvent(ev)
	if err != nil {
		metrics.ClicksEnqueued.WithLabelValues("error").Inc()
		logger.Warn("failed to encode click event", zap.Error(err), zap.String("link_id", ev.LinkID))
		return
	}

	if err := t.queue.Push(ctx, t.key, payload); err != nil {
		metrics.ClicksEnqueued.WithLabelValues("error").Inc()
		logger.Warn("failed to enqueue click event", zap.Error(err), zap.String("link_id", ev.LinkID))
		return
	}
	metrics.ClicksEnqueued.WithLabelValues("ok").Inc()

	if err := t.queue.Trim(ctx, t.key, t.maxLen); err != nil {
		logger.Warn("failed to trim click queue", zap.Error(err), zap.String("queue", t.key))
	}
}
