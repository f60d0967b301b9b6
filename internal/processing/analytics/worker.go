package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/metrics"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultPopTimeout       = time.Second
	DefaultOperationTimeout = 5 * time.Second
	DefaultDepthInterval    = 15 * time.Second

	// popGrace pads the client-side deadline of a blocking pop so the server
	// timeout fires first.
	popGrace = 2 * time.Second
)

type WorkerOptions struct {
	QueueKey         string
	PopTimeout       time.Duration
	OperationTimeout time.Duration
	DepthInterval    time.Duration
}

// depthReporter is implemented by queues that can report their backlog.
type depthReporter interface {
	Len(ctx context.Context, key string) (int64, error)
}

// Worker drains the click queue into the click store, one event at a time.
// Failures are logged and skipped; the loop only ends on Stop or when the
// context given to Start is cancelled.
type Worker struct {
	queue      Queue
	store      ClickStore
	key        string
	popTimeout time.Duration
	opTimeout  time.Duration

	depthEvery time.Duration
	lastDepth  time.Time

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewWorker(queue Queue, store ClickStore, opts WorkerOptions) *Worker {
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = DefaultPopTimeout
	}
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = DefaultOperationTimeout
	}
	if opts.DepthInterval <= 0 {
		opts.DepthInterval = DefaultDepthInterval
	}

	return &Worker{
		queue:      queue,
		store:      store,
		key:        opts.QueueKey,
		popTimeout: opts.PopTimeout,
		opTimeout:  opts.OperationTimeout,
		depthEvery: opts.DepthInterval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start launches the loop once. Later calls are no-ops, including after Stop.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return
	}
	w.started = true
	go w.loop(ctx)
}

// Stop signals the loop and waits for it to exit or for ctx to end. The
// in-flight pop and store write run to completion under their own timeouts.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.started = true
		w.stopOnce.Do(func() { close(w.stopCh) })
		close(w.doneCh)
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	w.stopOnce.Do(func() { close(w.stopCh) })

	select {
	case <-w.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the loop has exited.
func (w *Worker) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.doneCh)

	logger.Info("click worker started",
		zap.String("queue", w.key),
		zap.Duration("pop_timeout", w.popTimeout),
	)

	for {
		select {
		case <-w.stopCh:
			logger.Info("click worker stopped")
			return
		case <-ctx.Done():
			logger.Info("click worker cancelled")
			return
		default:
		}

		w.reportDepth(ctx)
		if !w.processNext(ctx) {
			w.backoff(ctx)
		}
	}
}

// processNext handles at most one event. It returns false when the queue
// itself failed and the loop should back off.
func (w *Worker) processNext(ctx context.Context) bool {
	base := context.WithoutCancel(ctx)

	popCtx, cancel := context.WithTimeout(base, w.popTimeout+popGrace)
	payload, ok, err := w.queue.BlockingPop(popCtx, w.key, w.popTimeout)
	cancel()
	if err != nil {
		metrics.ClicksProcessed.WithLabelValues("pop_error").Inc()
		logger.Warn("failed to pop click event", zap.Error(err), zap.String("queue", w.key))
		return false
	}
	if !ok {
		return true
	}

	ev, err := DecodeClickEvent(payload)
	if err != nil {
		metrics.ClicksProcessed.WithLabelValues("malformed").Inc()
		logger.Warn("invalid click event payload, skipping",
			zap.Error(err),
			zap.ByteString("payload", payload),
		)
		return true
	}

	opCtx, cancel := context.WithTimeout(base, w.opTimeout)
	defer cancel()

	opCtx, span := telemetry.Tracer.Start(opCtx, "click_worker.persist",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.destination.name", w.key),
			attribute.String("link.id", ev.LinkID),
		),
	)
	defer span.End()

	if err := w.store.CreateClick(opCtx, ev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist click event failed")
		metrics.ClicksProcessed.WithLabelValues("store_error").Inc()
		logger.Error("failed to persist click event", zap.Error(err), zap.String("link_id", ev.LinkID))
		return true
	}

	metrics.ClicksProcessed.WithLabelValues("stored").Inc()
	return true
}

// reportDepth samples the queue length into ClickQueueDepth, at most once per
// depthEvery. Queues without a Len method are skipped.
func (w *Worker) reportDepth(ctx context.Context) {
	q, ok := w.queue.(depthReporter)
	if !ok || time.Since(w.lastDepth) < w.depthEvery {
		return
	}
	w.lastDepth = time.Now()

	lenCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.opTimeout)
	defer cancel()

	n, err := q.Len(lenCtx, w.key)
	if err != nil {
		logger.Warn("failed to read click queue depth", zap.Error(err), zap.String("queue", w.key))
		return
	}
	metrics.ClickQueueDepth.WithLabelValues(w.key).Set(float64(n))
}

func (w *Worker) backoff(ctx context.Context) {
	timer := time.NewTimer(w.popTimeout)
	defer timer.Stop()

	select {
	case <-w.stopCh:
	case <-ctx.Done():
	case <-timer.C:
	}
}
