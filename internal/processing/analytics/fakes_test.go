package analytics

import (
	"context"
	"errors"
	"sync"
	"time"
)

// memQueue mimics a Redis list: Push is LPUSH, BlockingPop is BRPOP.
type memQueue struct {
	mu     sync.Mutex
	items  map[string][][]byte
	notify chan struct{}

	pushErr error
	popErr  error
	panicOn bool
}

func newMemQueue() *memQueue {
	return &memQueue{items: make(map[string][][]byte), notify: make(chan struct{}, 1)}
}

func (q *memQueue) Push(_ context.Context, key string, payload []byte) error {
	if q.panicOn {
		panic("queue exploded")
	}
	if q.pushErr != nil {
		return q.pushErr
	}
	q.mu.Lock()
	q.items[key] = append([][]byte{payload}, q.items[key]...)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

func (q *memQueue) Trim(_ context.Context, key string, maxLen int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if int64(len(q.items[key])) > maxLen {
		q.items[key] = q.items[key][:maxLen]
	}
	return nil
}

func (q *memQueue) BlockingPop(ctx context.Context, key string, timeout time.Duration) ([]byte, bool, error) {
	if q.popErr != nil {
		return nil, false, q.popErr
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		list := q.items[key]
		if n := len(list); n > 0 {
			payload := list[n-1]
			q.items[key] = list[:n-1]
			q.mu.Unlock()
			return payload, true, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-deadline.C:
			return nil, false, nil
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

func (q *memQueue) len(key string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items[key])
}

// depthQueue adds Len to memQueue and counts the calls.
type depthQueue struct {
	*memQueue

	mu     sync.Mutex
	keys   []string
	lenErr error
}

func (q *depthQueue) Len(_ context.Context, key string) (int64, error) {
	q.mu.Lock()
	q.keys = append(q.keys, key)
	q.mu.Unlock()
	if q.lenErr != nil {
		return 0, q.lenErr
	}
	return int64(q.memQueue.len(key)), nil
}

func (q *depthQueue) lenCalls() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.keys...)
}

// gatedQueue blocks every Push until release is closed.
type gatedQueue struct {
	*memQueue
	release chan struct{}
}

func (q *gatedQueue) Push(ctx context.Context, key string, payload []byte) error {
	select {
	case <-q.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return q.memQueue.Push(ctx, key, payload)
}

type memClickStore struct {
	mu      sync.Mutex
	events  []ClickEvent
	failFor int
}

var errStoreDown = errors.New("store down")

func (s *memClickStore) CreateClick(_ context.Context, ev ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor > 0 {
		s.failFor--
		return errStoreDown
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *memClickStore) snapshot() []ClickEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ClickEvent, len(s.events))
	copy(out, s.events)
	return out
}

func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
