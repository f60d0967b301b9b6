package analytics

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testQueueKey = "queue:clicks"

func TestTracker_PushesEncodedEvent(t *testing.T) {
	q := newMemQueue()
	tracker := NewTracker(q, testQueueKey, 10)

	tracker.Track(context.Background(), NewClickEvent("l1", time.Now(), "https://ref.example", "ua", "hash", "US"))

	payload, ok, err := q.BlockingPop(context.Background(), testQueueKey, 10*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("expected queued payload, ok=%v err=%v", ok, err)
	}
	ev, err := DecodeClickEvent(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.LinkID != "l1" || ev.IPHash != "hash" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestTracker_TrimsToMaxLength(t *testing.T) {
	q := newMemQueue()
	tracker := NewTracker(q, testQueueKey, 3)

	for i := 0; i < 8; i++ {
		tracker.Track(context.Background(), ClickEvent{LinkID: string(rune('a' + i)), ClickedAt: time.Now()})
	}

	if got := q.len(testQueueKey); got != 3 {
		t.Fatalf("queue length = %d, want 3", got)
	}

	// Oldest entries are dropped; the survivors are f, g, h in FIFO order.
	for _, want := range []string{"f", "g", "h"} {
		payload, _, _ := q.BlockingPop(context.Background(), testQueueKey, 10*time.Millisecond)
		ev, err := DecodeClickEvent(payload)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.LinkID != want {
			t.Fatalf("popped %q, want %q", ev.LinkID, want)
		}
	}
}

func TestTracker_NeverFails(t *testing.T) {
	t.Run("push error", func(t *testing.T) {
		q := newMemQueue()
		q.pushErr = errors.New("connection refused")
		NewTracker(q, testQueueKey, 10).Track(context.Background(), ClickEvent{LinkID: "l1"})
	})

	t.Run("panicking queue", func(t *testing.T) {
		q := newMemQueue()
		q.panicOn = true
		NewTracker(q, testQueueKey, 10).Track(context.Background(), ClickEvent{LinkID: "l1"})
	})

	t.Run("nil tracker", func(t *testing.T) {
		var tracker *Tracker
		tracker.Track(context.Background(), ClickEvent{LinkID: "l1"})
	})
}

func TestNewTracker_DefaultMaxLength(t *testing.T) {
	tracker := NewTracker(newMemQueue(), testQueueKey, 0)
	if tracker.maxLen != DefaultMaxQueueLength {
		t.Fatalf("maxLen = %d, want %d", tracker.maxLen, DefaultMaxQueueLength)
	}
}

func TestTracker_WaitCoversAsyncTracks(t *testing.T) {
	q := &gatedQueue{memQueue: newMemQueue(), release: make(chan struct{})}
	tracker := NewTracker(q, testQueueKey, 10)

	reqCtx, cancelReq := context.WithCancel(context.Background())
	tracker.TrackAsync(reqCtx, ClickEvent{LinkID: "l1", ClickedAt: time.Now()}, time.Second)
	cancelReq()

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := tracker.Wait(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait with a push in flight = %v, want deadline exceeded", err)
	}

	close(q.release)
	if err := tracker.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := q.len(testQueueKey); got != 1 {
		t.Fatalf("queue length = %d, want 1 (request cancellation must not drop the click)", got)
	}
}

func TestTracker_WaitNilAndIdle(t *testing.T) {
	var nilTracker *Tracker
	nilTracker.TrackAsync(context.Background(), ClickEvent{LinkID: "l1"}, time.Second)
	if err := nilTracker.Wait(context.Background()); err != nil {
		t.Fatalf("nil tracker Wait: %v", err)
	}
	if err := NewTracker(newMemQueue(), testQueueKey, 10).Wait(context.Background()); err != nil {
		t.Fatalf("idle tracker Wait: %v", err)
	}
}
