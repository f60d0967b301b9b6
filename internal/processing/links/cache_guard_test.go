package links

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IgorGrieder/shortlink/pkg/breaker"
)

func TestNewGuardedCache_Nil(t *testing.T) {
	if NewGuardedCache(nil, nil) != nil {
		t.Error("nil cache must stay nil so resolution skips caching")
	}
}

func TestNewGuardedCache_Idempotent(t *testing.T) {
	g := NewGuardedCache(&mockCache{}, nil)
	if NewGuardedCache(g, nil) != g {
		t.Error("wrapping a guarded cache twice must return the same guard")
	}
}

func TestGuardedCache_BreakerSkipsFailingCache(t *testing.T) {
	calls := 0
	inner := &mockCache{
		getFn: func(_ context.Context, _ string) (*CachedLink, error) {
			calls++
			return nil, errors.New("connection refused")
		},
	}
	g := NewGuardedCache(inner, breaker.New("cache", 2, time.Minute))

	for i := 0; i < 5; i++ {
		got, err := g.Get(context.Background(), "abc")
		if err != nil || got != nil {
			t.Fatalf("guarded get must collapse to a miss, got (%v, %v)", got, err)
		}
	}
	if calls != 2 {
		t.Errorf("expected breaker to stop calls after 2 failures, got %d calls", calls)
	}

	if err := g.Set(context.Background(), "abc", CachedLink{}, time.Second); err != nil {
		t.Errorf("guarded set must not fail, got: %v", err)
	}
	if inner.setCalls != 0 {
		t.Errorf("open breaker must skip writes, got %d", inner.setCalls)
	}
}
