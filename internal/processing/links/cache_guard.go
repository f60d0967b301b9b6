package links

import (
	"context"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/metrics"
	"github.com/IgorGrieder/shortlink/pkg/breaker"
	"go.uber.org/zap"
)

// guardedCache makes any LinkCache best-effort: errors become misses, and a
// circuit breaker skips the cache entirely while it keeps failing.
type guardedCache struct {
	inner   LinkCache
	breaker *breaker.CircuitBreaker
}

// NewGuardedCache wraps inner so that Get and Set never return errors. A nil
// inner yields nil (no cache configured). cb may be nil.
func NewGuardedCache(inner LinkCache, cb *breaker.CircuitBreaker) LinkCache {
	if inner == nil {
		return nil
	}
	if g, ok := inner.(*guardedCache); ok {
		return g
	}
	return &guardedCache{inner: inner, breaker: cb}
}

func (g *guardedCache) Get(ctx context.Context, code string) (*CachedLink, error) {
	if !g.allow() {
		metrics.CacheLookups.WithLabelValues("skipped").Inc()
		return nil, nil
	}

	cached, err := g.inner.Get(ctx, code)
	if err != nil {
		g.fail()
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.Warn("link cache get failed, treating as miss", zap.Error(err), zap.String("code", code))
		return nil, nil
	}
	g.succeed()

	if cached == nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return cached, nil
}

func (g *guardedCache) Set(ctx context.Context, code string, value CachedLink, ttl time.Duration) error {
	if !g.allow() {
		return nil
	}
	if err := g.inner.Set(ctx, code, value, ttl); err != nil {
		g.fail()
		logger.Warn("link cache set failed", zap.Error(err), zap.String("code", code))
		return nil
	}
	g.succeed()
	return nil
}

func (g *guardedCache) allow() bool {
	return g.breaker == nil || g.breaker.Allow() == nil
}

func (g *guardedCache) fail() {
	if g.breaker != nil {
		g.breaker.OnFailure()
	}
}

func (g *guardedCache) succeed() {
	if g.breaker != nil {
		g.breaker.OnSuccess()
	}
}
