package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/IgorGrieder/shortlink/internal/apperr"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/metrics"
	"github.com/IgorGrieder/shortlink/internal/processing/ratelimit"
	"github.com/IgorGrieder/shortlink/internal/transport/http/httperr"
	"go.uber.org/zap"
)

const rateLimitTimeout = 200 * time.Millisecond

type RateLimitOptions struct {
	// Action namespaces the counter, e.g. "create" → rl:create:<identity>.
	Action string
	Limit  int64
	Window time.Duration

	// Identity derives the per-caller key, typically an IP hash.
	Identity func(r *http.Request) string
}

// RateLimitMiddleware gates a route with a fixed-window limiter. A nil
// limiter allows everything; limiter errors fail open.
func RateLimitMiddleware(limiter ratelimit.Limiter, opts RateLimitOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.Action + ":" + opts.Identity(r)

			ctx, cancel := context.WithTimeout(r.Context(), rateLimitTimeout)
			res, err := ratelimit.Consume(ctx, limiter, key, opts.Limit, opts.Window)
			cancel()
			if err != nil {
				metrics.RateLimitDecisions.WithLabelValues(opts.Action, "error").Inc()
				logger.Warn("rate limiter unavailable, allowing request", zap.Error(err), zap.String("action", opts.Action))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				metrics.RateLimitDecisions.WithLabelValues(opts.Action, "denied").Inc()
				httperr.Write(w, r, apperr.RateLimit("middleware.RateLimit", res.RetryAfter))
				return
			}

			metrics.RateLimitDecisions.WithLabelValues(opts.Action, "allowed").Inc()
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so the first one listed runs first.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
