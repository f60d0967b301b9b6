package http

import (
	"net/http"
	"strings"

	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/security"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/telemetry"
	"github.com/IgorGrieder/shortlink/internal/processing/analytics"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/processing/ratelimit"
	"github.com/IgorGrieder/shortlink/internal/transport/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var spanNames = map[string]string{
	"GET /health":                 "health",
	"GET /metrics":                "metrics",
	"POST /api/links":             "links.create",
	"GET /api/links/{code}/stats": "links.stats",
	"GET /{code}":                 "links.redirect",
}

// Dependencies are the wired components the router serves.
type Dependencies struct {
	Links   *links.Service
	Tracker *analytics.Tracker
	Hasher  *security.IPHasher

	// Limiter may be nil, which disables rate limiting.
	Limiter      ratelimit.Limiter
	HealthChecks map[string]HealthCheck
}

type RouterOptions struct {
	EnableCORS    bool
	EnableLogging bool
	EnableMetrics bool

	LinksHandlerOptions LinksHandlerOptions
}

func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		EnableCORS:    true,
		EnableLogging: true,
		EnableMetrics: true,
		LinksHandlerOptions: LinksHandlerOptions{
			ClickTimeout: defaultClickTimeout,
		},
	}
}

func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	return NewRouterWithOptions(cfg, deps, DefaultRouterOptions())
}

func NewRouterWithOptions(cfg *config.Config, deps Dependencies, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler(deps.HealthChecks)
	linksHandler := NewLinksHandler(cfg, deps.Links, deps.Tracker, deps.Hasher, opts.LinksHandlerOptions)

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", middleware.Chain(
		healthHandler.Metrics(),
		middleware.BearerTokenMiddleware(cfg.Security.MetricsToken),
	))

	mux.Handle("POST /api/links", middleware.Chain(
		http.HandlerFunc(linksHandler.Create),
		middleware.RateLimitMiddleware(deps.Limiter, middleware.RateLimitOptions{
			Action:   "create",
			Limit:    cfg.Security.CreateRateLimit,
			Window:   cfg.Security.CreateRateWindow,
			Identity: linksHandler.RequesterHash,
		}),
	))

	mux.HandleFunc("GET /api/links/{code}/stats", linksHandler.Stats)
	mux.HandleFunc("GET /{code}", linksHandler.Redirect)

	var innerHandler http.Handler = mux
	if opts.EnableCORS {
		innerHandler = middleware.CORSMiddleware(cfg.Server.CORSAllowedOrigins)(innerHandler)
	}
	if opts.EnableLogging {
		innerHandler = middleware.LoggingMiddleware(innerHandler)
	}
	if opts.EnableMetrics {
		innerHandler = middleware.MetricsMiddleware(innerHandler)
	}

	otelOptions := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			key := r.Method + " " + r.Pattern
			if name, ok := spanNames[key]; ok {
				return name
			}
			if r.Pattern != "" {
				return r.Pattern
			}
			path := strings.TrimSpace(r.URL.Path)
			if path == "" {
				path = "/"
			}
			return path
		}),
	}

	if telemetry.TracerProvider != nil {
		otelOptions = append(otelOptions, otelhttp.WithTracerProvider(telemetry.TracerProvider))
	}

	return otelhttp.NewHandler(innerHandler, cfg.App.Name, otelOptions...)
}
