package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IgorGrieder/shortlink/internal/bootstrap"
	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/security"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/telemetry"
	"github.com/IgorGrieder/shortlink/internal/processing/analytics"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/processing/ratelimit"
	redisStorage "github.com/IgorGrieder/shortlink/internal/storage/redis"
	httpTransport "github.com/IgorGrieder/shortlink/internal/transport/http"
	"github.com/IgorGrieder/shortlink/pkg/breaker"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Options{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var shutdownTracer func(context.Context) error
	if cfg.OTel.Enabled {
		shutdownTracer, err = telemetry.InitTracer(ctx, telemetry.Options{
			Endpoint:       cfg.OTel.Endpoint,
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Env,
		})
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracer initialized", zap.String("endpoint", cfg.OTel.Endpoint))
		}
	}

	st, err := bootstrap.OpenStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	redisClient, err := bootstrap.OpenRedis(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	cache, err := bootstrap.OpenCache(cfg, redisClient)
	if err != nil {
		logger.Fatal("Failed to initialize link cache", zap.Error(err))
	}
	queue, closeQueue, err := bootstrap.OpenQueue(cfg, redisClient)
	if err != nil {
		logger.Fatal("Failed to initialize click queue", zap.Error(err))
	}

	linkSvc := links.NewService(st.Links, st.Clicks, links.NewCryptoSlugger(), links.Options{
		CodeLength:      cfg.Shortener.CodeLength,
		MaxRetries:      cfg.Shortener.MaxRetries,
		DefaultCacheTTL: cfg.Cache.DefaultTTL,
		Cache:           cache,
		CacheBreaker:    breaker.New("link-cache", 5, 10*time.Second),
	})

	healthChecks := map[string]httpTransport.HealthCheck{"store": st.Ping}
	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = redisStorage.NewFixedWindowLimiter(redisClient, "rl")
		healthChecks["redis"] = redisClient.Ping
	} else {
		logger.Warn("Redis disabled, create rate limiting is off")
	}

	var worker *analytics.Worker
	if cfg.Worker.Enabled {
		worker = analytics.NewWorker(queue, st.Clicks, analytics.WorkerOptions{
			QueueKey:         cfg.Queue.Key,
			PopTimeout:       cfg.Worker.PopTimeout,
			OperationTimeout: cfg.Worker.OperationTimeout,
		})
		worker.Start(ctx)
		logger.Info("Click worker started in-process", zap.String("queue", cfg.Queue.Backend))
	}

	tracker := analytics.NewTracker(queue, cfg.Queue.Key, cfg.Queue.MaxLength)
	router := httpTransport.NewRouter(cfg, httpTransport.Dependencies{
		Links:        linkSvc,
		Tracker:      tracker,
		Hasher:       security.NewIPHasher(cfg.Security.IPHashSalt),
		Limiter:      limiter,
		HealthChecks: healthChecks,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.App.Env),
			zap.String("address", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	if err := tracker.Wait(shutdownCtx); err != nil {
		logger.Warn("Pending click events dropped at shutdown", zap.Error(err))
	}
	if worker != nil {
		if err := worker.Stop(shutdownCtx); err != nil {
			logger.Warn("Click worker did not stop in time", zap.Error(err))
		}
	}

	closeQueue()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	st.Close()

	if shutdownTracer != nil {
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Warn("Failed to shutdown tracer", zap.Error(err))
		}
	}

	logger.Info("Server stopped gracefully")
}
