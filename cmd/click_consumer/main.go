// Command click_consumer drains the click queue into the configured store.
// Run it when the API has CLICK_WORKER_ENABLED=false.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/IgorGrieder/shortlink/internal/bootstrap"
	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/telemetry"
	"github.com/IgorGrieder/shortlink/internal/processing/analytics"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	serviceName := fmt.Sprintf("%s-click-consumer", cfg.App.Name)
	if err := logger.Init(logger.Options{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: serviceName,
		Version: cfg.App.Version,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTel.Enabled {
		shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Options{
			Endpoint:       cfg.OTel.Endpoint,
			ServiceName:    serviceName,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Env,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			defer func() {
				if err := shutdownTracer(context.Background()); err != nil {
					logger.Warn("failed to shutdown tracer", zap.Error(err))
				}
			}()
		}
	}

	st, err := bootstrap.OpenStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer st.Close()

	redisClient, err := bootstrap.OpenRedis(cfg)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	queue, closeQueue, err := bootstrap.OpenQueue(cfg, redisClient)
	if err != nil {
		logger.Fatal("failed to initialize click queue", zap.Error(err))
	}
	defer closeQueue()

	worker := analytics.NewWorker(queue, st.Clicks, analytics.WorkerOptions{
		QueueKey:         cfg.Queue.Key,
		PopTimeout:       cfg.Worker.PopTimeout,
		OperationTimeout: cfg.Worker.OperationTimeout,
	})
	worker.Start(ctx)

	logger.Info("click consumer started",
		zap.String("queue_backend", cfg.Queue.Backend),
		zap.String("queue_key", cfg.Queue.Key),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	<-ctx.Done()
	logger.Info("click consumer shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := worker.Stop(stopCtx); err != nil {
		logger.Warn("click worker did not stop in time", zap.Error(err))
	}

	logger.Info("click consumer stopped")
}
