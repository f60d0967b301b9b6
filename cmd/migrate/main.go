// Command migrate applies or rolls back the Postgres schema.
//
//	migrate -cmd up
//	migrate -cmd down -steps 1
//	migrate -cmd version
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/db/migrations"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up, down or version")
	steps := flag.Int("steps", 1, "number of migrations to roll back with -cmd down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Options{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name + "-migrate"}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	url := cfg.Postgres.MigrationURL()

	switch *cmd {
	case "up":
		if err := migrations.Up(url); err != nil {
			logger.Fatal("migrate up failed", zap.Error(err))
		}
		logger.Info("migrations applied")
	case "down":
		if err := migrations.Down(url, *steps); err != nil {
			logger.Fatal("migrate down failed", zap.Error(err), zap.Int("steps", *steps))
		}
		logger.Info("migrations rolled back", zap.Int("steps", *steps))
	case "version":
		version, dirty, ok, err := migrations.Version(url)
		if err != nil {
			logger.Fatal("read migration version failed", zap.Error(err))
		}
		if !ok {
			logger.Info("no migrations applied")
			return
		}
		logger.Info("migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	default:
		fmt.Fprintf(os.Stderr, "unknown -cmd %q (want up, down or version)\n", *cmd)
		os.Exit(2)
	}
}
