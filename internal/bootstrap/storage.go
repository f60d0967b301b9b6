// Package bootstrap turns configuration into wired adapters. Each Open*
// function returns the components plus a close func the caller must run on
// shutdown.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/db/migrations"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/processing/analytics"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	mongoStorage "github.com/IgorGrieder/shortlink/internal/storage/mongo"
	postgresStorage "github.com/IgorGrieder/shortlink/internal/storage/postgres"
	sqliteStorage "github.com/IgorGrieder/shortlink/internal/storage/sqlite"
	"go.uber.org/zap"
)

// ClickRepository is both sides of the click table: the worker writes it,
// the stats read aggregates it.
type ClickRepository interface {
	analytics.ClickStore
	links.ClickStatsReader
}

type Storage struct {
	Links  links.LinkStore
	Clicks ClickRepository
	Ping   func(ctx context.Context) error
	Close  func()
}

func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	var (
		st  *Storage
		err error
	)
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		st, err = openPostgres(ctx, cfg)
	case config.StorageMongo:
		st, err = openMongo(cfg)
	case config.StorageSQLite:
		st, err = openSQLite(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Storage backend selected", zap.String("backend", cfg.Storage.Backend))
	return st, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg.Postgres.AutoMigrate {
		if err := migrations.Up(cfg.Postgres.MigrationURL()); err != nil {
			return nil, fmt.Errorf("run postgres migrations: %w", err)
		}
	}

	pgConn, err := db.ConnectPostgres(ctx, cfg.Postgres.DSN(), db.PostgresPoolConfig{
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	linkRepo, err := postgresStorage.NewLinksRepository(pgConn)
	if err != nil {
		pgConn.Close()
		return nil, fmt.Errorf("init postgres links repository: %w", err)
	}
	clickRepo, err := postgresStorage.NewClicksRepository(pgConn)
	if err != nil {
		pgConn.Close()
		return nil, fmt.Errorf("init postgres clicks repository: %w", err)
	}

	return &Storage{Links: linkRepo, Clicks: clickRepo, Ping: pgConn.Ping, Close: pgConn.Close}, nil
}

func openMongo(cfg *config.Config) (*Storage, error) {
	mongoConn, err := db.ConnectMongo(cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	closeFn := func() { _ = mongoConn.Disconnect() }

	linkRepo, err := mongoStorage.NewLinksRepository(mongoConn)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("init mongo links repository: %w", err)
	}
	clickRepo, err := mongoStorage.NewClicksRepository(mongoConn)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("init mongo clicks repository: %w", err)
	}

	return &Storage{Links: linkRepo, Clicks: clickRepo, Ping: mongoConn.Ping, Close: closeFn}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config) (*Storage, error) {
	sqlDB, err := db.OpenSQLite(ctx, cfg.SQLite.URL)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	closeFn := func() { _ = sqlDB.Close() }

	linkRepo, err := sqliteStorage.NewLinksRepository(sqlDB)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("init sqlite links repository: %w", err)
	}
	clickRepo, err := sqliteStorage.NewClicksRepository(sqlDB)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("init sqlite clicks repository: %w", err)
	}

	return &Storage{Links: linkRepo, Clicks: clickRepo, Ping: sqlDB.Ping, Close: closeFn}, nil
}
