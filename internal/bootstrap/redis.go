package bootstrap

import (
	"fmt"
	"time"

	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/processing/analytics"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/storage/kafka"
	"github.com/IgorGrieder/shortlink/internal/storage/memory"
	redisStorage "github.com/IgorGrieder/shortlink/internal/storage/redis"
	"go.uber.org/zap"
)

const memoryCacheCleanup = 5 * time.Minute

// OpenRedis connects when Redis is enabled. A nil client with a nil error
// means Redis is switched off.
func OpenRedis(cfg *config.Config) (*redisStorage.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	client, err := redisStorage.New(redisStorage.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// OpenCache selects the resolution cache. CACHE_BACKEND=none yields nil,
// which disables caching.
func OpenCache(cfg *config.Config, rc *redisStorage.Client) (links.LinkCache, error) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		if rc == nil {
			return nil, fmt.Errorf("redis cache requires REDIS_ENABLED=true")
		}
		return redisStorage.NewLinkCache(rc, cfg.Cache.KeyPrefix), nil
	case config.CacheMemory:
		return memory.NewLinkCache(memoryCacheCleanup), nil
	case config.CacheNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// OpenQueue selects the click queue and returns a close func for it.
func OpenQueue(cfg *config.Config, rc *redisStorage.Client) (analytics.Queue, func(), error) {
	switch cfg.Queue.Backend {
	case config.QueueRedis:
		if rc == nil {
			return nil, nil, fmt.Errorf("redis queue requires REDIS_ENABLED=true")
		}
		return redisStorage.NewClickQueue(rc), func() {}, nil
	case config.QueueKafka:
		q, err := kafka.NewClickQueue(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.ClickTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init kafka click queue: %w", err)
		}
		return q, func() {
			if err := q.Close(); err != nil {
				logger.Warn("kafka click queue close failed", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue backend %q", cfg.Queue.Backend)
	}
}
