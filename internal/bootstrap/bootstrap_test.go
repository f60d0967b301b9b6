package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/storage/memory"
	redisStorage "github.com/IgorGrieder/shortlink/internal/storage/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStorage_SQLite(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: config.StorageSQLite},
		SQLite:  config.SQLiteConfig{URL: "file:" + filepath.Join(t.TempDir(), "boot.db")},
	}

	st, err := OpenStorage(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	require.NoError(t, st.Ping(context.Background()))

	link := &links.Link{Code: "boot", OriginalURL: "https://example.com", CreatedAt: time.Now(), IsActive: true}
	require.NoError(t, st.Links.Create(context.Background(), link))

	count, last, err := st.Clicks.StatsByLinkID(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Nil(t, last)
}

func TestOpenStorage_UnknownBackend(t *testing.T) {
	_, err := OpenStorage(context.Background(), &config.Config{Storage: config.StorageConfig{Backend: "cassandra"}})
	require.Error(t, err)
}

func TestOpenRedis_Disabled(t *testing.T) {
	rc, err := OpenRedis(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	assert.Nil(t, rc)
}

func TestOpenCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := redisStorage.New(redisStorage.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	tests := []struct {
		name    string
		backend string
		rc      *redisStorage.Client
		check   func(t *testing.T, c links.LinkCache)
		wantErr bool
	}{
		{"redis", config.CacheRedis, rc, func(t *testing.T, c links.LinkCache) {
			assert.IsType(t, &redisStorage.LinkCache{}, c)
		}, false},
		{"redis without client", config.CacheRedis, nil, nil, true},
		{"memory", config.CacheMemory, nil, func(t *testing.T, c links.LinkCache) {
			assert.IsType(t, &memory.LinkCache{}, c)
		}, false},
		{"none", config.CacheNone, nil, func(t *testing.T, c links.LinkCache) {
			assert.Nil(t, c)
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Cache: config.CacheConfig{Backend: tt.backend, KeyPrefix: "link:"}}
			c, err := OpenCache(cfg, tt.rc)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestOpenQueue_Kafka(t *testing.T) {
	cfg := &config.Config{
		Queue: config.QueueConfig{Backend: config.QueueKafka},
		Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}, ClickTopic: "clicks", GroupID: "g"},
	}

	q, closeFn, err := OpenQueue(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, q)
	closeFn()
}
