package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
	StorageSQLite   = "sqlite"

	QueueRedis = "redis"
	QueueKafka = "kafka"

	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

type Config struct {
	App       AppConfig       `envconfig:"APP"`
	Server    ServerConfig    `envconfig:"SERVER"`
	Storage   StorageConfig   `envconfig:"STORAGE"`
	Postgres  PostgresConfig  `envconfig:"DB"`
	MongoDB   MongoDBConfig   `envconfig:"MONGODB"`
	SQLite    SQLiteConfig    `envconfig:"SQLITE"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Cache     CacheConfig     `envconfig:"CACHE"`
	Queue     QueueConfig     `envconfig:"QUEUE"`
	Kafka     KafkaConfig     `envconfig:"KAFKA"`
	Worker    WorkerConfig    `envconfig:"CLICK_WORKER"`
	Shortener ShortenerConfig `envconfig:"SHORTENER"`
	Security  SecurityConfig  `envconfig:"SECURITY"`
	OTel      OTelConfig      `envconfig:"OTEL"`
}

type AppConfig struct {
	Name     string `envconfig:"NAME" default:"shortlink"`
	Version  string `envconfig:"VERSION" default:"0.1.0"`
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// TrustProxy makes X-Forwarded-For / X-Real-IP authoritative for the client IP.
	TrustProxy         bool     `envconfig:"TRUST_PROXY" default:"false"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

type StorageConfig struct {
	Backend string `envconfig:"BACKEND" default:"postgres"`
}

type PostgresConfig struct {
	URL         string `envconfig:"URL"`
	Host        string `envconfig:"HOST" default:"localhost"`
	Port        string `envconfig:"PORT" default:"5432"`
	User        string `envconfig:"USER" default:"postgres"`
	Password    string `envconfig:"PASSWORD" default:"postgres"`
	Name        string `envconfig:"NAME" default:"shortlink"`
	SSLMode     string `envconfig:"SSL_MODE" default:"disable"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
	MaxConns    int32  `envconfig:"MAX_CONNS" default:"10"`
}

type MongoDBConfig struct {
	URI      string `envconfig:"URI" default:"mongodb://localhost:27017"`
	Database string `envconfig:"DATABASE" default:"shortlink"`
}

type SQLiteConfig struct {
	// URL is a file path for modernc sqlite or a libsql:// URL for Turso.
	URL string `envconfig:"URL" default:"file:shortlink.db?_pragma=busy_timeout(5000)"`
}

type RedisConfig struct {
	Enabled  bool   `envconfig:"ENABLED" default:"true"`
	Addr     string `envconfig:"ADDR" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
	PoolSize int    `envconfig:"POOL_SIZE" default:"20"`
}

type CacheConfig struct {
	Backend    string        `envconfig:"BACKEND" default:"redis"`
	DefaultTTL time.Duration `envconfig:"DEFAULT_TTL" default:"1h"`
	KeyPrefix  string        `envconfig:"KEY_PREFIX" default:"link:"`
}

type QueueConfig struct {
	Backend   string `envconfig:"BACKEND" default:"redis"`
	Key       string `envconfig:"KEY" default:"queue:clicks"`
	MaxLength int64  `envconfig:"MAX_LENGTH" default:"100000"`
}

type KafkaConfig struct {
	Brokers    []string `envconfig:"BROKERS" default:"localhost:9092"`
	ClickTopic string   `envconfig:"CLICK_TOPIC" default:"clicks.recorded"`
	GroupID    string   `envconfig:"CLICK_GROUP_ID" default:"click-analytics"`
}

type WorkerConfig struct {
	Enabled          bool          `envconfig:"ENABLED" default:"true"`
	PopTimeout       time.Duration `envconfig:"POP_TIMEOUT" default:"1s"`
	OperationTimeout time.Duration `envconfig:"OPERATION_TIMEOUT" default:"5s"`
}

type ShortenerConfig struct {
	BaseURL        string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	CodeLength     int    `envconfig:"CODE_LENGTH" default:"7"`
	MaxRetries     int    `envconfig:"MAX_RETRIES" default:"5"`
	RedirectStatus int    `envconfig:"REDIRECT_STATUS" default:"302"`
}

type SecurityConfig struct {
	IPHashSalt       string        `envconfig:"IP_HASH_SALT"`
	MetricsToken     string        `envconfig:"METRICS_TOKEN"`
	CreateRateLimit  int64         `envconfig:"CREATE_RATE_LIMIT" default:"30"`
	CreateRateWindow time.Duration `envconfig:"CREATE_RATE_WINDOW" default:"1m"`
}

type OTelConfig struct {
	Enabled  bool   `envconfig:"ENABLED" default:"false"`
	Endpoint string `envconfig:"EXPORTER_OTLP_ENDPOINT" default:"http://localhost:4318"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Shortener.RedirectStatus != 301 && c.Shortener.RedirectStatus != 302 {
		return fmt.Errorf("SHORTENER_REDIRECT_STATUS must be 301 or 302 (got %d)", c.Shortener.RedirectStatus)
	}
	if c.Shortener.CodeLength < 4 || c.Shortener.CodeLength > 32 {
		return fmt.Errorf("SHORTENER_CODE_LENGTH must be between 4 and 32 (got %d)", c.Shortener.CodeLength)
	}
	if c.Shortener.MaxRetries < 1 {
		return fmt.Errorf("SHORTENER_MAX_RETRIES must be >= 1 (got %d)", c.Shortener.MaxRetries)
	}

	switch c.Storage.Backend {
	case StoragePostgres, StorageMongo, StorageSQLite:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of postgres, mongo, sqlite (got %q)", c.Storage.Backend)
	}
	switch c.Queue.Backend {
	case QueueRedis, QueueKafka:
	default:
		return fmt.Errorf("QUEUE_BACKEND must be redis or kafka (got %q)", c.Queue.Backend)
	}
	switch c.Cache.Backend {
	case CacheRedis, CacheMemory, CacheNone:
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of redis, memory, none (got %q)", c.Cache.Backend)
	}

	if !c.Redis.Enabled && (c.Cache.Backend == CacheRedis || c.Queue.Backend == QueueRedis) {
		return fmt.Errorf("REDIS_ENABLED=false requires CACHE_BACKEND and QUEUE_BACKEND that do not use redis")
	}
	if c.Queue.Backend == QueueKafka && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.Queue.MaxLength <= 0 {
		return fmt.Errorf("QUEUE_MAX_LENGTH must be > 0 (got %d)", c.Queue.MaxLength)
	}
	if c.Worker.PopTimeout < time.Second {
		return fmt.Errorf("CLICK_WORKER_POP_TIMEOUT must be >= 1s (got %s)", c.Worker.PopTimeout)
	}
	if c.Security.CreateRateLimit <= 0 || c.Security.CreateRateWindow < time.Second {
		return fmt.Errorf("SECURITY_CREATE_RATE_LIMIT must be > 0 and SECURITY_CREATE_RATE_WINDOW >= 1s")
	}
	if !c.IsDevelopment() && strings.TrimSpace(c.Security.IPHashSalt) == "" {
		return fmt.Errorf("SECURITY_IP_HASH_SALT is required when APP_ENV=%s", c.App.Env)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development" || c.App.Env == "test"
}
