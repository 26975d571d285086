package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	minProductionSecretLen = 32
)

type Config struct {
	Port       string `env:"PORT,        default=3002"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	CORSOrigin string `env:"CORS_ORIGIN, default=*"`

	Auth     AuthConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Stream   StreamConfig
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET, required"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,        default=1h"`
	BcryptCost      int           `env:"BCRYPT_COST,      default=10"`
	HashConcurrency int64         `env:"HASH_CONCURRENCY, default=4"`
}

type StorageConfig struct {
	Driver         string `env:"STORAGE_DRIVER,   default=postgres"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START, default=true"`
}

type PostgresConfig struct {
	DSN             string        `env:"DATABASE_URL"`
	MaxConns        int32         `env:"DB_MAX_CONNS,          default=10"`
	MinConns        int32         `env:"DB_MIN_CONNS,          default=1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME,  default=1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME, default=15m"`
}

// RedisConfig enables the cross-instance relay and idempotency keys.
// An empty Addr disables both.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR"`
	DB             int           `env:"REDIS_DB,              default=0"`
	Channel        string        `env:"REDIS_CHANNEL,         default=novedades:events"`
	IdempotencyTTL time.Duration `env:"REDIS_IDEMPOTENCY_TTL, default=24h"`
}

// MongoConfig enables the audit trail. An empty URI disables it.
type MongoConfig struct {
	URI          string `env:"MONGO_URI"`
	Database     string `env:"MONGO_DB,            default=novedades"`
	AuditWorkers int    `env:"MONGO_AUDIT_WORKERS, default=4"`
}

type StreamConfig struct {
	SubscriberBuffer int           `env:"STREAM_SUBSCRIBER_BUFFER, default=64"`
	PingInterval     time.Duration `env:"STREAM_PING_INTERVAL,     default=30s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l; tests pass envconfig.MapLookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks cross-field rules envconfig tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres"))
		}
	case StorageDriverMemory:
		if c.IsProduction() {
			errs = append(errs, errors.New("STORAGE_DRIVER=memory is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}
	if c.IsProduction() && len(c.Auth.JWTSecret) < minProductionSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minProductionSecretLen))
	}
	if c.Stream.SubscriberBuffer <= 0 {
		errs = append(errs, errors.New("STREAM_SUBSCRIBER_BUFFER must be positive"))
	}
	return errors.Join(errs...)
}
