package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	// ----------------------------
	// HTTP API
	// ----------------------------
	APIPort     string   `envconfig:"API_PORT" default:"3002"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	// ----------------------------
	// Metrics
	// ----------------------------
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`

	// ----------------------------
	// Storage
	// ----------------------------
	StoreDriver string `envconfig:"STORE_DRIVER" default:"memory"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	RedisURL    string `envconfig:"REDIS_URL" default:""`

	// ----------------------------
	// Datalake
	// ----------------------------
	DatalakeURL          string `envconfig:"DATALAKE_URL" default:""`
	FixturePath          string `envconfig:"FIXTURE_PATH" default:""`
	DatalakeRateLimit    int    `envconfig:"DATALAKE_RATE_LIMIT" default:"20"`
	DatalakeRetrySeconds int    `envconfig:"DATALAKE_RETRY_SECONDS" default:"5"`

	// ----------------------------
	// Workers
	// ----------------------------
	WorkerCount int `envconfig:"WORKER_COUNT" default:"4"`

	// ----------------------------
	// Presentation
	// ----------------------------
	DescribeLocale string `envconfig:"DESCRIBE_LOCALE" default:"en"`
	LogFormat      string `envconfig:"LOG_FORMAT" default:"json"`
	MailFrom       string `envconfig:"MAIL_FROM" default:"reports@jet-scheduler.local"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

// Validate checks the settings that depend on each other.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_DRIVER=%s", StoreRedis)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	if c.DatalakeRateLimit <= 0 {
		return fmt.Errorf("DATALAKE_RATE_LIMIT must be positive, got %d", c.DatalakeRateLimit)
	}
	return nil
}

func (c *Config) DatalakeRetry() time.Duration {
	return time.Duration(c.DatalakeRetrySeconds) * time.Second
}
