// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the proxy service. Defaults match the
// behavior of the upstream site: conservative retry/backoff, a small
// politeness delay between requests, and day-long lookup caches.
type Config struct {
	// HTTP server.
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8000"`

	// Upstream site.
	BaseURL string        `env:"JAGRITI_BASE_URL" envDefault:"https://e-jagriti.gov.in"`
	Timeout time.Duration `env:"JAGRITI_TIMEOUT" envDefault:"30s"`

	// Retry and backoff.
	MaxRetries    int           `env:"JAGRITI_MAX_RETRIES" envDefault:"3"`
	BackoffBase   time.Duration `env:"JAGRITI_BACKOFF_BASE" envDefault:"500ms"`
	BackoffFactor float64       `env:"JAGRITI_BACKOFF_FACTOR" envDefault:"2.0"`
	BackoffMax    time.Duration `env:"JAGRITI_BACKOFF_MAX" envDefault:"10s"`

	// Politeness toward the upstream.
	ConcurrencyLimit int           `env:"JAGRITI_CONCURRENT_LIMIT" envDefault:"5"`
	DelayMin         time.Duration `env:"JAGRITI_DELAY_MIN" envDefault:"500ms"`
	DelayMax         time.Duration `env:"JAGRITI_DELAY_MAX" envDefault:"1500ms"`

	// Lookup caches. RedisAddr empty means the in-memory store.
	CacheTTLStates      time.Duration `env:"CACHE_TTL_STATES" envDefault:"24h"`
	CacheTTLCommissions time.Duration `env:"CACHE_TTL_COMMISSIONS" envDefault:"24h"`
	RedisAddr           string        `env:"REDIS_ADDR"`
	RedisPassword       string        `env:"REDIS_PASSWORD"`
	RedisDB             int           `env:"REDIS_DB" envDefault:"0"`

	// Pagination.
	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"20"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE" envDefault:"100"`

	// Logging.
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the transport or server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be in 1..65535 (got %d)", c.Port)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("JAGRITI_BASE_URL must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("JAGRITI_TIMEOUT must be positive (got %s)", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("JAGRITI_MAX_RETRIES must not be negative (got %d)", c.MaxRetries)
	}
	if c.BackoffFactor < 1 {
		return fmt.Errorf("JAGRITI_BACKOFF_FACTOR must be >= 1 (got %g)", c.BackoffFactor)
	}
	if c.ConcurrencyLimit < 1 {
		return fmt.Errorf("JAGRITI_CONCURRENT_LIMIT must be >= 1 (got %d)", c.ConcurrencyLimit)
	}
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return fmt.Errorf("politeness delay range [%s, %s] is invalid", c.DelayMin, c.DelayMax)
	}
	if c.DefaultPageSize < 1 || c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("page sizes default=%d max=%d are invalid", c.DefaultPageSize, c.MaxPageSize)
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
