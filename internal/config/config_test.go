package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with clean env failed: %v", err)
	}

	if cfg.BaseURL != "https://e-jagriti.gov.in" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.BackoffBase != 500*time.Millisecond || cfg.BackoffFactor != 2.0 || cfg.BackoffMax != 10*time.Second {
		t.Errorf("backoff = %s/%g/%s", cfg.BackoffBase, cfg.BackoffFactor, cfg.BackoffMax)
	}
	if cfg.ConcurrencyLimit != 5 {
		t.Errorf("ConcurrencyLimit = %d, want 5", cfg.ConcurrencyLimit)
	}
	if cfg.CacheTTLStates != 24*time.Hour || cfg.CacheTTLCommissions != 24*time.Hour {
		t.Errorf("cache TTLs = %s/%s, want 24h", cfg.CacheTTLStates, cfg.CacheTTLCommissions)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty default", cfg.RedisAddr)
	}
	if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
		t.Errorf("page sizes = %d/%d", cfg.DefaultPageSize, cfg.MaxPageSize)
	}
	if cfg.Addr() != "0.0.0.0:8000" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JAGRITI_BASE_URL", "http://localhost:9999")
	t.Setenv("JAGRITI_MAX_RETRIES", "1")
	t.Setenv("JAGRITI_DELAY_MIN", "0")
	t.Setenv("JAGRITI_DELAY_MAX", "0")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BaseURL != "http://localhost:9999" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.MaxRetries != 1 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.DelayMin != 0 || cfg.DelayMax != 0 {
		t.Errorf("delays = %s/%s, want 0/0", cfg.DelayMin, cfg.DelayMax)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Host: "0.0.0.0", Port: 8000,
		BaseURL: "https://e-jagriti.gov.in", Timeout: time.Second,
		BackoffFactor: 2, ConcurrencyLimit: 1,
		DelayMax:        time.Second,
		DefaultPageSize: 20, MaxPageSize: 100,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port_zero", func(c *Config) { c.Port = 0 }},
		{"port_too_high", func(c *Config) { c.Port = 70000 }},
		{"empty_base_url", func(c *Config) { c.BaseURL = "" }},
		{"zero_timeout", func(c *Config) { c.Timeout = 0 }},
		{"negative_retries", func(c *Config) { c.MaxRetries = -1 }},
		{"shrinking_backoff", func(c *Config) { c.BackoffFactor = 0.5 }},
		{"zero_concurrency", func(c *Config) { c.ConcurrencyLimit = 0 }},
		{"inverted_delay_range", func(c *Config) { c.DelayMin = 2 * time.Second; c.DelayMax = time.Second }},
		{"max_page_below_default", func(c *Config) { c.MaxPageSize = 10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate = nil, want error")
			}
		})
	}
}
