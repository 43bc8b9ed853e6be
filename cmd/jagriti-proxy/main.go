package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/lexisearch/jagriti-case-client/internal/config"
	"github.com/lexisearch/jagriti-case-client/pkg/cache"
	httpclient "github.com/lexisearch/jagriti-case-client/pkg/client"
	"github.com/lexisearch/jagriti-case-client/pkg/jagriti"
	"github.com/lexisearch/jagriti-case-client/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.NewLogger("main")
		bootLogger.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogFormat == "console",
		Output: os.Stderr,
	}).With().Str("component", "main").Logger()

	var store cache.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = cache.NewRedis(redisClient, "jagriti", logging.NewLogger("cache"))
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis cache store")
	} else {
		store = cache.NewMemory(logging.NewLogger("cache"))
		logger.Info().Msg("Using in-memory cache store")
	}

	transport, err := httpclient.New(httpclient.Config{
		Timeout:          cfg.Timeout,
		MaxRetries:       cfg.MaxRetries,
		BackoffBase:      cfg.BackoffBase,
		BackoffFactor:    cfg.BackoffFactor,
		BackoffMax:       cfg.BackoffMax,
		ConcurrencyLimit: int64(cfg.ConcurrencyLimit),
		DelayMin:         cfg.DelayMin,
		DelayMax:         cfg.DelayMax,
	}, logging.NewLogger("transport"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create transport")
	}

	service, err := jagriti.New(jagriti.Config{
		BaseURL:             cfg.BaseURL,
		CacheTTLStates:      cfg.CacheTTLStates,
		CacheTTLCommissions: cfg.CacheTTLCommissions,
	}, transport, store, logging.NewLogger("jagriti"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create domain client")
	}

	server := NewServer(service, store, cfg, logging.NewLogger("http"))
	mux := server.Routes()
	mux.Handle("GET /metrics", promhttp.Handler())

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("upstream", cfg.BaseURL).
		Msg("Starting case-search proxy")

	if err := http.ListenAndServe(cfg.Addr(), mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}
