package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is a Store backed by a Redis server, for deployments where several
// instances should share one lookup cache. Expiry is delegated to Redis
// native per-key TTLs, so CleanupExpired has nothing to sweep.
type Redis struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedis creates a Redis-backed store. All keys are namespaced under
// prefix to keep the cache separable from other users of the same server.
func NewRedis(client *redis.Client, prefix string, logger zerolog.Logger) *Redis {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &Redis{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (r *Redis) prefixed(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

func (r *Redis) scanPattern() string {
	if r.prefix == "" {
		return "*"
	}
	return r.prefix + ":*"
}

// Get retrieves the value for key. Returns ErrCacheMiss for absent keys;
// Redis removes expired entries itself.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefixed(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	CacheHits.WithLabelValues("redis").Inc()
	return data, nil
}

// Set stores value under key with a native Redis TTL.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.prefixed(key), value, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	r.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("Cache entry set")
	return nil
}

// Delete removes key, reporting whether an entry was present.
func (r *Redis) Delete(ctx context.Context, key string) (bool, error) {
	removed, err := r.client.Del(ctx, r.prefixed(key)).Result()
	if err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return false, fmt.Errorf("redis del: %w", err)
	}
	return removed > 0, nil
}

// Clear removes every key under this store's prefix.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.scanPattern(), 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			CacheErrors.WithLabelValues("clear").Inc()
			return fmt.Errorf("redis del %q: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("redis scan: %w", err)
	}
	r.logger.Debug().Msg("Cache cleared")
	return nil
}

// CleanupExpired is a no-op for the Redis backend: the server evicts expired
// keys on its own schedule.
func (r *Redis) CleanupExpired(_ context.Context) (int, error) {
	return 0, nil
}

// Stats counts keys under this store's prefix. Redis never reports expired
// entries, so ExpiredEntries is always zero here.
func (r *Redis) Stats(ctx context.Context) (Stats, error) {
	count := 0
	iter := r.client.Scan(ctx, 0, r.scanPattern(), 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return Stats{}, fmt.Errorf("redis scan: %w", err)
	}
	return Stats{TotalEntries: count, ActiveEntries: count}, nil
}
