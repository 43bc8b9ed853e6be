package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// entry is a single cached value with its expiry bookkeeping.
type entry struct {
	value     []byte
	expiresAt time.Time
	createdAt time.Time
}

// Memory is an in-process TTL cache. All operations are serialized through
// one exclusive lock per instance; hold times are bounded because operations
// are pure map work, never network I/O.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	logger  zerolog.Logger
}

// NewMemory creates an empty in-process cache.
func NewMemory(logger zerolog.Logger) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		logger:  logger,
	}
}

// Get retrieves the value for key. An expired entry is removed on read and
// reported as a miss.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	if time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		m.logger.Debug().Str("key", key).Msg("Cache entry expired and removed")
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()
	return e.value, nil
}

// Set stores value under key with the given TTL.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.entries[key] = entry{
		value:     value,
		expiresAt: now.Add(ttl),
		createdAt: now,
	}
	m.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("Cache entry set")
	return nil
}

// Delete removes key, reporting whether an entry was present.
func (m *Memory) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		return false, nil
	}
	delete(m.entries, key)
	m.logger.Debug().Str("key", key).Msg("Cache entry deleted")
	return true, nil
}

// Clear removes all entries.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]entry)
	m.logger.Debug().Msg("Cache cleared")
	return nil
}

// CleanupExpired performs a full scan, removing every expired entry.
func (m *Memory) CleanupExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}

	if removed > 0 {
		m.logger.Debug().Int("removed", removed).Msg("Cleaned up expired cache entries")
	}
	return removed, nil
}

// Stats counts active and expired entries without evicting anything.
func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	stats := Stats{TotalEntries: len(m.entries)}
	for _, e := range m.entries {
		if now.After(e.expiresAt) {
			stats.ExpiredEntries++
		} else {
			stats.ActiveEntries++
		}
	}
	return stats, nil
}
