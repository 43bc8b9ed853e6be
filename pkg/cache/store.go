package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss indicates the requested key was not found or has expired.
var ErrCacheMiss = errors.New("cache miss")

// Stats describes the current population of a cache store.
type Stats struct {
	TotalEntries   int `json:"total_entries"`
	ActiveEntries  int `json:"active_entries"`
	ExpiredEntries int `json:"expired_entries"`
}

// Store is the caching contract shared by the memory and Redis backends.
// Values are opaque byte slices; callers are responsible for serialization.
type Store interface {
	// Get retrieves the value for key. Returns ErrCacheMiss if the key is
	// absent or its entry has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with an independent per-key TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key, reporting whether an entry was present.
	Delete(ctx context.Context, key string) (bool, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// CleanupExpired sweeps out expired entries and returns how many were
	// removed. Never invoked implicitly.
	CleanupExpired(ctx context.Context) (int, error)

	// Stats returns entry counts.
	Stats(ctx context.Context) (Stats, error)
}

// Cache key constants for upstream lookup data. The Redis backend adds its
// own namespace prefix on top of these.
const (
	StatesKey            = "states"
	CommissionsKeyPrefix = "commissions:"
)

// CommissionsKey builds the cache key for one state's commission list.
func CommissionsKey(stateID string) string {
	return CommissionsKeyPrefix + stateID
}
