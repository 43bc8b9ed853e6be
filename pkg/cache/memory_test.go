package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// Both backends must satisfy the Store contract.
var (
	_ Store = (*Memory)(nil)
	_ Store = (*Redis)(nil)
)

func newTestMemory() *Memory {
	return NewMemory(zerolog.Nop())
}

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	if err := m.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := m.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestMemoryGetMissing(t *testing.T) {
	m := newTestMemory()

	if _, err := m.Get(context.Background(), "absent"); err != ErrCacheMiss {
		t.Errorf("Get on absent key = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	if err := m.Set(ctx, "key", []byte("value"), 30*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Immediate read sees the value.
	if _, err := m.Get(ctx, "key"); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	if _, err := m.Get(ctx, "key"); err != ErrCacheMiss {
		t.Errorf("Get after expiry = %v, want ErrCacheMiss", err)
	}

	// Lazy eviction removed the entry entirely.
	stats, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 0 {
		t.Errorf("TotalEntries after lazy eviction = %d, want 0", stats.TotalEntries)
	}
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	if err := m.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	removed, err := m.Delete(ctx, "key")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !removed {
		t.Error("Delete on existing key = false, want true")
	}

	removed, err = m.Delete(ctx, "key")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if removed {
		t.Error("Delete on absent key = true, want false")
	}
}

func TestMemoryClear(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	for _, key := range []string{"a", "b", "c"} {
		if err := m.Set(ctx, key, []byte(key), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	stats, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 0 {
		t.Errorf("TotalEntries after Clear = %d, want 0", stats.TotalEntries)
	}
}

func TestMemoryCleanupExpired(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	if err := m.Set(ctx, "short1", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Set(ctx, "short2", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Set(ctx, "long", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	removed, err := m.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("CleanupExpired removed %d entries, want 2", removed)
	}

	if _, err := m.Get(ctx, "long"); err != nil {
		t.Errorf("Get on surviving key failed: %v", err)
	}
}

func TestMemoryStats(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	if err := m.Set(ctx, "active", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Set(ctx, "expired", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	stats, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 2 {
		t.Errorf("TotalEntries = %d, want 2", stats.TotalEntries)
	}
	if stats.ActiveEntries != 1 {
		t.Errorf("ActiveEntries = %d, want 1", stats.ActiveEntries)
	}
	if stats.ExpiredEntries != 1 {
		t.Errorf("ExpiredEntries = %d, want 1", stats.ExpiredEntries)
	}
}

func TestMemoryOverwriteResetsTTL(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	if err := m.Set(ctx, "key", []byte("old"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Set(ctx, "key", []byte("new"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	got, err := m.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get after overwrite failed: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Get = %q, want %q", got, "new")
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.Set(ctx, "shared", []byte("v"), time.Minute)
				_, _ = m.Get(ctx, "shared")
				_, _ = m.Delete(ctx, "shared")
			}
		}()
	}
	wg.Wait()
}

func TestCommissionsKey(t *testing.T) {
	if got := CommissionsKey("29"); got != "commissions:29" {
		t.Errorf("CommissionsKey(29) = %q", got)
	}
}
