package domain_test

import (
	"testing"
	"time"

	"pulse-orchestrator/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestNewsSnapshotCache_IsStale(t *testing.T) {
	captured := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	newCacheAt := func(now time.Time) *domain.NewsSnapshotCache {
		cache := domain.NewNewsSnapshotCache(func() time.Time { return now })
		cache.Set(domain.SnapshotEntry{
			CompactText: "[tech]t1",
			CapturedAt:  captured,
			WindowHours: 1,
		})
		return cache
	}

	t.Run("Empty cache is stale", func(t *testing.T) {
		cache := domain.NewNewsSnapshotCache(nil)
		assert.True(t, cache.IsStale(1, domain.DefaultSnapshotMaxAge))
	})

	t.Run("Fresh entry just under the threshold is served", func(t *testing.T) {
		cache := newCacheAt(captured.Add(10*time.Minute - time.Second))
		assert.False(t, cache.IsStale(1, domain.DefaultSnapshotMaxAge))
	})

	t.Run("Age exactly at the threshold is still fresh", func(t *testing.T) {
		cache := newCacheAt(captured.Add(10 * time.Minute))
		assert.False(t, cache.IsStale(1, domain.DefaultSnapshotMaxAge))
	})

	t.Run("Entry past the threshold is stale", func(t *testing.T) {
		cache := newCacheAt(captured.Add(10*time.Minute + time.Second))
		assert.True(t, cache.IsStale(1, domain.DefaultSnapshotMaxAge))
	})

	t.Run("Window mismatch is stale even when fresh", func(t *testing.T) {
		cache := newCacheAt(captured.Add(time.Minute))
		assert.True(t, cache.IsStale(24, domain.DefaultSnapshotMaxAge))
	})

	t.Run("Cleared cache is stale", func(t *testing.T) {
		cache := newCacheAt(captured)
		cache.Clear()
		assert.True(t, cache.IsStale(1, domain.DefaultSnapshotMaxAge))
	})
}

func TestNewsSnapshotCache_SetReplacesSlot(t *testing.T) {
	cache := domain.NewNewsSnapshotCache(nil)

	_, ok := cache.Get()
	assert.False(t, ok)

	cache.Set(domain.SnapshotEntry{CompactText: "first", WindowHours: 1})
	cache.Set(domain.SnapshotEntry{CompactText: "second", WindowHours: 24})

	entry, ok := cache.Get()
	assert.True(t, ok)
	assert.Equal(t, "second", entry.CompactText)
	assert.Equal(t, 24, entry.WindowHours)
}
