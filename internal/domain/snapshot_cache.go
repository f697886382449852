package domain

import (
	"sync"
	"time"
)

// DefaultSnapshotMaxAge is the staleness threshold for the news snapshot.
const DefaultSnapshotMaxAge = 10 * time.Minute

// SnapshotEntry is the compacted representation of one scrape batch. Entries
// are replaced wholesale, never mutated in place.
type SnapshotEntry struct {
	CompactText  string
	ArticleCount int
	Sections     []string
	CapturedAt   time.Time
	WindowHours  int
}

// NewsSnapshotCache holds the single most recent compacted snapshot.
// Last write wins; at most one entry exists at a time.
type NewsSnapshotCache struct {
	mu    sync.Mutex
	entry *SnapshotEntry
	now   func() time.Time
}

// NewNewsSnapshotCache creates an empty cache. now may be nil, in which case
// time.Now is used; tests inject a fixed clock.
func NewNewsSnapshotCache(now func() time.Time) *NewsSnapshotCache {
	if now == nil {
		now = time.Now
	}
	return &NewsSnapshotCache{now: now}
}

// Get returns the cached snapshot, if any.
func (c *NewsSnapshotCache) Get() (SnapshotEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return SnapshotEntry{}, false
	}
	return *c.entry, true
}

// Set replaces the single slot.
func (c *NewsSnapshotCache) Set(entry SnapshotEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &entry
}

// Clear empties the slot.
func (c *NewsSnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}

// IsStale reports whether the snapshot must be recomputed before serving:
// true when no entry exists, when the entry is older than maxAge, or when it
// was captured for a different time window than the request asks for.
func (c *NewsSnapshotCache) IsStale(requestedWindowHours int, maxAge time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return true
	}
	if c.now().Sub(c.entry.CapturedAt) > maxAge {
		return true
	}
	return c.entry.WindowHours != requestedWindowHours
}
