package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pulse-orchestrator/internal/domain"
)

// SnapshotRefresher populates the NewsSnapshotCache from the article
// provider. The previous entry is left untouched when the refresh fails:
// the cache is only written after a fully successful fetch and compaction.
type SnapshotRefresher struct {
	articles  domain.ArticleProvider
	compactor domain.ContextCompactor
	cache     *domain.NewsSnapshotCache
	maxAge    time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewSnapshotRefresher wires the refresher. maxAge <= 0 falls back to the
// default 10-minute staleness threshold.
func NewSnapshotRefresher(
	articles domain.ArticleProvider,
	compactor domain.ContextCompactor,
	cache *domain.NewsSnapshotCache,
	maxAge time.Duration,
	logger *slog.Logger,
) *SnapshotRefresher {
	if maxAge <= 0 {
		maxAge = domain.DefaultSnapshotMaxAge
	}
	return &SnapshotRefresher{
		articles:  articles,
		compactor: compactor,
		cache:     cache,
		maxAge:    maxAge,
		now:       time.Now,
		logger:    logger,
	}
}

// Ensure returns a fresh-enough snapshot for the window, refreshing the cache
// first when the staleness check fails.
func (r *SnapshotRefresher) Ensure(ctx context.Context, windowHours int) (domain.SnapshotEntry, error) {
	if !r.cache.IsStale(windowHours, r.maxAge) {
		if entry, ok := r.cache.Get(); ok {
			return entry, nil
		}
	}
	return r.Refresh(ctx, windowHours)
}

// Refresh fetches the latest batch, compacts it, and replaces the slot.
func (r *SnapshotRefresher) Refresh(ctx context.Context, windowHours int) (domain.SnapshotEntry, error) {
	articles, err := r.articles.FetchRecent(ctx, windowHours)
	if err != nil {
		return domain.SnapshotEntry{}, fmt.Errorf("failed to fetch recent articles: %w", err)
	}

	sections := make([]string, 0, 8)
	seen := make(map[string]struct{}, 8)
	for _, a := range articles {
		if a.Section == "" {
			continue
		}
		if _, ok := seen[a.Section]; ok {
			continue
		}
		seen[a.Section] = struct{}{}
		sections = append(sections, a.Section)
	}

	entry := domain.SnapshotEntry{
		CompactText:  r.compactor.Compact(articles),
		ArticleCount: len(articles),
		Sections:     sections,
		CapturedAt:   r.now(),
		WindowHours:  windowHours,
	}
	r.cache.Set(entry)

	r.logger.Info("news snapshot refreshed",
		slog.Int("article_count", entry.ArticleCount),
		slog.Int("window_hours", windowHours),
		slog.Int("compact_chars", len(entry.CompactText)))
	return entry, nil
}
