package domain

import (
	"context"
	"time"
)

// Article is one scraped news record the way the crawler stores it.
type Article struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	Section     string    `json:"section"`
	Rank        int       `json:"rank"`
	Heat        int64     `json:"heat,omitempty"`
	Trend       string    `json:"trend,omitempty"`
	RankChange  int       `json:"rank_change,omitempty"`
	Momentum    int       `json:"momentum,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// ArticleProvider returns the most recent scrape batch for a time window.
// Ordering by section then rank is the provider's responsibility.
type ArticleProvider interface {
	FetchRecent(ctx context.Context, windowHours int) ([]Article, error)
	Sections(ctx context.Context) ([]string, error)
}
