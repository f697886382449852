package newsdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pulse-orchestrator/internal/domain"
)

// fetchLimit caps one scrape batch; the crawler writes at most a few
// thousand rows per window.
const fetchLimit = 2000

// Querier is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ArticleRepository reads scraped news records from Postgres. It implements
// domain.ArticleProvider.
type ArticleRepository struct {
	db Querier
}

// NewArticleRepository wraps a connection pool.
func NewArticleRepository(db Querier) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// FetchRecent returns the batch scraped within the window, ordered by
// section then rank as the staleness and compaction layers expect.
func (r *ArticleRepository) FetchRecent(ctx context.Context, windowHours int) ([]domain.Article, error) {
	query := `
		SELECT id, title, description, source, section, "rank", heat, trend, rank_change, momentum, scraped_at
		FROM news_articles
		WHERE scraped_at >= now() - make_interval(hours => $1)
		ORDER BY section, "rank" ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, windowHours, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent articles: %w", err)
	}
	defer rows.Close()

	articles := make([]domain.Article, 0, 64)
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Description,
			&a.Source,
			&a.Section,
			&a.Rank,
			&a.Heat,
			&a.Trend,
			&a.RankChange,
			&a.Momentum,
			&a.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read article rows: %w", err)
	}
	return articles, nil
}

// Sections returns the distinct section labels seen in the last day.
func (r *ArticleRepository) Sections(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT section
		FROM news_articles
		WHERE scraped_at >= now() - interval '24 hours'
		  AND section IS NOT NULL
		ORDER BY section
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	sections := make([]string, 0, 8)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan section row: %w", err)
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read section rows: %w", err)
	}
	return sections, nil
}

var _ domain.ArticleProvider = (*ArticleRepository)(nil)
