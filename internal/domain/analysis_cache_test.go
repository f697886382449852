package domain_test

import (
	"testing"

	"pulse-orchestrator/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisResultCache(t *testing.T) {
	bundle := func(summary string) domain.AnalysisBundle {
		return domain.AnalysisBundle{
			TaskResults: map[domain.TaskID]string{
				domain.TaskSummary: summary,
			},
			GeneratedAt: "2026-08-29 12:00:00",
		}
	}

	t.Run("Bundles are scoped per locale", func(t *testing.T) {
		cache := domain.NewAnalysisResultCache()
		cache.Set(domain.LocaleZH, bundle("zh summary"))
		cache.Set(domain.LocaleEN, bundle("en summary"))

		got, ok := cache.Get(domain.LocaleZH)
		assert.True(t, ok)
		assert.Equal(t, "zh summary", got.TaskResults[domain.TaskSummary])

		got, ok = cache.Get(domain.LocaleEN)
		assert.True(t, ok)
		assert.Equal(t, "en summary", got.TaskResults[domain.TaskSummary])
	})

	t.Run("Invalidate removes only the named locale", func(t *testing.T) {
		cache := domain.NewAnalysisResultCache()
		cache.Set(domain.LocaleZH, bundle("zh summary"))
		cache.Set(domain.LocaleEN, bundle("en summary"))

		cache.Invalidate(domain.LocaleEN)

		_, ok := cache.Get(domain.LocaleEN)
		assert.False(t, ok)
		_, ok = cache.Get(domain.LocaleZH)
		assert.True(t, ok)
	})

	t.Run("GetTask misses when the bundle lacks the key", func(t *testing.T) {
		cache := domain.NewAnalysisResultCache()
		cache.Set(domain.LocaleZH, bundle("zh summary"))

		text, ok := cache.GetTask(domain.LocaleZH, domain.TaskSummary)
		assert.True(t, ok)
		assert.Equal(t, "zh summary", text)

		_, ok = cache.GetTask(domain.LocaleZH, domain.TaskSentiment)
		assert.False(t, ok)
	})

	t.Run("GetTask misses on unknown locale", func(t *testing.T) {
		cache := domain.NewAnalysisResultCache()
		_, ok := cache.GetTask(domain.LocaleJA, domain.TaskSummary)
		assert.False(t, ok)
	})
}
