package domain

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// TaskID names one of the analysis tasks the combined prompt asks for.
type TaskID string

const (
	TaskHotKeywords   TaskID = "hot_keywords"
	TaskSentiment     TaskID = "sentiment"
	TaskTrending      TaskID = "trending"
	TaskSummary       TaskID = "summary"
	TaskCrossPlatform TaskID = "cross_platform"
)

// AnalysisTasks lists the tasks in the order the combined prompt names them.
var AnalysisTasks = []TaskID{
	TaskHotKeywords,
	TaskSentiment,
	TaskTrending,
	TaskSummary,
	TaskCrossPlatform,
}

// AnalysisBundle is the set of task outputs produced by one model call for
// one locale. A bundle is internally consistent: it is created from a single
// response and replaced wholesale, never merged field-by-field.
type AnalysisBundle struct {
	TaskResults map[TaskID]string `json:"results"`
	GeneratedAt string            `json:"generatedAt"`
}

// localeSlots bounds the LRU backing the per-locale bundles. The locale set
// is closed and small, so eviction never fires in practice.
const localeSlots = 8

// AnalysisResultCache retains at most one bundle per locale. Two concurrent
// recomputes for the same locale race on Set; the last Set wins. That is an
// accepted, idempotent-overwrite race, not a correctness violation, so it is
// documented here rather than serialized away.
type AnalysisResultCache struct {
	entries *lru.Cache[Locale, AnalysisBundle]
}

// NewAnalysisResultCache creates an empty cache.
func NewAnalysisResultCache() *AnalysisResultCache {
	entries, _ := lru.New[Locale, AnalysisBundle](localeSlots)
	return &AnalysisResultCache{entries: entries}
}

// Get returns the cached bundle for a locale, if any.
func (c *AnalysisResultCache) Get(locale Locale) (AnalysisBundle, bool) {
	return c.entries.Get(locale)
}

// Set replaces the locale's bundle wholesale.
func (c *AnalysisResultCache) Set(locale Locale, bundle AnalysisBundle) {
	c.entries.Add(locale, bundle)
}

// Invalidate removes only that locale's bundle; other locales keep serving
// cached answers while this one is recomputed.
func (c *AnalysisResultCache) Invalidate(locale Locale) {
	c.entries.Remove(locale)
}

// GetTask returns one task's rendered text; absent if the bundle is missing
// or the bundle lacks the task key.
func (c *AnalysisResultCache) GetTask(locale Locale, taskID TaskID) (string, bool) {
	bundle, ok := c.entries.Get(locale)
	if !ok {
		return "", false
	}
	text, ok := bundle.TaskResults[taskID]
	return text, ok
}
