package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pulse-orchestrator/internal/domain"
)

// analysisWindowHours is the fixed window the combined analysis looks at.
const analysisWindowHours = 1

// TaskResult is one task's slice of a bundle, shaped for the dashboard.
type TaskResult struct {
	TaskID      domain.TaskID `json:"taskId"`
	TaskName    string        `json:"taskName"`
	Content     string        `json:"content"`
	GeneratedAt string        `json:"generatedAt"`
}

// AnalysisUsecase computes and caches the per-locale multi-task bundle.
// The whole bundle comes from a single batched model call: one round-trip
// for all five tasks instead of one call per task.
type AnalysisUsecase interface {
	RunTask(ctx context.Context, locale domain.Locale, taskID domain.TaskID) (*TaskResult, error)
	All(ctx context.Context, locale domain.Locale) (domain.AnalysisBundle, error)
	Refresh(locale domain.Locale)
}

type analysisUsecase struct {
	refresher *SnapshotRefresher
	model     domain.ModelClient
	prompts   *PromptCatalog
	cache     *domain.AnalysisResultCache
	now       func() time.Time
	logger    *slog.Logger
}

// NewAnalysisUsecase wires the bundle pipeline.
func NewAnalysisUsecase(
	refresher *SnapshotRefresher,
	model domain.ModelClient,
	prompts *PromptCatalog,
	cache *domain.AnalysisResultCache,
	logger *slog.Logger,
) AnalysisUsecase {
	return &analysisUsecase{
		refresher: refresher,
		model:     model,
		prompts:   prompts,
		cache:     cache,
		now:       time.Now,
		logger:    logger,
	}
}

// RunTask serves one task from the cached bundle when possible. A cached
// bundle that lacks the requested task key counts as a cache miss and
// triggers a full recompute; if the fresh bundle still lacks the key the
// task is reported as failed rather than erroring the request.
func (u *analysisUsecase) RunTask(ctx context.Context, locale domain.Locale, taskID domain.TaskID) (*TaskResult, error) {
	if content, ok := u.cache.GetTask(locale, taskID); ok {
		bundle, _ := u.cache.Get(locale)
		return &TaskResult{
			TaskID:      taskID,
			TaskName:    TaskName(taskID, locale),
			Content:     content,
			GeneratedAt: bundle.GeneratedAt,
		}, nil
	}

	bundle, err := u.computeBundle(ctx, locale)
	if err != nil {
		return nil, err
	}

	content, ok := bundle.TaskResults[taskID]
	if !ok {
		u.logger.Warn("bundle missing requested task",
			slog.String("locale", string(locale)),
			slog.String("task_id", string(taskID)))
		content = "Analysis failed"
	}
	return &TaskResult{
		TaskID:      taskID,
		TaskName:    TaskName(taskID, locale),
		Content:     content,
		GeneratedAt: bundle.GeneratedAt,
	}, nil
}

// All returns the locale's full bundle, computing it on a miss.
func (u *analysisUsecase) All(ctx context.Context, locale domain.Locale) (domain.AnalysisBundle, error) {
	if bundle, ok := u.cache.Get(locale); ok {
		return bundle, nil
	}
	return u.computeBundle(ctx, locale)
}

// Refresh invalidates only that locale's bundle.
func (u *analysisUsecase) Refresh(locale domain.Locale) {
	u.cache.Invalidate(locale)
}

// computeBundle runs the batched analysis call and replaces the locale's
// bundle. Unlike the trace path, extraction failures here fail loudly: a
// silently-wrong bundle is worse than a visible error to the operator.
func (u *analysisUsecase) computeBundle(ctx context.Context, locale domain.Locale) (domain.AnalysisBundle, error) {
	runID := uuid.New()

	snapshot, err := u.refresher.Ensure(ctx, analysisWindowHours)
	if err != nil {
		return domain.AnalysisBundle{}, err
	}

	prompt := fmt.Sprintf("%s\n\nNews data (%d items):\n%s",
		u.prompts.AnalysisPrompt(locale),
		snapshot.ArticleCount,
		snapshot.CompactText)

	u.logger.Info("running combined analysis",
		slog.String("run_id", runID.String()),
		slog.String("locale", string(locale)),
		slog.Int("article_count", snapshot.ArticleCount))

	resp, err := u.model.Generate(ctx, prompt, domain.ModeAnalysis)
	if err != nil {
		return domain.AnalysisBundle{}, fmt.Errorf("analysis generation failed: %w", err)
	}
	logTokenUsage(u.logger, resp.Usage)

	// Combined-analysis prompts always ask for a bare JSON object, so the
	// brace slice is the whole extraction here.
	raw, ok := SliceBraces(resp.Text)
	if !ok {
		return domain.AnalysisBundle{}, fmt.Errorf("no JSON object in analysis response")
	}

	var results map[domain.TaskID]string
	if err := json.Unmarshal(raw, &results); err != nil {
		return domain.AnalysisBundle{}, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	bundle := domain.AnalysisBundle{
		TaskResults: results,
		GeneratedAt: domain.FormatTimestamp(locale, u.now()),
	}
	u.cache.Set(locale, bundle)

	u.logger.Info("combined analysis completed",
		slog.String("run_id", runID.String()),
		slog.String("locale", string(locale)),
		slog.Int("task_count", len(results)))
	return bundle, nil
}
