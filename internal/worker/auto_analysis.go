package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"pulse-orchestrator/internal/domain"
	"pulse-orchestrator/internal/infra/logger"
	"pulse-orchestrator/internal/usecase"
)

const (
	runTimeout         = 5 * time.Minute
	autoAnalysisWindow = 1
	triggerQueueDepth  = 4
)

// AutoAnalysisResult is the single-slot output of the latest successful run.
type AutoAnalysisResult struct {
	Content     string `json:"content"`
	GeneratedAt string `json:"generatedAt"`
}

// AutoAnalysisWorker consumes crawl-complete triggers from a queue and runs
// the snapshot+prompt+generate pipeline in the background. The webhook
// handler only enqueues and returns; this loop does the work. Only the most
// recent successful result is kept, and a failed run leaves the previous
// result in place so the dashboard always shows the last good analysis.
type AutoAnalysisWorker struct {
	refresher *usecase.SnapshotRefresher
	model     domain.ModelClient
	prompts   *usecase.PromptCatalog
	logger    *slog.Logger

	triggers chan uuid.UUID
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu     sync.RWMutex
	latest *AutoAnalysisResult
}

// NewAutoAnalysisWorker wires the worker; Start must be called before
// Trigger has any effect.
func NewAutoAnalysisWorker(
	refresher *usecase.SnapshotRefresher,
	model domain.ModelClient,
	prompts *usecase.PromptCatalog,
	logger *slog.Logger,
) *AutoAnalysisWorker {
	return &AutoAnalysisWorker{
		refresher: refresher,
		model:     model,
		prompts:   prompts,
		logger:    logger,
		triggers:  make(chan uuid.UUID, triggerQueueDepth),
		stopChan:  make(chan struct{}),
	}
}

// Start launches the consumer loop.
func (w *AutoAnalysisWorker) Start() {
	w.logger.Info("starting auto analysis worker")
	w.wg.Add(1)
	go w.run()
}

// Stop shuts the loop down and waits for an in-flight run to finish.
func (w *AutoAnalysisWorker) Stop() {
	w.logger.Info("stopping auto analysis worker")
	close(w.stopChan)
	w.wg.Wait()
}

// Trigger enqueues one background run and returns immediately. When the
// queue is full the trigger is dropped: a queued run will already pick up
// the same crawl output.
func (w *AutoAnalysisWorker) Trigger() uuid.UUID {
	eventID := uuid.New()
	select {
	case w.triggers <- eventID:
		w.logger.Info("auto analysis triggered", slog.String("event_id", eventID.String()))
	default:
		w.logger.Warn("auto analysis queue full, dropping trigger", slog.String("event_id", eventID.String()))
	}
	return eventID
}

// Latest returns the most recent successful result, if any run has
// completed yet.
func (w *AutoAnalysisWorker) Latest() (AutoAnalysisResult, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.latest == nil {
		return AutoAnalysisResult{}, false
	}
	return *w.latest, true
}

func (w *AutoAnalysisWorker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopChan:
			return
		case eventID := <-w.triggers:
			w.process(eventID)
		}
	}
}

func (w *AutoAnalysisWorker) process(eventID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	ctx = logger.WithRunID(ctx, eventID.String())
	ctx = logger.WithPipeline(ctx, "auto_analysis")

	log := w.logger.With(slog.String("event_id", eventID.String()))
	log.Info("auto analysis started")

	snapshot, err := w.refresher.Refresh(ctx, autoAnalysisWindow)
	if err != nil {
		log.Error("auto analysis failed to refresh snapshot", slog.String("error", err.Error()))
		return
	}

	prompt := fmt.Sprintf("%s\n\nNews data (last hour, %d items):\n%s",
		w.prompts.AutoAnalysisPrompt(domain.DefaultLocale),
		snapshot.ArticleCount,
		snapshot.CompactText)

	resp, err := w.model.Generate(ctx, prompt, domain.ModeAnalysis)
	if err != nil {
		// Previous result stays in place; the dashboard keeps showing the
		// last successful run.
		log.Error("auto analysis generation failed", slog.String("error", err.Error()))
		return
	}

	result := &AutoAnalysisResult{
		Content:     resp.Text,
		GeneratedAt: domain.FormatTimestamp(domain.DefaultLocale, time.Now()),
	}
	w.mu.Lock()
	w.latest = result
	w.mu.Unlock()

	log.Info("auto analysis completed", slog.Int("content_chars", len(resp.Text)))
}
