package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pulse-orchestrator/internal/domain"
)

const (
	defaultTraceMaxAttempts = 3
	traceBackoffStep        = 2 * time.Second
	diagnosticHintLen       = 100
)

// TraceInput identifies the article to trace.
type TraceInput struct {
	Title  string
	Source string
	Locale domain.Locale
}

// TraceUsecase drives one model call with bounded retries and parses the
// result through the extraction fallback chain. It never returns an error:
// on total failure the caller gets the documented default object, so the
// boundary route never has to special-case a failure for this operation.
type TraceUsecase interface {
	Execute(ctx context.Context, input TraceInput) domain.TraceResult
}

type traceUsecase struct {
	model       domain.ModelClient
	prompts     *PromptCatalog
	maxAttempts int
	sleep       func(time.Duration)
	logger      *slog.Logger
}

// NewTraceUsecase creates the resilient trace pipeline. maxAttempts <= 0
// falls back to 3.
func NewTraceUsecase(model domain.ModelClient, prompts *PromptCatalog, maxAttempts int, logger *slog.Logger) TraceUsecase {
	if maxAttempts <= 0 {
		maxAttempts = defaultTraceMaxAttempts
	}
	return &traceUsecase{
		model:       model,
		prompts:     prompts,
		maxAttempts: maxAttempts,
		sleep:       time.Sleep,
		logger:      logger,
	}
}

func (u *traceUsecase) Execute(ctx context.Context, input TraceInput) domain.TraceResult {
	source := input.Source
	if source == "" {
		source = "Unknown"
	}
	prompt := u.prompts.TracePrompt(input.Locale, input.Title, source)

	text, err := u.callWithRetry(ctx, prompt)
	if err != nil {
		message := "Analysis temporarily unavailable"
		if errors.Is(err, domain.ErrModelBusy) {
			message = "AI service is busy, please try again later"
		}
		u.logger.Warn("trace generation failed", slog.String("title", input.Title), slog.String("error", err.Error()))
		return domain.DefaultTraceResult(source, message)
	}

	if strings.TrimSpace(text) == "" {
		u.logger.Warn("trace returned empty response", slog.String("title", input.Title))
		return domain.DefaultTraceResult(source, "No information available for this news item")
	}

	raw, ok := ExtractJSON(text)
	if !ok {
		return domain.DefaultTraceResult(source, truncate(text, diagnosticHintLen))
	}

	var result domain.TraceResult
	if err := json.Unmarshal(raw, &result); err != nil {
		u.logger.Warn("trace response did not match schema", slog.String("error", err.Error()))
		return domain.DefaultTraceResult(source, truncate(text, diagnosticHintLen))
	}
	return result
}

// callWithRetry retries only the transient class of failure, waiting
// 2s, 4s, ... between attempts. A permanent failure aborts immediately.
func (u *traceUsecase) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		resp, err := u.model.Generate(ctx, prompt, domain.ModeChat)
		if err == nil {
			logTokenUsage(u.logger, resp.Usage)
			return resp.Text, nil
		}
		lastErr = err
		if !errors.Is(err, domain.ErrModelBusy) {
			return "", err
		}
		u.logger.Warn("trace attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		if attempt < u.maxAttempts {
			u.sleep(traceBackoffStep * time.Duration(attempt))
		}
	}
	return "", lastErr
}

func logTokenUsage(logger *slog.Logger, usage domain.TokenUsage) {
	if usage.TotalTokens == 0 {
		return
	}
	logger.Info("token usage",
		slog.Int("prompt_tokens", usage.PromptTokens),
		slog.Int("response_tokens", usage.ResponseTokens),
		slog.Int("thinking_tokens", usage.ThinkingTokens),
		slog.Int("total_tokens", usage.TotalTokens))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
