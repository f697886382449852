package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"pulse-orchestrator/internal/domain"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubModel scripts one response per call without the weight of a full mock.
type stubModel struct {
	calls     int
	responses []func() (*domain.ModelResponse, error)
}

func (s *stubModel) Generate(ctx context.Context, prompt string, mode domain.GenerationMode) (*domain.ModelResponse, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx]()
}

func newRetryFixture(model domain.ModelClient, maxAttempts int) (*traceUsecase, *[]time.Duration) {
	sleeps := &[]time.Duration{}
	uc := NewTraceUsecase(model, NewPromptCatalog("", testLogger()), maxAttempts, testLogger()).(*traceUsecase)
	uc.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return uc, sleeps
}

func TestTraceUsecase_RetrySchedule(t *testing.T) {
	ctx := context.Background()
	busyErr := func() (*domain.ModelResponse, error) {
		return nil, fmt.Errorf("generation endpoint returned 503: %w", domain.ErrModelBusy)
	}

	t.Run("Busy twice then success uses increasing backoff", func(t *testing.T) {
		model := &stubModel{responses: []func() (*domain.ModelResponse, error){
			busyErr,
			busyErr,
			func() (*domain.ModelResponse, error) {
				return &domain.ModelResponse{Text: `{"summary":"traced"}`}, nil
			},
		}}
		uc, sleeps := newRetryFixture(model, 3)

		result := uc.Execute(ctx, TraceInput{Title: "story", Locale: domain.LocaleEN})

		assert.Equal(t, 3, model.calls)
		assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *sleeps)
		assert.Equal(t, "traced", result.Summary)
	})

	t.Run("Busy on every attempt yields the busy default", func(t *testing.T) {
		model := &stubModel{responses: []func() (*domain.ModelResponse, error){busyErr}}
		uc, sleeps := newRetryFixture(model, 3)

		result := uc.Execute(ctx, TraceInput{Title: "story", Source: "Weibo", Locale: domain.LocaleEN})

		assert.Equal(t, 3, model.calls)
		assert.Len(t, *sleeps, 2)
		assert.Equal(t, "AI service is busy, please try again later", result.Summary)
		assert.Equal(t, "Weibo", result.Origin.Source)
	})

	t.Run("Permanent failure aborts without retrying", func(t *testing.T) {
		model := &stubModel{responses: []func() (*domain.ModelResponse, error){
			func() (*domain.ModelResponse, error) { return nil, errors.New("connection refused") },
		}}
		uc, sleeps := newRetryFixture(model, 3)

		result := uc.Execute(ctx, TraceInput{Title: "story", Locale: domain.LocaleEN})

		assert.Equal(t, 1, model.calls)
		assert.Empty(t, *sleeps)
		assert.Equal(t, "Analysis temporarily unavailable", result.Summary)
	})
}
