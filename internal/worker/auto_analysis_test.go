package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"pulse-orchestrator/internal/domain"
	"pulse-orchestrator/internal/usecase"
	"pulse-orchestrator/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockModelClient struct {
	mock.Mock
}

func (m *mockModelClient) Generate(ctx context.Context, prompt string, mode domain.GenerationMode) (*domain.ModelResponse, error) {
	args := m.Called(ctx, prompt, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelResponse), args.Error(1)
}

type mockArticleProvider struct {
	mock.Mock
}

func (m *mockArticleProvider) FetchRecent(ctx context.Context, windowHours int) ([]domain.Article, error) {
	args := m.Called(ctx, windowHours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Article), args.Error(1)
}

func (m *mockArticleProvider) Sections(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newWorkerFixture(provider *mockArticleProvider, model *mockModelClient) *worker.AutoAnalysisWorker {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := domain.NewNewsSnapshotCache(nil)
	refresher := usecase.NewSnapshotRefresher(provider, domain.NewContextCompactor(), cache, 0, log)
	prompts := usecase.NewPromptCatalog("", log)
	return worker.NewAutoAnalysisWorker(refresher, model, prompts, log)
}

func waitForResult(t *testing.T, w *worker.AutoAnalysisWorker) worker.AutoAnalysisResult {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if result, ok := w.Latest(); ok {
			return result
		}
		select {
		case <-deadline:
			t.Fatal("no result produced before deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestAutoAnalysisWorker_SuccessfulRun(t *testing.T) {
	provider := new(mockArticleProvider)
	model := new(mockModelClient)
	provider.On("FetchRecent", mock.Anything, 1).Return([]domain.Article{
		{Title: "t1", Section: "tech"},
	}, nil)
	model.On("Generate", mock.Anything, mock.Anything, domain.ModeAnalysis).
		Return(&domain.ModelResponse{Text: "## Hot topics\n..."}, nil)

	w := newWorkerFixture(provider, model)
	w.Start()
	defer w.Stop()

	_, ok := w.Latest()
	assert.False(t, ok)

	eventID := w.Trigger()
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", eventID.String())

	result := waitForResult(t, w)
	assert.Equal(t, "## Hot topics\n...", result.Content)
	assert.NotEmpty(t, result.GeneratedAt)
}

func TestAutoAnalysisWorker_FailedRunKeepsPreviousResult(t *testing.T) {
	provider := new(mockArticleProvider)
	model := new(mockModelClient)
	failed := make(chan struct{}, 1)
	provider.On("FetchRecent", mock.Anything, 1).Return([]domain.Article{}, nil)
	model.On("Generate", mock.Anything, mock.Anything, domain.ModeAnalysis).
		Return(&domain.ModelResponse{Text: "first analysis"}, nil).Once()
	model.On("Generate", mock.Anything, mock.Anything, domain.ModeAnalysis).
		Run(func(mock.Arguments) { failed <- struct{}{} }).
		Return(nil, errors.New("gateway down"))

	w := newWorkerFixture(provider, model)
	w.Start()
	defer w.Stop()

	w.Trigger()
	first := waitForResult(t, w)
	require.Equal(t, "first analysis", first.Content)

	w.Trigger()
	select {
	case <-failed:
	case <-time.After(2 * time.Second):
		t.Fatal("second run never reached the model")
	}

	result, ok := w.Latest()
	require.True(t, ok)
	assert.Equal(t, "first analysis", result.Content)
}

func TestAutoAnalysisWorker_StopWaitsForLoop(t *testing.T) {
	provider := new(mockArticleProvider)
	model := new(mockModelClient)

	w := newWorkerFixture(provider, model)
	w.Start()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
