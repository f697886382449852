package usecase_test

import (
	"context"
	"io"
	"log/slog"

	"pulse-orchestrator/internal/domain"

	"github.com/stretchr/testify/mock"
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
