package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pulse-orchestrator/internal/domain"
	"pulse-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newChatFixture(t *testing.T, model *mockModelClient) (usecase.ChatUsecase, *mockArticleProvider) {
	t.Helper()
	provider := new(mockArticleProvider)
	cache := domain.NewNewsSnapshotCache(nil)
	refresher := usecase.NewSnapshotRefresher(provider, domain.NewContextCompactor(), cache, 0, discardLogger())
	prompts := usecase.NewPromptCatalog("", discardLogger())
	return usecase.NewChatUsecase(refresher, model, prompts, discardLogger()), provider
}

func TestChatUsecase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("Builds prompt from snapshot and question", func(t *testing.T) {
		model := new(mockModelClient)
		uc, provider := newChatFixture(t, model)

		provider.On("FetchRecent", mock.Anything, 24).Return([]domain.Article{
			{Title: "rate cut announced", Section: "finance"},
		}, nil)

		var capturedPrompt string
		model.On("Generate", mock.Anything, mock.Anything, domain.ModeChat).
			Run(func(args mock.Arguments) { capturedPrompt = args.String(1) }).
			Return(&domain.ModelResponse{Text: "the rates were cut"}, nil)

		out, err := uc.Execute(ctx, usecase.ChatInput{Question: "what happened to rates?", Locale: domain.LocaleEN})
		require.NoError(t, err)

		assert.Equal(t, "the rates were cut", out.Answer)
		assert.Equal(t, 1, out.ArticleCount)
		assert.Equal(t, 24, out.Hours)
		assert.Contains(t, capturedPrompt, "[finance]rate cut announced")
		assert.Contains(t, capturedPrompt, "Question: what happened to rates?")
		assert.True(t, strings.HasPrefix(capturedPrompt, "You are a news analysis assistant"))
	})

	t.Run("Second question reuses the fresh snapshot", func(t *testing.T) {
		model := new(mockModelClient)
		uc, provider := newChatFixture(t, model)

		provider.On("FetchRecent", mock.Anything, 24).Return([]domain.Article{
			{Title: "t", Section: "s"},
		}, nil).Once()
		model.On("Generate", mock.Anything, mock.Anything, domain.ModeChat).
			Return(&domain.ModelResponse{Text: "answer"}, nil)

		_, err := uc.Execute(ctx, usecase.ChatInput{Question: "q1"})
		require.NoError(t, err)
		_, err = uc.Execute(ctx, usecase.ChatInput{Question: "q2"})
		require.NoError(t, err)

		provider.AssertNumberOfCalls(t, "FetchRecent", 1)
		model.AssertNumberOfCalls(t, "Generate", 2)
	})

	t.Run("Snapshot failure surfaces", func(t *testing.T) {
		model := new(mockModelClient)
		uc, provider := newChatFixture(t, model)

		provider.On("FetchRecent", mock.Anything, 24).Return(nil, errors.New("db down"))

		_, err := uc.Execute(ctx, usecase.ChatInput{Question: "q"})
		assert.Error(t, err)
		model.AssertNotCalled(t, "Generate")
	})

	t.Run("Generation failure surfaces", func(t *testing.T) {
		model := new(mockModelClient)
		uc, provider := newChatFixture(t, model)

		provider.On("FetchRecent", mock.Anything, 24).Return([]domain.Article{}, nil)
		model.On("Generate", mock.Anything, mock.Anything, domain.ModeChat).
			Return(nil, errors.New("boom"))

		_, err := uc.Execute(ctx, usecase.ChatInput{Question: "q"})
		assert.ErrorContains(t, err, "chat generation failed")
	})
}
