package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"pulse-orchestrator/internal/domain"
)

const defaultChatWindowHours = 24

// ChatInput is one dashboard question over the cached snapshot.
type ChatInput struct {
	Question string
	Hours    int
	Locale   domain.Locale
}

// ChatOutput carries the answer plus the cache metadata the UI displays.
type ChatOutput struct {
	Answer       string
	ArticleCount int
	Hours        int
}

// ChatUsecase answers questions against the compacted news snapshot,
// refreshing it first when the staleness policy says so.
type ChatUsecase interface {
	Execute(ctx context.Context, input ChatInput) (*ChatOutput, error)
}

type chatUsecase struct {
	refresher *SnapshotRefresher
	model     domain.ModelClient
	prompts   *PromptCatalog
	logger    *slog.Logger
}

// NewChatUsecase wires the chat pipeline.
func NewChatUsecase(refresher *SnapshotRefresher, model domain.ModelClient, prompts *PromptCatalog, logger *slog.Logger) ChatUsecase {
	return &chatUsecase{
		refresher: refresher,
		model:     model,
		prompts:   prompts,
		logger:    logger,
	}
}

func (u *chatUsecase) Execute(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	hours := input.Hours
	if hours <= 0 {
		hours = defaultChatWindowHours
	}

	snapshot, err := u.refresher.Ensure(ctx, hours)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("%s\n\nNews data (%d items, last %d hours):\n%s\n\nQuestion: %s",
		u.prompts.ChatSystemPrompt(input.Locale),
		snapshot.ArticleCount,
		hours,
		snapshot.CompactText,
		input.Question)

	resp, err := u.model.Generate(ctx, prompt, domain.ModeChat)
	if err != nil {
		return nil, fmt.Errorf("chat generation failed: %w", err)
	}
	logTokenUsage(u.logger, resp.Usage)

	return &ChatOutput{
		Answer:       resp.Text,
		ArticleCount: snapshot.ArticleCount,
		Hours:        hours,
	}, nil
}
