package logger_test

import (
	"context"
	"testing"

	"pulse-orchestrator/internal/infra/logger"

	"github.com/stretchr/testify/assert"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = logger.WithRunID(ctx, "run-123")
	ctx = logger.WithLocale(ctx, "ja")
	ctx = logger.WithStage(ctx, "compact")
	ctx = logger.WithPipeline(ctx, "auto_analysis")

	assert.Equal(t, "run-123", ctx.Value(logger.RunIDKey))
	assert.Equal(t, "ja", ctx.Value(logger.LocaleKey))
	assert.Equal(t, "compact", ctx.Value(logger.StageKey))
	assert.Equal(t, "auto_analysis", ctx.Value(logger.PipelineKey))
}

func TestContextLogger_WithContext(t *testing.T) {
	cl := logger.NewContextLogger("pulse-orchestrator")

	ctx := logger.WithRunID(context.Background(), "run-123")
	log := cl.WithContext(ctx)
	assert.NotNil(t, log)

	// A bare context still yields a usable logger.
	assert.NotNil(t, cl.WithContext(context.Background()))
}
