package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"pulse-orchestrator/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceContextHandler(t *testing.T) {
	t.Run("Adds trace and span ids from the active span", func(t *testing.T) {
		var buf bytes.Buffer
		log := slog.New(logger.NewTraceContextHandler(slog.NewJSONHandler(&buf, nil)))

		traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
		require.NoError(t, err)
		spanID, err := trace.SpanIDFromHex("0102030405060708")
		require.NoError(t, err)
		ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: traceID,
			SpanID:  spanID,
		}))

		log.InfoContext(ctx, "request handled")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", record["trace_id"])
		assert.Equal(t, "0102030405060708", record["span_id"])
		assert.Equal(t, "request handled", record["msg"])
	})

	t.Run("No span means no trace fields", func(t *testing.T) {
		var buf bytes.Buffer
		log := slog.New(logger.NewTraceContextHandler(slog.NewJSONHandler(&buf, nil)))

		log.InfoContext(context.Background(), "no span here")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		_, hasTrace := record["trace_id"]
		assert.False(t, hasTrace)
	})
}
