package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug")

	ctx := ContextWithRequestID(context.Background(), "req-123")
	logger.InfoContext(ctx, "hello", slog.String("k", "v"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-123", rec["request_id"])
	assert.Equal(t, "v", rec["k"])
}

func TestLoggerWithoutRequestID(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info").With(slog.String("component", "test")).InfoContext(context.Background(), "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, rec, "request_id")
	assert.Equal(t, "test", rec["component"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestContextWithNewRequestID(t *testing.T) {
	a := RequestIDFromContext(ContextWithNewRequestID(context.Background()))
	b := RequestIDFromContext(ContextWithNewRequestID(context.Background()))
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
