package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})

	log.Debug("hidden")
	log.Info("visible", StudentID(7), Component("test"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, float64(7), entry["student_id"])
	assert.Equal(t, "test", entry["component"])
}

func TestContextPropagation(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, slog.Default(), FromContext(ctx))
	assert.Equal(t, "", RequestIDFrom(ctx))

	l := Discard()
	ctx = WithContext(ctx, l)
	ctx = WithRequestID(ctx, "req-1")
	assert.Same(t, l, FromContext(ctx))
	assert.Equal(t, "req-1", RequestIDFrom(ctx))
}
