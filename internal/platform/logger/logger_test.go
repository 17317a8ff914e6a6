package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/devcamper-api/internal/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry), "log line should be valid JSON")
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  slog.Level
		valid bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := ParseLevel(tt.name)
			assert.Equal(t, tt.want, level)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestSetupRespectsLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	l := setup(config.ServerConfig{LogLevel: "warn", Environment: "test"}, &buf)

	l.Info("hidden")
	l.Warn("shown", "bootcamp_id", "abc")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["bootcamp_id"])
	assert.Equal(t, "test", entries[0]["environment"])
	assert.Same(t, l, slog.Default(), "Setup should install the logger as default")
}

func TestHandlerMasksSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&buf, slog.LevelDebug))

	l.Info("login",
		"email", "jane@example.com",
		"password", "hunter2hunter2",
		"token", "abc.def.ghi",
		"note", "header was Bearer abcdef123456")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "jane@example.com", entry["email"])
	assert.NotEqual(t, "hunter2hunter2", entry["password"])
	assert.NotEqual(t, "abc.def.ghi", entry["token"])
	assert.NotContains(t, entry["note"], "abcdef123456")
}

func TestContextLogger(t *testing.T) {
	fallback := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	scoped := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	ctx := WithContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx))
	assert.Same(t, scoped, FromContextOrDefault(ctx, fallback))
}
