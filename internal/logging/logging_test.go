// ABOUTME: Tests for logger construction
// ABOUTME: Covers JSON and console formats, level filtering and attribute rendering

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-chat/internal/config"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	logger.With("component", "conversation").Info("send completed", "outcome", "assistant")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "send completed", line["msg"])
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "conversation", line["component"])
	assert.Equal(t, "assistant", line["outcome"])
}

func TestNew_ConsoleFormat(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "debug"}, &buf)

	logger.With("component", "webui").Warn("slow agent", "elapsed", "3s")
	logger.WithGroup("req").Debug("handled", "path", "/send")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], "WRN slow agent component=webui elapsed=3s")
	assert.Contains(t, lines[1], "DBG handled req.path=/send")
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Error("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "chatty", Format: "json"}, &buf)

	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelInfo))
}
