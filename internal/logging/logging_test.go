package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupText(t *testing.T) {
	color.NoColor = true
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger := Setup(&buf, slog.LevelInfo, "text")
	logger.With("component", "roster").Info("loaded list", "count", 3, "note", "two words")
	logger.Debug("hidden")

	line := buf.String()
	assert.Contains(t, line, "INF loaded list")
	assert.Contains(t, line, " component=roster")
	assert.Contains(t, line, " count=3")
	assert.Contains(t, line, ` note="two words"`)
	assert.NotContains(t, line, "hidden")
}

func TestSetupJSONAndLevelChange(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger := Setup(&buf, slog.LevelWarn, "json")
	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	Level.Set(slog.LevelInfo)
	logger.Info("kept", "id", "abc123")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "abc123", rec["id"])
}

func TestGroupsPrefixKeys(t *testing.T) {
	color.NoColor = true
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	Setup(&buf, slog.LevelDebug, "text").WithGroup("http").Debug("request", "status", 200)
	assert.Contains(t, buf.String(), "DBG request http.status=200")
}
