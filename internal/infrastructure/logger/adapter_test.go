package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromCore(core)

	l.WithField("runID", "run-1").Info("Step started", "step", 3)
	l.WithFields(map[string]any{"action": "click"}).Warn("Action failed", "error", "not found")
	l.Debug("Raw reply", "len", 42)
	l.Error("Run aborted")

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, "Step started", entries[0].Message)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, map[string]any{"runID": "run-1", "step": int64(3)}, entries[0].ContextMap())

	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "click", entries[1].ContextMap()["action"])
	assert.Equal(t, "not found", entries[1].ContextMap()["error"])

	assert.Equal(t, zap.DebugLevel, entries[2].Level)
	assert.Equal(t, zap.ErrorLevel, entries[3].Level)
}

func TestLoggerAdapter_LevelFilter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewFromCore(core)

	l.Debug("hidden")
	l.Info("shown")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestNewLoggerAdapter_File(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLoggerAdapter(Config{Level: "debug", Dir: dir, MaxSizeMB: 1}, "Cart total: shows NaN!")
	require.NoError(t, err)

	l.Info("Run started", "url", "https://shop.test")
	require.NoError(t, l.Close())

	assert.True(t, strings.HasPrefix(l.Path(), dir))
	assert.True(t, strings.HasSuffix(l.Path(), "_Cart_total__shows_NaN.log"), l.Path())

	f, err := os.Open(l.Path())
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	var entry map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Run started", entry["message"])
	assert.Equal(t, "https://shop.test", entry["url"])
	assert.NotEmpty(t, entry["timestamp"])
}

func TestNewLoggerAdapter_Disabled(t *testing.T) {
	l, err := NewLoggerAdapter(Config{}, "x")
	require.NoError(t, err)
	l.Info("dropped")
	assert.Empty(t, l.Path())
	assert.NoError(t, l.Close())
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"simple", "simple"},
		{"with spaces/and:colons", "with_spaces_and_colons"},
		{"!!!", "run"},
		{"", "run"},
		{strings.Repeat("a", 80), strings.Repeat("a", 60)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitize(tt.in))
		})
	}
}
