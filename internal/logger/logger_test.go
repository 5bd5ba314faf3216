package logger

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewSlog_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlog(SlogConfig{Level: "info", Format: "json", AppName: "photoshare", Output: &buf})

	log.Debug("hidden")
	log.Info("image created", "duration_ms", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "image created", entry["msg"])
	assert.Equal(t, "photoshare", entry["app"])
	assert.EqualValues(t, 3, entry["duration_ms"])

	ts, ok := entry["time"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestNewSlog_Text(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlog(SlogConfig{Level: "debug", Format: "text", Output: &buf})

	log.Debug("cache miss", "key", "image:1")
	assert.Contains(t, buf.String(), "cache miss")
	assert.Contains(t, buf.String(), "key=image:1")
	assert.Contains(t, buf.String(), "source=")
}
