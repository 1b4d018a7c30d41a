package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: FormatJSON, Output: &buf, Service: "room-booking"})

	log.Info("booking approved", "booking_id", "b1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "booking approved", line["msg"])
	assert.Equal(t, "room-booking", line["service"])
	assert.Equal(t, "b1", line["booking_id"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: FormatText, Output: &buf})

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("unknown"))
}
