package logging

import (
	"bytes"
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
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNew_JSONAndLevelVar(t *testing.T) {
	var buf bytes.Buffer
	logger, lv := New("info", "json", &buf)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	lv.Set(slog.LevelDebug)
	logger.Debug("shown", "city", "Markham")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "Markham", rec["city"])
	assert.Equal(t, "runbuddy", rec["app"])
}
