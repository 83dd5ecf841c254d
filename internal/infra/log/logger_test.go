package logs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restapi/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := parseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseLogLevel("verbose")
	assert.EqualError(t, err, "unknown log level: verbose")
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelInfo, false)

	logger.Debug("hidden")
	logger.Info("shown", slog.String("request_id", "abc"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "abc", entry["request_id"])
}

func TestNewOutput_RotatingFile(t *testing.T) {
	out, closer, err := newOutput(config.Log{File: filepath.Join(t.TempDir(), "app.log")})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	_, err = out.Write([]byte("line\n"))
	assert.NoError(t, err)
}

func TestNewOutput_StdoutOnly(t *testing.T) {
	_, closer, err := newOutput(config.Log{})
	require.NoError(t, err)
	assert.Nil(t, closer)
}
