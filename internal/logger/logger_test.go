package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/voxbridge/internal/env"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(env.Production, WithConsole(&buf))

	log.Info("engine ready", "whisper_model", "base")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "engine ready", record["msg"])
	assert.Equal(t, "base", record["whisper_model"])
}

func TestNew_DevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(env.Development, WithConsole(&buf))

	log.Debug("probing endpoint")

	assert.Contains(t, buf.String(), "probing endpoint")
}

func TestNew_LevelFiltersRecords(t *testing.T) {
	var buf bytes.Buffer
	log := New(env.Production, WithConsole(&buf), WithLevel(slog.LevelWarn))

	log.Info("dropped")
	assert.Empty(t, buf.String())
}

func TestNew_LogToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxbridge.log")
	var buf bytes.Buffer
	log := New(env.Development, WithConsole(&buf), WithLogToFile(true), WithLogFile(path))

	log.With("component", "registry").Info("handle swapped")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"handle swapped"`)
	assert.Contains(t, string(data), `"component":"registry"`)
	assert.Contains(t, buf.String(), "handle swapped")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
