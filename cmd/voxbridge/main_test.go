package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/voxbridge/internal/backend"
	"github.com/ekisa-team/voxbridge/internal/config"
	"github.com/ekisa-team/voxbridge/internal/envvar"
)

func fakeBinary(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return path
}

func TestWhisperBinary_SearchesPath(t *testing.T) {
	bin := fakeBinary(t, defaultWhisperBinary)
	t.Setenv("PATH", filepath.Dir(bin))

	path, ok, err := whisperBinary(config.TranscriberConfig{Provider: config.TranscriberWhisperCPP})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, bin, path)
}

func TestWhisperBinary_NotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, _, err := whisperBinary(config.TranscriberConfig{Provider: config.TranscriberWhisperCPP})
	assert.ErrorIs(t, err, exec.ErrNotFound)

	_, _, err = whisperBinary(config.TranscriberConfig{
		Provider: config.TranscriberAuto,
		BinPath:  filepath.Join(t.TempDir(), "whisper-server"),
	})
	assert.Error(t, err)
}

func TestWhisperBinary_ConfiguredPath(t *testing.T) {
	bin := fakeBinary(t, "custom-whisper")

	path, ok, err := whisperBinary(config.TranscriberConfig{Provider: config.TranscriberAuto, BinPath: bin})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, bin, path)
}

func TestRegisterWhisper(t *testing.T) {
	t.Run("auto without binary", func(t *testing.T) {
		providers := backend.NewRegistry()
		require.NoError(t, registerWhisper(config.TranscriberConfig{Provider: config.TranscriberAuto}, providers, backend.NewServerManager()))
		assert.Empty(t, providers.Providers())
	})

	t.Run("forced without binary on PATH", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())
		providers := backend.NewRegistry()
		err := registerWhisper(config.TranscriberConfig{Provider: config.TranscriberWhisperCPP}, providers, backend.NewServerManager())
		assert.Error(t, err)
		assert.Empty(t, providers.Providers())
	})

	t.Run("binary on PATH", func(t *testing.T) {
		bin := fakeBinary(t, defaultWhisperBinary)
		t.Setenv("PATH", filepath.Dir(bin))
		t.Setenv(envvar.VoxbridgeModelsPath, t.TempDir())

		providers := backend.NewRegistry()
		require.NoError(t, registerWhisper(config.TranscriberConfig{Provider: config.TranscriberWhisperCPP}, providers, backend.NewServerManager()))
		assert.Equal(t, []backend.Provider{backend.ProviderWhisperCPP}, providers.Providers())
	})
}
