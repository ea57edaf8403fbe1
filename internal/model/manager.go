package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ekisa-team/voxbridge/internal/config"
	"github.com/ekisa-team/voxbridge/internal/envvar"
	"github.com/ekisa-team/voxbridge/internal/model/source"
	"github.com/ekisa-team/voxbridge/internal/xfs"
)

// WhisperRepo is the Hugging Face repository hosting ggml whisper models.
const WhisperRepo = "ggerganov/whisper.cpp"

// Downloader fetches model files into a target directory.
type Downloader interface {
	Download(ctx context.Context, spec source.Spec, targetDir string) (string, bool, error)
}

// Manager locates whisper.cpp model files, downloading them on demand.
type Manager struct {
	modelsDir    string
	autoDownload bool
	downloader   Downloader
	registry     *Registry
	mu           sync.Mutex // serializes downloads
}

// Option configures a Manager.
type Option func(*Manager)

// WithDownloader replaces the Hugging Face downloader.
func WithDownloader(d Downloader) Option {
	return func(m *Manager) {
		m.downloader = d
	}
}

// WithAutoDownload toggles downloading of missing models.
func WithAutoDownload(enabled bool) Option {
	return func(m *Manager) {
		m.autoDownload = enabled
	}
}

// NewManager creates a Manager rooted at the resolved models directory.
func NewManager(configuredDir string, opts ...Option) *Manager {
	m := &Manager{
		modelsDir:    ResolveModelsPath(configuredDir),
		autoDownload: true,
		downloader:   &source.HuggingFaceDownloader{},
		registry:     NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ModelsDir returns the directory models are stored in.
func (m *Manager) ModelsDir() string {
	return m.modelsDir
}

// Resolve returns the path of the ggml model file for a whisper model name
// such as "base" or "small.en". A name that is itself a path to an existing
// file is returned as is.
func (m *Manager) Resolve(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if path, ok := m.registry.Get(name); ok {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		m.registry.Delete(name)
	}

	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		m.registry.Set(name, name)
		return name, nil
	}

	filename := WhisperModelFile(name)
	path := filepath.Join(m.modelsDir, filename)
	if _, err := os.Stat(path); err == nil {
		m.registry.Set(name, path)
		return path, nil
	}

	if !m.autoDownload {
		return "", fmt.Errorf("%w: %s (%w)", ErrNotFound, path, ErrDownloadDisable)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := source.EnsureModelsDirectory(m.modelsDir); err != nil {
		return "", fmt.Errorf("failed to prepare models directory %s: %w", m.modelsDir, err)
	}

	dir, cached, err := m.downloader.Download(ctx, source.Spec{
		Repo:    WhisperRepo,
		Include: []string{filename},
	}, m.modelsDir)
	if err != nil {
		return "", fmt.Errorf("failed to download whisper model %s: %w", name, err)
	}

	path = filepath.Join(dir, filename)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s after download", ErrNotFound, path)
		}
		return "", err
	}

	m.registry.Set(name, path)
	slog.Info("Whisper model ready", "model", name, "path", path, "cached", cached)

	return path, nil
}

// WhisperModelFile maps a whisper model name to its ggml file name.
func WhisperModelFile(name string) string {
	if strings.HasSuffix(name, ".bin") {
		return name
	}
	return "ggml-" + name + ".bin"
}

// ResolveModelsPath returns the path to the models directory.
// Precedence:
// 1. VOXBRIDGE_MODELS_PATH environment variable.
// 2. The configured directory.
// 3. Default models path.
func ResolveModelsPath(configured string) string {
	if p := os.Getenv(envvar.VoxbridgeModelsPath); p != "" {
		return xfs.ExpandTilde(p)
	}
	if configured != "" {
		return xfs.ExpandTilde(configured)
	}
	return xfs.ExpandTilde(config.DefaultModelsPath())
}
