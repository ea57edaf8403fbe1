package whisper

import (
	"context"
	"fmt"
	"time"

	"github.com/ekisa-team/voxbridge/internal/backend"
	"github.com/ekisa-team/voxbridge/internal/settings"
)

// ModelResolver maps a whisper model name such as "base" to a model file.
type ModelResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// ConstructorOptions configures the transcribers built by NewConstructor.
type ConstructorOptions struct {
	BinPath       string
	Models        ModelResolver
	ServerManager *backend.ServerManager
	Parameters    map[string]any
	ReadyTimeout  time.Duration
}

// NewConstructor returns a backend.TranscriberConstructor that resolves the
// settings' whisper model and starts a dedicated server for it.
func NewConstructor(opts ConstructorOptions) backend.TranscriberConstructor {
	return func(ctx context.Context, s settings.Settings) (backend.Transcriber, error) {
		modelPath, err := opts.Models.Resolve(ctx, s.WhisperModel)
		if err != nil {
			return nil, fmt.Errorf("whisper: resolve model %q: %w", s.WhisperModel, err)
		}

		return New(ctx, Options{
			BinPath:       opts.BinPath,
			ModelPath:     modelPath,
			ServerManager: opts.ServerManager,
			Parameters:    opts.Parameters,
			ReadyTimeout:  opts.ReadyTimeout,
		})
	}
}
