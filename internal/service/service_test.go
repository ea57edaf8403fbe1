package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/voxbridge/internal/backend"
	"github.com/ekisa-team/voxbridge/internal/settings"
)

var errEngineClosed = errors.New("engine used after close")

type fakeEngine struct {
	settings settings.Settings

	transcribe func(ctx context.Context, path string) (string, error)
	cleanup    func(ctx context.Context, text, systemPrompt string) (string, error)

	closed atomic.Bool
	calls  atomic.Int32
}

func (e *fakeEngine) Transcribe(ctx context.Context, path string) (string, error) {
	if e.closed.Load() {
		return "", errEngineClosed
	}
	e.calls.Add(1)
	if e.transcribe != nil {
		return e.transcribe(ctx, path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return "transcribed by " + e.settings.Model, nil
}

func (e *fakeEngine) Cleanup(ctx context.Context, text, systemPrompt string) (string, error) {
	if e.closed.Load() {
		return "", errEngineClosed
	}
	e.calls.Add(1)
	if e.cleanup != nil {
		return e.cleanup(ctx, text, systemPrompt)
	}
	return text, nil
}

func (e *fakeEngine) DefaultPrompt() string {
	return backend.DefaultPrompt
}

func (e *fakeEngine) Close() error {
	e.closed.Store(true)
	return nil
}

// fakeFactory records every engine it builds.
type fakeFactory struct {
	mu      sync.Mutex
	engines []*fakeEngine
	build   func(ctx context.Context, s settings.Settings) (*fakeEngine, error)
}

func (f *fakeFactory) Build(ctx context.Context, s settings.Settings) (backend.Engine, error) {
	var (
		e   *fakeEngine
		err error
	)
	if f.build != nil {
		e, err = f.build(ctx, s)
	} else {
		e = &fakeEngine{settings: s}
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.engines = append(f.engines, e)
	f.mu.Unlock()
	return e, nil
}

func (f *fakeFactory) built() []*fakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeEngine(nil), f.engines...)
}

func testSettings(model string) settings.Settings {
	return settings.Settings{
		BaseURL:      "http://localhost:11434/v1",
		Model:        model,
		WhisperModel: "base",
	}
}

func newReadyRegistry(t *testing.T, f *fakeFactory, opts ...Option) *Registry {
	t.Helper()
	r := NewRegistry(f.Build, opts...)
	require.NoError(t, r.Replace(context.Background(), testSettings("initial")))
	return r
}
