package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/voxbridge/internal/backend"
	"github.com/ekisa-team/voxbridge/internal/config"
	"github.com/ekisa-team/voxbridge/internal/service"
	"github.com/ekisa-team/voxbridge/internal/settings"
)

type fakeEngine struct {
	settings settings.Settings

	mu         sync.Mutex
	paths      []string
	prompts    []string
	transcribe error
	cleanup    error
	closed     bool
}

func (e *fakeEngine) Transcribe(_ context.Context, path string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paths = append(e.paths, path)
	if e.transcribe != nil {
		return "", e.transcribe
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return "heard: " + string(data), nil
}

func (e *fakeEngine) Cleanup(_ context.Context, text, systemPrompt string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prompts = append(e.prompts, systemPrompt)
	if e.cleanup != nil {
		return "", e.cleanup
	}
	return "cleaned: " + text, nil
}

func (e *fakeEngine) DefaultPrompt() string {
	return backend.DefaultPrompt
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// testEnv bundles a registry whose factory yields fakeEngines, a settings
// source backed by a temp file and a huma test API with every route.
type testEnv struct {
	api      humatest.TestAPI
	registry *service.Registry
	source   *settings.Source

	mu      sync.Mutex
	engines []*fakeEngine
	build   func(ctx context.Context, s settings.Settings) (*fakeEngine, error)
}

var fileSettings = settings.Settings{
	APIKey:       "sk-file",
	BaseURL:      "http://localhost:11434/v1",
	Model:        "llama3",
	WhisperModel: "small",
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	data, err := json.Marshal(fileSettings)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "electron-settings.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	env := &testEnv{source: settings.NewSource(path)}
	env.registry = service.NewRegistry(env.factory)
	t.Cleanup(func() { _ = env.registry.Close() })

	_, api := humatest.New(t)
	Register(api, config.Default().Server, env.registry, env.source)
	env.api = api

	return env
}

func (e *testEnv) factory(ctx context.Context, s settings.Settings) (backend.Engine, error) {
	var (
		engine *fakeEngine
		err    error
	)
	if e.build != nil {
		engine, err = e.build(ctx, s)
	} else {
		engine = &fakeEngine{settings: s}
	}
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.engines = append(e.engines, engine)
	e.mu.Unlock()
	return engine, nil
}

func (e *testEnv) ready(t *testing.T) *fakeEngine {
	t.Helper()
	require.NoError(t, e.registry.Replace(context.Background(), fileSettings))
	return e.latest()
}

func (e *testEnv) latest() *fakeEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.engines) == 0 {
		return nil
	}
	return e.engines[len(e.engines)-1]
}

var errBackend = errors.New("backend exploded")

func multipartBody(t *testing.T, field, filename string, content []byte) (string, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file"))
	}
	require.NoError(t, w.Close())

	return "Content-Type: " + w.FormDataContentType(), &buf
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body), resp.Body.String())
	return body
}
