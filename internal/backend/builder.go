package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ekisa-team/voxbridge/internal/backend/openai"
	"github.com/ekisa-team/voxbridge/internal/config"
	"github.com/ekisa-team/voxbridge/internal/settings"
)

const defaultProbeTimeout = 10 * time.Second

// Factory constructs an engine from settings. Construction may fail, for
// example when the endpoint is unreachable or a model cannot be loaded.
type Factory func(ctx context.Context, s settings.Settings) (Engine, error)

// Builder constructs engines: it checks the LLM endpoint, builds the
// configured transcriber and pairs it with a chat cleaner.
type Builder struct {
	provider     config.TranscriberProvider
	providers    *Registry
	httpClient   *http.Client
	prompt       string
	probeTimeout time.Duration
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithHTTPClient sets the HTTP client used for every OpenAI-compatible call.
func WithHTTPClient(c *http.Client) BuilderOption {
	return func(b *Builder) {
		b.httpClient = c
	}
}

// WithPrompt overrides the default cleanup prompt.
func WithPrompt(prompt string) BuilderOption {
	return func(b *Builder) {
		b.prompt = prompt
	}
}

// WithProbeTimeout bounds the endpoint reachability check.
func WithProbeTimeout(d time.Duration) BuilderOption {
	return func(b *Builder) {
		b.probeTimeout = d
	}
}

// NewBuilder creates a Builder. The OpenAI-compatible transcriber is always
// available; other providers come from the registry.
func NewBuilder(provider config.TranscriberProvider, providers *Registry, opts ...BuilderOption) *Builder {
	if providers == nil {
		providers = NewRegistry()
	}

	b := &Builder{
		provider:     provider,
		providers:    providers,
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := providers.Register(ProviderOpenAI, b.newOpenAITranscriber); err != nil && !errors.Is(err, ErrAlreadyRegistered) {
		slog.Error("Failed to register transcription provider", "provider", ProviderOpenAI, "error", err)
	}

	return b
}

// Factory returns Build as a Factory.
func (b *Builder) Factory() Factory {
	return b.Build
}

// Build constructs an engine for s.
func (b *Builder) Build(ctx context.Context, s settings.Settings) (Engine, error) {
	if err := openai.ValidateBaseURL(s.BaseURL); err != nil {
		return nil, err
	}

	client := openai.NewClient(s, b.httpClient)

	probeCtx, cancel := context.WithTimeout(ctx, b.probeTimeout)
	err := openai.Probe(probeCtx, client, s.APIKey != "")
	cancel()
	if err != nil {
		return nil, err
	}

	provider := b.selectProvider()
	construct, ok := b.providers.Get(provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, provider)
	}

	transcriber, err := construct(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("%s transcriber: %w", provider, err)
	}

	slog.Debug("Engine constructed", "transcriber", transcriber.Name(), "whisper_model", s.WhisperModel, "llm_model", s.Model)

	return NewEngine(transcriber, openai.NewCleaner(client, s.Model), b.prompt), nil
}

// selectProvider resolves the auto provider: whisper.cpp when it is
// registered, the OpenAI-compatible endpoint otherwise.
func (b *Builder) selectProvider() Provider {
	switch b.provider {
	case config.TranscriberWhisperCPP:
		return ProviderWhisperCPP
	case config.TranscriberOpenAI:
		return ProviderOpenAI
	default:
		if _, ok := b.providers.Get(ProviderWhisperCPP); ok {
			return ProviderWhisperCPP
		}
		return ProviderOpenAI
	}
}

func (b *Builder) newOpenAITranscriber(_ context.Context, s settings.Settings) (Transcriber, error) {
	return openai.NewTranscriber(openai.NewClient(s, b.httpClient), s.WhisperModel), nil
}
