package backend

import (
	"context"
	"strings"
)

// Provider identifies a transcription provider.
type Provider string

const (
	ProviderWhisperCPP Provider = "whisper.cpp"
	ProviderOpenAI     Provider = "openai"
)

// DefaultPrompt is the system prompt used for cleanup when the caller does not
// supply one.
const DefaultPrompt = `You clean up raw speech-to-text transcripts.
Fix punctuation, capitalization and obvious transcription mistakes.
Remove filler words (um, uh, like, you know) and false starts.
Keep the speaker's wording, meaning and language. Do not summarize, answer,
or add commentary. Return only the cleaned text.`

// Transcriber turns an audio file into text.
type Transcriber interface {
	// Name returns the provider identifier.
	Name() string

	// Transcribe reads the audio file at path and returns the transcript.
	Transcribe(ctx context.Context, path string) (string, error)

	// Close releases the resources held by the transcriber.
	Close() error
}

// Cleaner rewrites raw transcript text with an LLM.
type Cleaner interface {
	Cleanup(ctx context.Context, text, systemPrompt string) (string, error)
}

// Engine is the unit the service registry holds: one transcriber and one
// cleaner built from the same settings. It must be safe for concurrent use.
type Engine interface {
	Transcribe(ctx context.Context, path string) (string, error)
	Cleanup(ctx context.Context, text, systemPrompt string) (string, error)
	DefaultPrompt() string
	Close() error
}

type engine struct {
	transcriber Transcriber
	cleaner     Cleaner
	prompt      string
}

// NewEngine combines a transcriber and a cleaner. An empty prompt selects
// DefaultPrompt.
func NewEngine(t Transcriber, c Cleaner, prompt string) Engine {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}
	return &engine{transcriber: t, cleaner: c, prompt: prompt}
}

func (e *engine) Transcribe(ctx context.Context, path string) (string, error) {
	return e.transcriber.Transcribe(ctx, path)
}

func (e *engine) Cleanup(ctx context.Context, text, systemPrompt string) (string, error) {
	return e.cleaner.Cleanup(ctx, text, systemPrompt)
}

func (e *engine) DefaultPrompt() string {
	return e.prompt
}

func (e *engine) Close() error {
	return e.transcriber.Close()
}
