// Package settings resolves the user-facing runtime settings: LLM credentials,
// endpoint and model names. The desktop front-end owns the settings file; this
// package only reads it.
package settings

import (
	"os"

	"github.com/ekisa-team/voxbridge/internal/envvar"
)

const (
	DefaultBaseURL      = "https://api.openai.com/v1"
	DefaultModel        = "gpt-4o"
	DefaultWhisperModel = "base"
)

// Settings is the single active configuration of the transcription and
// cleanup engine. It is a value: updates replace it wholesale.
type Settings struct {
	APIKey       string `json:"apiKey"`
	BaseURL      string `json:"baseUrl"`
	Model        string `json:"model"`
	WhisperModel string `json:"whisperModel"`
}

// Origin tells where a resolved Settings value came from.
type Origin string

const (
	OriginFile        Origin = "file"
	OriginEnvironment Origin = "environment"
)

// FromEnv builds Settings from the process environment, applying defaults for
// unset variables.
func FromEnv() Settings {
	return Settings{
		APIKey:       os.Getenv(envvar.LLMAPIKey),
		BaseURL:      getEnv(envvar.LLMBaseURL, DefaultBaseURL),
		Model:        getEnv(envvar.LLMModel, DefaultModel),
		WhisperModel: getEnv(envvar.WhisperModel, DefaultWhisperModel),
	}
}

// withDefaults fills empty endpoint and model fields. An empty API key is
// valid (local endpoints need none).
func (s Settings) withDefaults() Settings {
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.WhisperModel == "" {
		s.WhisperModel = DefaultWhisperModel
	}
	return s
}

// Redacted returns a copy safe for logging.
func (s Settings) Redacted() Settings {
	if s.APIKey != "" {
		s.APIKey = "***"
	}
	return s
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
