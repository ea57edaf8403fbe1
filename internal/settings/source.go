package settings

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed settings.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("settings.schema.json", schemaJSON)

// ErrNoSettingsFile is returned by Load when the settings file does not exist.
var ErrNoSettingsFile = errors.New("settings file does not exist")

// Source resolves Settings from the desktop settings file, falling back to the
// environment.
type Source struct {
	path string
}

// NewSource creates a Source reading the file at path. An empty path disables
// the file and always resolves from the environment.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the settings file path.
func (s *Source) Path() string {
	return s.path
}

// Resolve returns the effective settings. It never fails: any problem with the
// file is logged and the environment values are used instead.
func (s *Source) Resolve() Settings {
	resolved, _ := s.ResolveWithOrigin()
	return resolved
}

// ResolveWithOrigin is Resolve that also reports where the value came from.
func (s *Source) ResolveWithOrigin() (Settings, Origin) {
	loaded, err := s.Load()
	if err == nil {
		return loaded, OriginFile
	}

	if !errors.Is(err, ErrNoSettingsFile) {
		slog.Warn("Could not load settings file, using environment", "path", s.path, "error", err)
	}

	return FromEnv(), OriginEnvironment
}

// Load reads and validates the settings file without any fallback.
func (s *Source) Load() (Settings, error) {
	if s.path == "" {
		return Settings{}, ErrNoSettingsFile
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, ErrNoSettingsFile
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	return Parse(data)
}

// Parse validates a settings document and decodes it. Fields missing from the
// document take their defaults.
func Parse(data []byte) (Settings, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if err := schema.Validate(raw); err != nil {
		return Settings{}, fmt.Errorf("settings validation failed: %w", err)
	}

	var parsed Settings
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	parsed.APIKey = strings.TrimSpace(parsed.APIKey)
	parsed.BaseURL = strings.TrimSpace(parsed.BaseURL)
	parsed.Model = strings.TrimSpace(parsed.Model)
	parsed.WhisperModel = strings.TrimSpace(parsed.WhisperModel)

	return parsed.withDefaults(), nil
}
