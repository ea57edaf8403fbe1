package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"

	"github.com/ekisa-team/voxbridge/internal/envvar"
	"github.com/ekisa-team/voxbridge/internal/xfs"
)

//go:embed voxbridge.v1.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("voxbridge.v1.schema.json", schemaJSON)

// Load reads the config file at path on top of the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: failed to read config: %w", err)
		default:
			if err := decode(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.Settings.Path = xfs.ExpandTilde(cfg.Settings.Path)
	cfg.Transcriber.ModelsDir = xfs.ExpandTilde(cfg.Transcriber.ModelsDir)
	cfg.Transcriber.BinPath = xfs.ExpandTilde(cfg.Transcriber.BinPath)

	return cfg, nil
}

// decode validates the YAML document against the schema, then unmarshals it
// over cfg so absent keys keep their defaults.
func decode(data []byte, cfg *Config) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config: invalid YAML: %w", err)
	}
	if raw == nil {
		return nil
	}

	// Round-trip through JSON so the validator only sees JSON types.
	doc, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("config: failed to normalize config: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(doc, &normalized); err != nil {
		return fmt.Errorf("config: failed to normalize config: %w", err)
	}

	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: failed to unmarshal into Config struct: %w", err)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(envvar.VoxbridgeServerHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid %s: %w", envvar.VoxbridgeServerHTTPPort, err)
		}
		cfg.Server.HTTPPort = port
	}

	if v := os.Getenv(envvar.VoxbridgeServerGRPCPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid %s: %w", envvar.VoxbridgeServerGRPCPort, err)
		}
		cfg.Server.GRPCPort = port
	}

	if v := os.Getenv(envvar.VoxbridgeSettingsPath); v != "" {
		cfg.Settings.Path = v
	}

	if v := os.Getenv(envvar.VoxbridgeLogLevel); v != "" {
		cfg.Log.Level = v
	}

	return nil
}
