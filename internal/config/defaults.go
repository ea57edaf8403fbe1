package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			HTTPPort: DefaultHTTPPort(),
			GRPCPort: DefaultGRPCPort(),
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
			},
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  100 << 20,
		},
		Settings: SettingsConfig{
			Path:  DefaultSettingsPath(),
			Watch: true,
		},
		Transcriber: TranscriberConfig{
			Provider:     TranscriberAuto,
			ModelsDir:    DefaultModelsPath(),
			AutoDownload: true,
			ReadyTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
			File:  "logs/voxbridge.log",
		},
	}
}

// DefaultHTTPPort returns the default HTTP port.
func DefaultHTTPPort() int {
	return 8000
}

// DefaultGRPCPort returns the default gRPC port. Zero keeps gRPC disabled.
func DefaultGRPCPort() int {
	return 0
}

// DefaultSettingsPath returns the default location of the desktop settings file.
func DefaultSettingsPath() string {
	return filepath.Join(DefaultConfigPath(), "electron-settings.json")
}

// DefaultConfigPath returns the default path for the voxbridge config directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "voxbridge", "config")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "voxbridge")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "voxbridge")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "voxbridge")
		}
		return filepath.Join(home, ".config", "voxbridge")
	}
}

// DefaultModelsPath returns the default path for downloaded whisper models.
func DefaultModelsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "voxbridge", "models")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "voxbridge", "models")
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "voxbridge", "models")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "voxbridge", "models")
		}
		return filepath.Join(home, ".cache", "voxbridge", "models")
	}
}
