package config

import "time"

// TranscriberProvider selects how audio is transcribed.
type TranscriberProvider string

const (
	// TranscriberAuto uses whisper.cpp when a server binary is configured and
	// the OpenAI-compatible endpoint otherwise.
	TranscriberAuto TranscriberProvider = "auto"
	// TranscriberWhisperCPP runs a local whisper.cpp server.
	TranscriberWhisperCPP TranscriberProvider = "whisper.cpp"
	// TranscriberOpenAI calls the /audio/transcriptions endpoint of the
	// configured base URL.
	TranscriberOpenAI TranscriberProvider = "openai"
)

// Config holds the service configuration. It is distinct from the user
// settings (credentials and model names), which live in the settings package.
type Config struct {
	Server      ServerConfig      `json:"server"      yaml:"server"`
	Settings    SettingsConfig    `json:"settings"    yaml:"settings"`
	Transcriber TranscriberConfig `json:"transcriber" yaml:"transcriber"`
	Startup     StartupConfig     `json:"startup"     yaml:"startup"`
	Log         LogConfig         `json:"log"         yaml:"log"`
}

// ServerConfig holds listener configuration.
type ServerConfig struct {
	Host            string        `json:"host"             yaml:"host"`
	HTTPPort        int           `json:"http_port"        yaml:"http_port"`
	GRPCPort        int           `json:"grpc_port"        yaml:"grpc_port"` // 0 disables gRPC
	AllowedOrigins  []string      `json:"allowed_origins"  yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// SettingsConfig locates the desktop settings file.
type SettingsConfig struct {
	Path  string `json:"path"  yaml:"path"`
	Watch bool   `json:"watch" yaml:"watch"`
}

// TranscriberConfig configures the speech-to-text side of the engine.
type TranscriberConfig struct {
	Provider     TranscriberProvider `json:"provider"      yaml:"provider"`
	BinPath      string              `json:"bin_path"      yaml:"bin_path"`
	ModelsDir    string              `json:"models_dir"    yaml:"models_dir"`
	AutoDownload bool                `json:"auto_download" yaml:"auto_download"`
	ReadyTimeout time.Duration       `json:"ready_timeout" yaml:"ready_timeout"`
	Parameters   map[string]any      `json:"parameters"    yaml:"parameters"`
}

// StartupConfig bounds the initial engine construction.
type StartupConfig struct {
	MaxElapsed time.Duration `json:"max_elapsed" yaml:"max_elapsed"` // 0 retries until shutdown
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `json:"level"   yaml:"level"`
	ToFile bool   `json:"to_file" yaml:"to_file"`
	File   string `json:"file"    yaml:"file"`
}
