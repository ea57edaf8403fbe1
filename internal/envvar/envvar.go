package envvar

const (
	// VoxbridgeEnv is the environment variable used to determine the environment
	VoxbridgeEnv = "VOXBRIDGE_ENV"

	// VoxbridgeLogLevel is the environment variable used to override the log level
	VoxbridgeLogLevel = "VOXBRIDGE_LOG_LEVEL"

	// VoxbridgeServerHTTPPort is the environment variable used to determine the HTTP port
	VoxbridgeServerHTTPPort = "VOXBRIDGE_SERVER_HTTP_PORT"

	// VoxbridgeServerGRPCPort is the environment variable used to determine the gRPC port
	VoxbridgeServerGRPCPort = "VOXBRIDGE_SERVER_GRPC_PORT"

	// VoxbridgeSettingsPath is the environment variable used to locate the desktop settings file
	VoxbridgeSettingsPath = "VOXBRIDGE_SETTINGS_PATH"

	// VoxbridgeModelsPath is the environment variable used to locate downloaded whisper models
	VoxbridgeModelsPath = "VOXBRIDGE_MODELS_PATH"

	// LLMAPIKey is the fallback API key for the LLM endpoint
	LLMAPIKey = "LLM_API_KEY"

	// LLMBaseURL is the fallback base URL of the OpenAI-compatible endpoint
	LLMBaseURL = "LLM_BASE_URL"

	// LLMModel is the fallback LLM model name
	LLMModel = "LLM_MODEL"

	// WhisperModel is the fallback transcription model name
	WhisperModel = "WHISPER_MODEL"
)
