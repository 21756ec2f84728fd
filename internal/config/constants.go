package config

// Application constants
const (
	// Application metadata
	AppName        = "shellgen"
	AppDescription = "Turn a plain-language description into a shell command"

	// Directory and file paths
	DefaultConfigDir   = ".config/shellgen"
	DefaultLogDir      = "logs"
	DefaultLogFileName = "shellgen.log"
	DefaultEnvFileName = ".env"

	// Log rotation
	MaxLogFileSize    = 10 // Maximum log file size in MB
	DefaultMaxBackups = 5  // Default number of log backup files

	// Required keys
	EnvAPIKey  = "API_KEY"
	EnvBaseURL = "BASE_URL"
	EnvModel   = "MODEL"

	// Optional keys
	EnvPlatformPolicy = "SHELLGEN_PLATFORM_POLICY"
	EnvPlatformLabel  = "SHELLGEN_PLATFORM_LABEL"
	EnvShell          = "SHELLGEN_SHELL"
	EnvHeaders        = "SHELLGEN_HEADERS"
	EnvPromptsFile    = "SHELLGEN_PROMPTS_FILE"
	EnvLogLevel       = "SHELLGEN_LOG_LEVEL"
	EnvLogFormat      = "SHELLGEN_LOG_FORMAT"
	EnvLogOutput      = "SHELLGEN_LOG_OUTPUT"
	EnvLogFile        = "SHELLGEN_LOG_FILE"

	// Fixed policy values
	FixedModel         = "deepseek-chat"
	FixedPlatformLabel = "Darwin/MacOS 12.6"
	FixedShell         = "zsh"

	// Provider names
	ProviderOpenAI = "openai"

	// Log levels
	LogLevelTrace = "trace"
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	// Log formats
	LogFormatJSON = "json"
	LogFormatText = "text"

	// Log outputs
	LogOutputFile    = "file"
	LogOutputConsole = "console"
	LogOutputBoth    = "both"
)

// GetValidLogLevels returns all valid log levels
func GetValidLogLevels() []string {
	return []string{
		LogLevelTrace,
		LogLevelDebug,
		LogLevelInfo,
		LogLevelWarn,
		LogLevelError,
	}
}

// GetValidLogFormats returns all valid log formats
func GetValidLogFormats() []string {
	return []string{
		LogFormatJSON,
		LogFormatText,
	}
}

// GetValidLogOutputs returns all valid log outputs
func GetValidLogOutputs() []string {
	return []string{
		LogOutputFile,
		LogOutputConsole,
		LogOutputBoth,
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
