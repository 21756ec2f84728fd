package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/TonnyWong1052/shellgen/internal/errors"
)

// Policy selects how the platform label and model are obtained.
type Policy string

const (
	// PolicyDetect derives the label from the running system and requires MODEL.
	PolicyDetect Policy = "detect"
	// PolicyFixed uses a fixed macOS/zsh label and the FixedModel literal.
	PolicyFixed Policy = "fixed"
)

// LoggingConfig defines logging configuration options.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // Log level: trace, debug, info, warn, error
	Format     string `mapstructure:"format"`      // Format: json, text
	Output     string `mapstructure:"output"`      // Output: file, console, both
	LogFile    string `mapstructure:"log_file"`    // Log file path
	MaxSize    int    `mapstructure:"max_size"`    // Max file size (MB)
	MaxBackups int    `mapstructure:"max_backups"` // Max number of backup files
}

// Config is the resolved configuration for one invocation.
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	Policy        Policy
	PlatformLabel string // optional override
	Shell         string // optional override
	Headers       map[string]string
	PromptsFile   string
	Logging       LoggingConfig

	// EnvFile is the .env file that was read, empty when none was found.
	EnvFile string
}

// LoadOptions tune where Load looks for settings.
type LoadOptions struct {
	// EnvFile is an explicit .env path; it must exist when set.
	EnvFile string
	// Policy overrides SHELLGEN_PLATFORM_POLICY when non-empty.
	Policy string
	// SearchPaths replaces the default .env candidates when non-nil.
	SearchPaths []string
}

// DefaultEnvFileCandidates lists the .env locations tried in order: the
// working directory, next to the executable, then the user config dir.
func DefaultEnvFileCandidates() []string {
	candidates := []string{DefaultEnvFileName}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), DefaultEnvFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigDir, DefaultEnvFileName))
	}
	return candidates
}

func defaultLogFilePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, DefaultConfigDir, DefaultLogDir, DefaultLogFileName)
	}
	return filepath.Join(os.TempDir(), AppName, DefaultLogFileName)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault(EnvPlatformPolicy, string(PolicyDetect))
	v.SetDefault(EnvLogLevel, LogLevelInfo)
	v.SetDefault(EnvLogFormat, LogFormatText)
	v.SetDefault(EnvLogOutput, LogOutputFile)
	v.SetDefault(EnvLogFile, defaultLogFilePath())
	return v
}

// Load reads the optional .env file, overlays the process environment and
// validates the result. Environment variables win over file values.
// Nothing here touches the network.
func Load(opts LoadOptions) (*Config, error) {
	v := newViper()

	envFile, err := locateEnvFile(opts)
	if err != nil {
		return nil, err
	}
	if envFile != "" {
		v.SetConfigFile(envFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.ErrEnvFileUnreadable(envFile, err)
		}
	}

	policy := strings.ToLower(strings.TrimSpace(v.GetString(EnvPlatformPolicy)))
	if opts.Policy != "" {
		policy = strings.ToLower(strings.TrimSpace(opts.Policy))
	}

	cfg := &Config{
		APIKey:        strings.TrimSpace(v.GetString(EnvAPIKey)),
		BaseURL:       strings.TrimSpace(v.GetString(EnvBaseURL)),
		Model:         strings.TrimSpace(v.GetString(EnvModel)),
		Policy:        Policy(policy),
		PlatformLabel: strings.TrimSpace(v.GetString(EnvPlatformLabel)),
		Shell:         strings.TrimSpace(v.GetString(EnvShell)),
		PromptsFile:   strings.TrimSpace(v.GetString(EnvPromptsFile)),
		Logging: LoggingConfig{
			Level:      strings.ToLower(v.GetString(EnvLogLevel)),
			Format:     strings.ToLower(v.GetString(EnvLogFormat)),
			Output:     strings.ToLower(v.GetString(EnvLogOutput)),
			LogFile:    v.GetString(EnvLogFile),
			MaxSize:    MaxLogFileSize,
			MaxBackups: DefaultMaxBackups,
		},
		EnvFile: envFile,
	}

	if cfg.Policy == PolicyFixed && cfg.Model == "" {
		cfg.Model = FixedModel
	}

	if raw := strings.TrimSpace(v.GetString(EnvHeaders)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.Headers); err != nil {
			return nil, apperrors.ErrInvalidConfig(EnvHeaders, "must be a JSON object of string values")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// locateEnvFile returns the first existing candidate. A missing explicit
// file is an error; missing default candidates are not.
func locateEnvFile(opts LoadOptions) (string, error) {
	if opts.EnvFile != "" {
		info, err := os.Stat(opts.EnvFile)
		if err != nil {
			return "", apperrors.ErrEnvFileUnreadable(opts.EnvFile, err)
		}
		if info.IsDir() {
			return "", apperrors.ErrEnvFileUnreadable(opts.EnvFile, errors.New("is a directory"))
		}
		return opts.EnvFile, nil
	}

	candidates := opts.SearchPaths
	if candidates == nil {
		candidates = DefaultEnvFileCandidates()
	}
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", apperrors.ErrEnvFileUnreadable(path, err)
		}
		if !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}
