package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps logrus.Logger with additional functionality
type Logger struct {
	*logrus.Logger
	component string
}

var (
	mu sync.RWMutex
	// globalLogger global logger instance
	globalLogger *Logger
	// rotator is the rotating file writer when file output is enabled
	rotator *lumberjack.Logger
	// runID tags every entry written during one invocation
	runID string
)

// LogLevel log level type
type LogLevel string

const (
	TraceLevel LogLevel = "trace"
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Config log configuration
type Config struct {
	Level      LogLevel `json:"level"`       // Log level
	Format     string   `json:"format"`      // Format: "json" or "text"
	Output     string   `json:"output"`      // Output: "file", "console", "both"
	LogFile    string   `json:"log_file"`    // Log file path
	MaxSize    int      `json:"max_size"`    // Maximum file size (MB)
	MaxBackups int      `json:"max_backups"` // Maximum backup file count
	// Secrets are masked in every entry, in addition to credential patterns.
	Secrets []string `json:"-"`
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Level:      InfoLevel,
		Format:     "text",
		Output:     "file",
		LogFile:    filepath.Join(home, ".config", "shellgen", "logs", "shellgen.log"),
		MaxSize:    10, // 10MB
		MaxBackups: 5,
	}
}

// Init initializes logging system. Console output always goes to stderr so
// it never mixes with the generated command on stdout.
func Init(config Config) error {
	logger := logrus.New()

	// Set log level
	level, err := logrus.ParseLevel(string(config.Level))
	if err != nil {
		return fmt.Errorf("invalid log level: %s", config.Level)
	}
	logger.SetLevel(level)

	// Set format
	switch config.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text":
		logger.SetFormatter(&CustomTextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		})
	default:
		return fmt.Errorf("invalid log format: %s", config.Format)
	}

	logger.AddHook(newRedactHook(config.Secrets))

	var fileOut *lumberjack.Logger
	switch config.Output {
	case "console":
		logger.SetOutput(os.Stderr)
	case "file":
		if fileOut, err = newRotator(config); err != nil {
			return fmt.Errorf("failed to setup file output: %w", err)
		}
		logger.SetOutput(fileOut)
	case "both":
		if fileOut, err = newRotator(config); err != nil {
			return fmt.Errorf("failed to setup file output: %w", err)
		}
		logger.SetOutput(io.MultiWriter(os.Stderr, fileOut))
	default:
		return fmt.Errorf("invalid log output: %s", config.Output)
	}

	mu.Lock()
	defer mu.Unlock()
	if rotator != nil {
		_ = rotator.Close()
	}
	rotator = fileOut
	globalLogger = &Logger{
		Logger:    logger,
		component: "shellgen",
	}
	return nil
}

// newRotator builds the rotating file writer for config.LogFile.
func newRotator(config Config) (*lumberjack.Logger, error) {
	if config.LogFile == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(config.LogFile), 0755); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   config.LogFile,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
	}, nil
}

// NewRunID generates and installs a fresh run identifier.
func NewRunID() string {
	id := uuid.NewString()
	mu.Lock()
	runID = id
	mu.Unlock()
	return id
}

// GetLogger gets global logger instance. Until Init is called every entry is
// discarded, which keeps library code and tests quiet.
func GetLogger() *Logger {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if globalLogger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		globalLogger = &Logger{
			Logger:    logger,
			component: "shellgen",
		}
	}
	return globalLogger
}

// WithComponent creates logger instance with component identifier
func WithComponent(component string) *Logger {
	base := GetLogger()
	return &Logger{
		Logger:    base.Logger,
		component: component,
	}
}

func (l *Logger) baseFields() logrus.Fields {
	fields := logrus.Fields{"component": l.component}
	mu.RLock()
	if runID != "" {
		fields["run_id"] = runID
	}
	mu.RUnlock()
	return fields
}

// WithField adds field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	fields := l.baseFields()
	fields[key] = value
	return l.Logger.WithFields(fields)
}

// WithFields adds multiple fields
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	merged := l.baseFields()
	for k, v := range fields {
		merged[k] = v
	}
	return l.Logger.WithFields(merged)
}

// WithError adds error field
func (l *Logger) WithError(err error) *logrus.Entry {
	fields := l.baseFields()
	fields[logrus.ErrorKey] = err
	return l.Logger.WithFields(fields)
}

// Close closes logging system
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if rotator != nil {
		err := rotator.Close()
		rotator = nil
		return err
	}
	return nil
}

// CustomTextFormatter custom text formatter
type CustomTextFormatter struct {
	TimestampFormat string
	FullTimestamp   bool
}

// Format implements logrus.Formatter interface
func (f *CustomTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	// Timestamp
	if f.FullTimestamp {
		b.WriteString(entry.Time.Format(f.TimestampFormat))
		b.WriteString(" ")
	}

	// Log level
	b.WriteString("[")
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteString("] ")

	// Component information
	if component, ok := entry.Data["component"].(string); ok {
		b.WriteString("[")
		b.WriteString(component)
		b.WriteString("] ")
	}

	// Call location (only shown at debug level)
	if entry.Level >= logrus.DebugLevel && entry.HasCaller() {
		b.WriteString(fmt.Sprintf("[%s:%d] ", filepath.Base(entry.Caller.File), entry.Caller.Line))
	}

	// Message
	b.WriteString(entry.Message)

	// Additional fields, sorted for stable output
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if key != "component" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", key, entry.Data[key]))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}
