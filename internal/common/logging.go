package common

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/phuslu/log"
)

// Logger wraps log.Logger to provide a consistent interface
type Logger struct {
	log.Logger
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// NewLogger creates a new console logger on stderr with the specified level
func NewLogger(level string) *Logger {
	return &Logger{Logger: log.Logger{
		Level:      parseLevel(level),
		TimeFormat: time.RFC3339,
		Writer: &log.ConsoleWriter{
			Writer:      os.Stderr,
			ColorOutput: isTerminal(os.Stderr),
		},
	}}
}

// NewLoggerWithOutput creates a JSON logger writing to a specific output
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	return &Logger{Logger: log.Logger{
		Level:      parseLevel(level),
		TimeFormat: time.RFC3339,
		Writer:     &log.IOWriter{Writer: w},
	}}
}

// NewLoggerFromConfig builds a logger from the [logging] section. A file path
// selects a rotating file writer; otherwise output goes to stderr.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	if cfg.FilePath != "" {
		maxSize := int64(cfg.MaxSizeMB) * 1024 * 1024
		if maxSize <= 0 {
			maxSize = 100 * 1024 * 1024
		}
		return &Logger{Logger: log.Logger{
			Level:      parseLevel(cfg.Level),
			TimeFormat: time.RFC3339,
			Writer: &log.FileWriter{
				Filename:     cfg.FilePath,
				MaxSize:      maxSize,
				MaxBackups:   cfg.MaxBackups,
				EnsureFolder: true,
			},
		}}
	}
	if strings.EqualFold(cfg.Format, "json") {
		return NewLoggerWithOutput(cfg.Level, os.Stderr)
	}
	return NewLogger(cfg.Level)
}

// NewDefaultLogger creates a logger with default settings
func NewDefaultLogger() *Logger {
	return NewLogger("info")
}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() *Logger {
	return &Logger{Logger: log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
