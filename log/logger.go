// Package log wraps github.com/charmbracelet/log with the package-level
// default-logger convenience this module's rest uses, grounded on
// yaklabco-gomdlint/internal/logging.
package log

import (
	"os"
	"strings"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// Logger is charmbracelet/log's Logger, re-exported so callers never need
// to import charmbracelet/log directly just to hold a reference.
type Logger = charmlog.Logger

var (
	defaultLogger     *Logger
	defaultLoggerOnce sync.Once
)

func getDefaultLogger() *Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = New("info")
	})
	return defaultLogger
}

// New creates a logger writing to stderr at the given level.
// Valid levels: "debug", "info", "warn", "error".
func New(level string) *Logger {
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	setLevel(logger, level)
	return logger
}

func setLevel(logger *Logger, level string) {
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(charmlog.DebugLevel)
	case "info":
		logger.SetLevel(charmlog.InfoLevel)
	case "warn", "warning":
		logger.SetLevel(charmlog.WarnLevel)
	case "error":
		logger.SetLevel(charmlog.ErrorLevel)
	default:
		logger.SetLevel(charmlog.InfoLevel)
	}
}

// Default returns the package-level default logger (info level, lazily
// constructed on first use).
func Default() *Logger {
	return getDefaultLogger()
}

// SetDefault replaces the package-level default logger.
func SetDefault(logger *Logger) {
	defaultLoggerOnce.Do(func() {})
	defaultLogger = logger
}

// SetLevel updates the default logger's level.
func SetLevel(level string) {
	setLevel(getDefaultLogger(), level)
}
