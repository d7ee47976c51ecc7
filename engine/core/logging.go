package core

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

// ParseLogLevel accepts the level names used in the toml config.
func ParseLogLevel(s string) (LogLevel, error) {
	switch l := LogLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel, FatalLevel:
		return l, nil
	case "":
		return InfoLevel, nil
	default:
		return "", fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, s)
	}
}

func (l LogLevel) charmLevel() log.Level {
	switch l {
	case DebugLevel:
		return log.DebugLevel
	case WarnLevel:
		return log.WarnLevel
	case ErrorLevel:
		return log.ErrorLevel
	case FatalLevel:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// NewLogger creates the engine logger writing to w. Components get their own
// copy through With instead of reaching for the package logger.
func NewLogger(w io.Writer, level LogLevel) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "Engine 🏎️ ",
	})
	l.SetLevel(level.charmLevel())
	return l
}

// DiscardLogger is handy for tests and tools that do not want output.
func DiscardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

var (
	once      sync.Once
	singleton *log.Logger
)

// Logger returns the application level logger.
func Logger() *log.Logger {
	once.Do(func() {
		singleton = NewLogger(os.Stderr, DebugLevel)
	})
	return singleton
}

func SetLogLevel(level LogLevel) {
	Logger().SetLevel(level.charmLevel())
}

func LogDebug(msg string, args ...interface{}) {
	Logger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	Logger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	Logger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	Logger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	Logger().Fatalf(msg, args...)
}
