package log

import (
	"fmt"
	"strings"
)

// Logger is the structured logger used across the toolkit.
// Every method takes a message followed by alternating keys and values.
type Logger interface {
	// Debug logs verbose diagnostics such as request ids and frame sizes.
	Debug(msg string, keysAndValues ...any)
	// Info logs routine progress, for example a subscription becoming active.
	Info(msg string, keysAndValues ...any)
	// Warn logs a recoverable anomaly, for example a dropped frame.
	Warn(msg string, keysAndValues ...any)
	// Error logs a failure the caller has to deal with.
	Error(msg string, keysAndValues ...any)
	// Fatal logs an unrecoverable failure. Backends may exit the process.
	Fatal(msg string, keysAndValues ...any)
	// WithKV returns a child logger that attaches key and value to every entry.
	WithKV(key string, value any) Logger
	// GetAllKV returns the key-value pairs attached through WithKV.
	GetAllKV() []any
	// WithName returns a child logger whose name is extended with name.
	WithName(name string) Logger
	// Name returns the dotted logger name.
	Name() string
	// AddCallerSkip returns a logger that reports the caller skip frames higher.
	AddCallerSkip(skip int) Logger
}

// Level is the severity of a log entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// ParseLevel converts a case-insensitive level name into a Level.
func ParseLevel(s string) (Level, error) {
	switch lvl := Level(strings.ToLower(strings.TrimSpace(s))); lvl {
	case LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal:
		return lvl, nil
	case "warning":
		return LevelWarn, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

// SpanEventRecorder records log entries as events on a trace span.
type SpanEventRecorder interface {
	TraceID() string
	SpanID() string

	// RecordEvent adds an event with the given alternating keys and values.
	RecordEvent(name string, keysAndValues ...any)
	// RecordError adds an event and marks the span as failed.
	RecordError(name string, keysAndValues ...any)
}
