package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Level represents log level
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Logger provides JSON Lines logging
type Logger struct {
	writer io.Writer
	level  Level
}

// NewLogger creates a new Logger. A nil writer falls back to stderr;
// stdout is reserved for machine-readable command output.
func NewLogger(writer io.Writer, level Level) *Logger {
	if writer == nil {
		writer = os.Stderr
	}
	return &Logger{
		writer: writer,
		level:  level,
	}
}

// Discard returns a logger that drops every event.
func Discard() *Logger {
	return NewLogger(io.Discard, LevelError)
}

// Open returns a logger writing to the given file path, creating or
// appending as needed. An empty path yields a stderr logger.
func Open(path string, level Level) (*Logger, io.Closer, error) {
	if path == "" {
		return NewLogger(os.Stderr, level), nopCloser{}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewLogger(f, level), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// DecisionEvent represents an arbitration outcome for logging
type DecisionEvent struct {
	Timestamp      string `json:"ts"`
	Level          string `json:"level"`
	Event          string `json:"event"`
	Package        string `json:"package"`
	Outcome        string `json:"outcome"`
	Reason         string `json:"reason"`
	Version        string `json:"version,omitempty"`
	Origin         string `json:"origin,omitempty"`
	TrustedCount   int    `json:"trusted_count"`
	UntrustedCount int    `json:"untrusted_count"`
	CacheHit       bool   `json:"cache_hit"`
	Prompted       bool   `json:"prompted"`
	RequestID      string `json:"request_id,omitempty"`
}

// LogDecision logs an arbitration outcome
func (l *Logger) LogDecision(e DecisionEvent) {
	e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	e.Level = string(LevelInfo)
	e.Event = "decision"
	l.writeJSON(e)
}

// GenericEvent represents a generic log event
type GenericEvent struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Event     string                 `json:"event"`
	Message   string                 `json:"message,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Log logs a generic event
func (l *Logger) Log(level Level, event, message string, data map[string]interface{}) {
	e := GenericEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     string(level),
		Event:     event,
		Message:   message,
		Data:      data,
	}

	l.writeJSON(e)
}

// Debug logs a debug event
func (l *Logger) Debug(event, message string, data map[string]interface{}) {
	if l.shouldLog(LevelDebug) {
		l.Log(LevelDebug, event, message, data)
	}
}

// Info logs an info event
func (l *Logger) Info(event, message string, data map[string]interface{}) {
	if l.shouldLog(LevelInfo) {
		l.Log(LevelInfo, event, message, data)
	}
}

// Warn logs a warning event
func (l *Logger) Warn(event, message string, data map[string]interface{}) {
	if l.shouldLog(LevelWarn) {
		l.Log(LevelWarn, event, message, data)
	}
}

// Error logs an error event
func (l *Logger) Error(event, message string, data map[string]interface{}) {
	if l.shouldLog(LevelError) {
		l.Log(LevelError, event, message, data)
	}
}

// writeJSON writes a JSON line to the output
func (l *Logger) writeJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		// Fallback to stderr if marshal fails
		os.Stderr.WriteString("Failed to marshal log: " + err.Error() + "\n")
		return
	}

	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}

// shouldLog checks if a log level should be logged
func (l *Logger) shouldLog(level Level) bool {
	levels := map[Level]int{
		LevelDebug: 0,
		LevelInfo:  1,
		LevelWarn:  2,
		LevelError: 3,
	}

	return levels[level] >= levels[l.level]
}
