// Package tuilog provides file-based logging for the terminal reader.
// It is a separate package to avoid import cycles with the tui package.
package tuilog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ParseLevel maps a name such as "debug" or "WARN" to a Level.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// Logger writes to a file, since stdout and stderr belong to the terminal UI
// while it runs.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	file    *os.File
	enabled bool
	min     Level
	fields  []any
	now     func() time.Time
}

var (
	// Log is the global logger instance.
	Log     = &Logger{min: LevelInfo}
	logOnce sync.Once
)

// Init initializes the global logger to write to the specified file.
// If path is empty, logging is disabled.
func Init(path string, min Level) error {
	if path == "" {
		Log.enabled = false
		return nil
	}

	var initErr error
	logOnce.Do(func() {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			initErr = err
			return
		}
		Log.mu.Lock()
		Log.file = f
		Log.out = f
		Log.min = min
		Log.enabled = true
		Log.mu.Unlock()
		Log.Info("Logger initialized", "path", path, "level", min)
	})
	return initErr
}

// New returns a logger writing to w. It is mostly useful in tests.
func New(w io.Writer, min Level) *Logger {
	return &Logger{out: w, enabled: w != nil, min: min}
}

// With returns a logger that appends keyvals to every line.
func (l *Logger) With(keyvals ...any) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	fields := make([]any, 0, len(l.fields)+len(keyvals))
	fields = append(fields, l.fields...)
	fields = append(fields, keyvals...)
	return &Logger{out: l.out, enabled: l.enabled, min: l.min, fields: fields, now: l.now}
}

// SetLevel changes the minimum level written.
func (l *Logger) SetLevel(min Level) {
	l.mu.Lock()
	l.min = min
	l.mu.Unlock()
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.out = nil
	l.enabled = false
	return err
}

// Enabled returns whether logging is active.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Writer returns the underlying io.Writer for use with other logging libraries.
func (l *Logger) Writer() io.Writer {
	if !l.enabled || l.out == nil {
		return io.Discard
	}
	return l.out
}

func (l *Logger) log(level Level, msg string, keyvals ...any) {
	if !l.enabled || l.out == nil || level < l.min {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now
	if l.now != nil {
		now = l.now
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", now().Format("15:04:05.000"), level, msg)
	writePairs(&b, l.fields)
	writePairs(&b, keyvals)

	fmt.Fprintln(l.out, b.String())
	if l.file != nil {
		l.file.Sync()
	}
}

func writePairs(b *strings.Builder, keyvals []any) {
	for i := 0; i < len(keyvals)-1; i += 2 {
		fmt.Fprintf(b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	if len(keyvals)%2 == 1 {
		fmt.Fprintf(b, " %v=?", keyvals[len(keyvals)-1])
	}
}

// Debug logs a debug message with optional key-value pairs.
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.log(LevelDebug, msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func (l *Logger) Info(msg string, keyvals ...any) {
	l.log(LevelInfo, msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.log(LevelWarn, msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func (l *Logger) Error(msg string, keyvals ...any) {
	l.log(LevelError, msg, keyvals...)
}

// Timed logs the duration of an operation. Usage:
//
//	defer tuilog.Log.Timed("operation name")()
func (l *Logger) Timed(operation string) func() {
	if !l.enabled || l.min > LevelDebug {
		return func() {}
	}
	start := time.Now()
	l.Debug(operation, "status", "started")
	return func() {
		l.Debug(operation, "status", "completed", "duration", time.Since(start))
	}
}
