package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger writes leveled, human-oriented output to stderr. Secret values must
// never be passed to it directly; wrap them in Secret or run messages through
// Redact first.
type Logger struct {
	out     io.Writer
	debug   bool
	noColor bool
}

// New creates a logger. With debug false, Debug calls are dropped.
func New(debug, noColor bool) *Logger {
	return &Logger{
		out:     os.Stderr,
		debug:   debug,
		noColor: noColor,
	}
}

// NewWithWriter creates a logger writing to an explicit writer. Used by tests.
func NewWithWriter(w io.Writer, debug, noColor bool) *Logger {
	return &Logger{
		out:     w,
		debug:   debug,
		noColor: noColor,
	}
}

func (l *Logger) emit(color, glyph, msg string) {
	if l.noColor || color == "" {
		fmt.Fprintf(l.out, "%s %s\n", glyph, msg)
		return
	}
	fmt.Fprintf(l.out, "%s%s\033[0m %s\n", color, glyph, msg)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit("\033[32m", "✓", fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit("\033[33m", "⚠", fmt.Sprintf(format, args...))
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit("\033[31m", "✗", fmt.Sprintf(format, args...))
}

// Debug logs a debug message when debug mode is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.emit("\033[36m", "[DEBUG]", fmt.Sprintf(format, args...))
}

// Secret is a string whose formatted representation is always redacted.
// Use it when a secret value has to travel through a format call.
type Secret string

func (s Secret) String() string {
	return "[REDACTED]"
}

func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact replaces every occurrence of the given secret values in s with a
// redaction marker. Values of three characters or fewer are skipped so that
// short common substrings don't shred the whole message.
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if len(secret) > 3 {
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
