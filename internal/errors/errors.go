// Package errors defines the error taxonomy for envguard. Validation failures,
// missing project configuration, configuration problems, and manifest I/O each
// get a distinct type so callers can tell "the secret operation failed" apart
// from "the bookkeeping failed". Backend errors live next to the backend
// capability in internal/backend.
package errors

import (
	"fmt"
	"strings"
)

// UserError is an error meant to be shown to the user with helpful context.
type UserError struct {
	Message    string
	Details    string
	Suggestion string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ValidationError reports a key, value, or package name that failed format
// validation. It is raised before any storage is touched.
type ValidationError struct {
	Field  string // "key", "value", or "package"
	Value  string // already masked where sensitive
	Reason string
}

func (e ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotInitializedError indicates no project configuration was found.
type NotInitializedError struct {
	Path string
}

func (e NotInitializedError) Error() string {
	msg := "envguard is not initialized for this project"
	if e.Path != "" {
		msg += fmt.Sprintf(" (no configuration at %s)", e.Path)
	}
	return msg + "\n  💡 Try: run 'envguard init' first"
}

// ConfigError represents a configuration problem: the config JSON is present
// but malformed, fails schema validation, or a migration write failed.
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// CommandError represents a child process that could not be started or that
// exited non-zero.
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}
	return msg
}

// ManifestError wraps manifest file I/O failures. Kept distinct from backend
// errors so callers can tell a failed secret operation from failed bookkeeping.
type ManifestError struct {
	Op   string // "load", "save"
	Path string
	Err  error
}

func (e ManifestError) Error() string {
	return fmt.Sprintf("manifest %s error for %s: %v", e.Op, e.Path, e.Err)
}

func (e ManifestError) Unwrap() error {
	return e.Err
}

// MaskValue masks a credential value for safe inclusion in error messages.
func MaskValue(value string) string {
	if len(value) <= 8 {
		return "***"
	}
	return value[:3] + "***" + value[len(value)-3:]
}
