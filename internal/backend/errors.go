package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by all backend implementations.
var (
	ErrItemNotFound        = errors.New("backend item not found")
	ErrAccessDenied        = errors.New("backend access denied")
	ErrUnsupportedPlatform = errors.New("no credential store available on this platform")
	ErrHeadless            = errors.New("credential store requires a desktop session")
)

// Error wraps a credential store failure with the operation and the entry it
// concerned. The wrapped error may be one of the sentinels above or a raw
// store error.
type Error struct {
	Op         string // "store", "retrieve", "erase", "enumerate", "erase-all"
	Namespace  string
	Identifier string
	Err        error
}

func (e *Error) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("backend %s error for %s/%s: %v", e.Op, e.Namespace, e.Identifier, e.Err)
	}
	return fmt.Sprintf("backend %s error for %s: %v", e.Op, e.Namespace, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err indicates a missing entry.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrItemNotFound) {
		return true
	}
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "not found") || strings.Contains(msg, "itemNotFound")
}

// IsAccessDenied reports whether err indicates the store refused access.
func IsAccessDenied(err error) bool {
	if errors.Is(err, ErrAccessDenied) {
		return true
	}
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "access denied") || strings.Contains(msg, "accessDenied")
}
