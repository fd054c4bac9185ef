// Package validation holds the format rules for secret keys, secret values,
// and package names. All checks are pure: they report the outcome as a boolean
// and log the reason at debug level, leaving it to callers to turn a failure
// into a typed error.
package validation

import (
	"regexp"
	"strings"

	"github.com/amannirala13/envguard/internal/logging"
)

// MaxKeyLength is the byte limit for secret keys and package names.
const MaxKeyLength = 255

var (
	keyPattern           = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	packageNamePattern   = regexp.MustCompile(`^[a-zA-Z0-9._@/-]+$`)
	reverseDomainPattern = regexp.MustCompile(`(?i)^[a-z]+\.[a-z0-9-]+(\.[a-z0-9-]+)*$`)
)

// PackageType classifies how a package is named.
type PackageType string

const (
	// PackageTypeReverseDomain covers names like "com.company.app".
	PackageTypeReverseDomain PackageType = "reverse-domain"
	// PackageTypeNPM covers npm-style names: "@scope/name" or anything with a slash.
	PackageTypeNPM PackageType = "npm"
	// PackageTypeManual covers every other valid name.
	PackageTypeManual PackageType = "manual"
)

// Validator checks candidate keys, values, and package names.
type Validator struct {
	logger *logging.Logger
}

// New creates a validator.
func New(logger *logging.Logger) *Validator {
	return &Validator{logger: logger}
}

// IsValidKey reports whether key is a usable secret key: non-empty, at most
// MaxKeyLength bytes, and matching [a-zA-Z0-9_-]+.
func (v *Validator) IsValidKey(key string) bool {
	if key == "" {
		v.logger.Debug("key rejected: empty")
		return false
	}
	if len(key) > MaxKeyLength {
		v.logger.Debug("key rejected: %d bytes exceeds limit of %d", len(key), MaxKeyLength)
		return false
	}
	if !keyPattern.MatchString(key) {
		v.logger.Debug("key rejected: contains characters outside [a-zA-Z0-9_-]")
		return false
	}
	return true
}

// IsValidValue reports whether value may be stored. The empty string is
// explicitly allowed; a non-empty value must contain at least one
// non-whitespace rune and no ASCII control characters.
func (v *Validator) IsValidValue(value string) bool {
	for _, r := range value {
		if r <= 0x1F {
			v.logger.Debug("value rejected: contains ASCII control character")
			return false
		}
	}
	if value != "" && strings.TrimSpace(value) == "" {
		v.logger.Debug("value rejected: whitespace only")
		return false
	}
	return true
}

// IsValidPackageName reports whether name is a usable package identifier:
// non-empty, at most MaxKeyLength bytes, matching [a-zA-Z0-9._@/-]+.
func (v *Validator) IsValidPackageName(name string) bool {
	if name == "" {
		v.logger.Debug("package name rejected: empty")
		return false
	}
	if len(name) > MaxKeyLength {
		v.logger.Debug("package name rejected: %d bytes exceeds limit of %d", len(name), MaxKeyLength)
		return false
	}
	if !packageNamePattern.MatchString(name) {
		v.logger.Debug("package name rejected: contains characters outside [a-zA-Z0-9._@/-]")
		return false
	}
	return true
}

// ClassifyPackageName buckets a valid package name into a PackageType.
// Reverse-domain wins over npm when both would match; names containing "@"
// or "/" are npm-style; everything else is manual.
func ClassifyPackageName(name string) PackageType {
	if reverseDomainPattern.MatchString(name) {
		return PackageTypeReverseDomain
	}
	if strings.HasPrefix(name, "@") || strings.Contains(name, "/") {
		return PackageTypeNPM
	}
	return PackageTypeManual
}
