// Package config holds the versioned project configuration: the legacy v1
// shape, the current v2 shape, JSON-schema validation of v2, and the v1→v2
// migrator.
package config

import (
	"path/filepath"
	"time"

	egerrors "github.com/amannirala13/envguard/internal/errors"
	"github.com/amannirala13/envguard/internal/validation"
)

const (
	// SchemaURL is the $schema value stamped into every v2 config.
	SchemaURL = "https://envguard.dev/schemas/config/v2.json"

	// V2Version is the exact version string that marks a v2 config on disk.
	V2Version = "2.0.0"

	// Dir is the project-relative directory holding envguard state.
	Dir = ".envguard"

	// FileName is the config file name inside Dir.
	FileName = "config.json"
)

// DefaultPath returns the config file path for a project root.
func DefaultPath(root string) string {
	return filepath.Join(root, Dir, FileName)
}

// V1 is the legacy flat configuration shape.
type V1 struct {
	Package            string `json:"package"`
	TemplateFile       string `json:"templateFile"`
	ManifestVersion    string `json:"manifestVersion"`
	DefaultEnvironment string `json:"defaultEnvironment"`
}

// V2 is the current configuration shape.
type V2 struct {
	Schema       string        `json:"$schema"`
	Version      string        `json:"version"`
	Package      PackageInfo   `json:"package"`
	Environments Environments  `json:"environments"`
	Paths        Paths         `json:"paths"`
	Validation   ValidationOpt `json:"validation"`
	Security     SecurityOpt   `json:"security"`
	Manifest     ManifestOpt   `json:"manifest"`
	Metadata     *Metadata     `json:"_metadata,omitempty"`
	Warnings     []string      `json:"_warnings,omitempty"`
}

// PackageInfo identifies the package the project manages secrets for.
type PackageInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Type        string `json:"type"`
}

// Environments lists the deployment environments the project recognizes.
type Environments struct {
	Allowed []string `json:"allowed"`
	Default string   `json:"default"`
	Naming  string   `json:"naming"`
}

// Paths locates the template and manifest files relative to the project root.
type Paths struct {
	Template string `json:"template"`
	Manifest string `json:"manifest"`
}

// ValidationOpt holds validation policy flags.
type ValidationOpt struct {
	EnforceSchema    bool `json:"enforceSchema"`
	AllowEmptyValues bool `json:"allowEmptyValues"`
}

// SecurityOpt holds security posture flags.
type SecurityOpt struct {
	WarnOnProduction bool `json:"warnOnProduction"`
	CheckGitignore   bool `json:"checkGitignore"`
}

// ManifestOpt holds manifest policy.
type ManifestOpt struct {
	Version  string `json:"version"`
	AutoSync bool   `json:"autoSync"`
}

// Metadata records provenance. Timestamps use RFC 3339.
type Metadata struct {
	CreatedAt    string `json:"createdAt"`
	MigratedFrom string `json:"migratedFrom,omitempty"`
	CLIVersion   string `json:"cliVersion,omitempty"`
}

// DefaultV2 builds the v2 configuration envguard writes for a fresh project.
func DefaultV2(packageName, cliVersion string, now time.Time) *V2 {
	return &V2{
		Schema:  SchemaURL,
		Version: V2Version,
		Package: PackageInfo{
			Name: packageName,
			Type: string(validation.ClassifyPackageName(packageName)),
		},
		Environments: Environments{
			Allowed: []string{"development", "staging", "production"},
			Default: "development",
			Naming:  "kebab-case",
		},
		Paths: Paths{
			Template: ".env.template",
			Manifest: filepath.Join(Dir, "manifest.json"),
		},
		Validation: ValidationOpt{
			EnforceSchema:    true,
			AllowEmptyValues: true,
		},
		Security: SecurityOpt{
			WarnOnProduction: true,
			CheckGitignore:   true,
		},
		Manifest: ManifestOpt{
			Version:  "1.0",
			AutoSync: true,
		},
		Metadata: &Metadata{
			CreatedAt:  now.UTC().Format(time.RFC3339),
			CLIVersion: cliVersion,
		},
	}
}

// Validate checks the v2 structural invariants: non-empty package name and
// template path, and a default environment drawn from the allowed list.
func (c *V2) Validate() error {
	if c.Package.Name == "" {
		return egerrors.ConfigError{
			Field:      "package.name",
			Message:    "package name must not be empty",
			Suggestion: "Set package.name in " + filepath.Join(Dir, FileName),
		}
	}
	if c.Paths.Template == "" {
		return egerrors.ConfigError{
			Field:      "paths.template",
			Message:    "template path must not be empty",
			Suggestion: "Set paths.template, e.g. \".env.template\"",
		}
	}
	for _, env := range c.Environments.Allowed {
		if env == c.Environments.Default {
			return nil
		}
	}
	return egerrors.ConfigError{
		Field:      "environments.default",
		Value:      c.Environments.Default,
		Message:    "default environment is not in environments.allowed",
		Suggestion: "Add it to environments.allowed or pick an allowed default",
	}
}

// IsAllowedEnvironment reports whether env is in the allowed list.
func (c *V2) IsAllowedEnvironment(env string) bool {
	for _, allowed := range c.Environments.Allowed {
		if allowed == env {
			return true
		}
	}
	return false
}
