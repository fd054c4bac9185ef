// Package commands wires the envguard CLI: project initialization, secret
// operations, configuration migration, the run flow, and diagnostics.
package commands

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/amannirala13/envguard/internal/backend"
	"github.com/amannirala13/envguard/internal/config"
	egerrors "github.com/amannirala13/envguard/internal/errors"
	"github.com/amannirala13/envguard/internal/logging"
	"github.com/amannirala13/envguard/internal/manifest"
	"github.com/amannirala13/envguard/internal/store"
)

// App carries the state shared by every command: global flags resolved by the
// root command plus lazily constructed collaborators.
type App struct {
	Root        string // project root, defaults to the working directory
	BackendName string // "keyring" or "memory"
	CLIVersion  string
	Logger      *logging.Logger

	be backend.Backend
}

// ConfigPath returns the project config file path.
func (a *App) ConfigPath() string {
	return config.DefaultPath(a.Root)
}

// Backend returns the configured secret backend, constructing it on first use.
func (a *App) Backend() (backend.Backend, error) {
	if a.be != nil {
		return a.be, nil
	}
	switch a.BackendName {
	case "", "keyring":
		a.be = backend.NewKeyring()
	case "memory":
		a.Logger.Warn("using the in-memory backend; secrets will not persist")
		a.be = backend.NewMemory()
	default:
		return nil, egerrors.UserError{
			Message:    "Unknown backend " + a.BackendName,
			Suggestion: "Use --backend keyring or --backend memory",
		}
	}
	return a.be, nil
}

// SetBackend overrides the backend. Used by tests.
func (a *App) SetBackend(b backend.Backend) {
	a.be = b
}

// LoadConfig loads the project's v2 configuration. A missing or undetermined
// config yields NotInitializedError; a v1 config yields a ConfigError telling
// the user to migrate. When the config opts into schema enforcement the raw
// document is also checked against the v2 JSON schema.
func (a *App) LoadConfig() (*config.V2, error) {
	path := a.ConfigPath()
	migrator := config.NewMigrator(a.Logger)

	loaded := migrator.LoadConfig(path)
	if loaded == nil {
		return nil, egerrors.NotInitializedError{Path: path}
	}
	if loaded.Version == config.VersionV1 {
		return nil, egerrors.ConfigError{
			Field:      "version",
			Value:      "v1",
			Message:    "configuration uses the legacy v1 format",
			Suggestion: "Run 'envguard migrate' to upgrade it",
		}
	}

	cfg := loaded.V2
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Validation.EnforceSchema {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, egerrors.ConfigError{Message: "cannot re-read configuration", Err: err}
		}
		if err := config.ValidateV2Document(data); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Manifest returns the manifest manager for the loaded configuration.
func (a *App) Manifest(cfg *config.V2) *manifest.Manager {
	path := cfg.Paths.Manifest
	if path == "" {
		path = filepath.Join(config.Dir, "manifest.json")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.Root, path)
	}
	return manifest.NewManager(path, a.Logger)
}

// Store builds the secret store bound to the configured package and default
// environment.
func (a *App) Store(cfg *config.V2) (*store.Store, error) {
	be, err := a.Backend()
	if err != nil {
		return nil, err
	}
	return store.New(cfg.Package.Name, cfg.Environments.Default, be, a.Manifest(cfg), a.Logger)
}

// ResolveEnvironment validates an --env flag value against the allowed list.
// An empty value falls back to the configured default.
func (a *App) ResolveEnvironment(cfg *config.V2, env string) (string, error) {
	if env == "" {
		return cfg.Environments.Default, nil
	}
	if !cfg.IsAllowedEnvironment(env) {
		return "", egerrors.ConfigError{
			Field:      "environment",
			Value:      env,
			Message:    "environment is not in environments.allowed",
			Suggestion: "Allowed: " + joinList(cfg.Environments.Allowed),
		}
	}
	return env, nil
}

// WriteConfig serializes cfg to the project config path.
func (a *App) WriteConfig(cfg *config.V2) error {
	path := a.ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return egerrors.ConfigError{Message: "cannot create " + config.Dir, Err: err}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return egerrors.ConfigError{Message: "cannot serialize configuration", Err: err}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return egerrors.ConfigError{Message: "cannot write " + path, Err: err}
	}
	return nil
}

func joinList(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += item
	}
	return out
}
