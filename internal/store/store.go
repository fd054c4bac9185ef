// Package store implements the secret-store coordination layer. A Store is
// bound to one package and a default environment; it validates inputs, maps
// the logical (package, environment, key) triple onto a backend identifier,
// delegates storage to the backend capability, and keeps the manifest in step
// on every mutation.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/amannirala13/envguard/internal/backend"
	egerrors "github.com/amannirala13/envguard/internal/errors"
	"github.com/amannirala13/envguard/internal/logging"
	"github.com/amannirala13/envguard/internal/manifest"
	"github.com/amannirala13/envguard/internal/validation"
)

// Store coordinates the secret backend and the manifest for one package.
//
// The pair of writes done by Set and Delete (backend entry, manifest entry) is
// not jointly atomic: a crash between the two leaves the manifest stale. Each
// individual write is atomic, which is all the underlying stores guarantee.
type Store struct {
	pkg        string
	defaultEnv string
	backend    backend.Backend
	manifest   *manifest.Manager
	validator  *validation.Validator
	logger     *logging.Logger
}

// New creates a store bound to pkg and defaultEnv. The package name is
// validated here so that every later operation can trust it.
func New(pkg, defaultEnv string, b backend.Backend, m *manifest.Manager, logger *logging.Logger) (*Store, error) {
	v := validation.New(logger)
	if !v.IsValidPackageName(pkg) {
		return nil, egerrors.ValidationError{
			Field:  "package",
			Value:  pkg,
			Reason: "must be non-empty, at most 255 bytes, and match [a-zA-Z0-9._@/-]+",
		}
	}
	if defaultEnv == "" {
		return nil, egerrors.ValidationError{
			Field:  "environment",
			Reason: "default environment must not be empty",
		}
	}
	return &Store{
		pkg:        pkg,
		defaultEnv: defaultEnv,
		backend:    b,
		manifest:   m,
		validator:  v,
		logger:     logger,
	}, nil
}

// Package returns the bound package name.
func (s *Store) Package() string {
	return s.pkg
}

// DefaultEnvironment returns the environment used when none is given.
func (s *Store) DefaultEnvironment() string {
	return s.defaultEnv
}

// Identifier builds the physical backend identifier for (environment, key).
// Secrets for the same key in different environments never collide because
// the environment is part of the identifier; packages never collide because
// each package is its own backend namespace.
func Identifier(environment, key string) string {
	return fmt.Sprintf("%s:%s", environment, key)
}

func (s *Store) resolveEnv(env string) string {
	if env == "" {
		return s.defaultEnv
	}
	return env
}

// Get returns the secret value for key in env (the bound default when env is
// empty). A missing secret is reported as ok=false with a nil error.
func (s *Store) Get(ctx context.Context, key, env string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err := s.checkKey(key); err != nil {
		return "", false, err
	}

	environment := s.resolveEnv(env)
	value, err := s.backend.Retrieve(s.pkg, Identifier(environment, key))
	if err != nil {
		if errors.Is(err, backend.ErrItemNotFound) {
			s.logger.Debug("secret %s not found for %s in %s", key, s.pkg, environment)
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set validates key and value, writes the secret to the backend, then upserts
// the manifest entry with the required flag. Validation failures leave the
// backend untouched; backend failures leave the manifest untouched.
func (s *Store) Set(ctx context.Context, key, value string, required bool, env string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkKey(key); err != nil {
		return err
	}
	if !s.validator.IsValidValue(value) {
		return egerrors.ValidationError{
			Field:  "value",
			Value:  egerrors.MaskValue(value),
			Reason: "must not be whitespace-only and must not contain control characters",
		}
	}

	environment := s.resolveEnv(env)
	if err := s.backend.Store(s.pkg, Identifier(environment, key), value); err != nil {
		return err
	}
	s.logger.Debug("stored %s for %s in %s", key, s.pkg, environment)

	return s.manifest.AddKey(s.pkg, key, required)
}

// Delete removes the secret from the backend and drops the key from the
// manifest. Deleting an absent secret is not an error; the manifest is
// still reconciled so a stale entry gets cleaned up.
func (s *Store) Delete(ctx context.Context, key, env string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkKey(key); err != nil {
		return err
	}

	environment := s.resolveEnv(env)
	if err := s.backend.Erase(s.pkg, Identifier(environment, key)); err != nil {
		if !errors.Is(err, backend.ErrItemNotFound) {
			return err
		}
		s.logger.Debug("delete of absent secret %s for %s in %s", key, s.pkg, environment)
	}

	return s.manifest.RemoveKey(s.pkg, key)
}

// List enumerates the backend-visible identifiers for the package. The result
// reflects the backend, not the manifest, and is meant for diagnostics.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.backend.Enumerate(s.pkg)
}

// Clear removes every backend entry for the package namespace. The manifest
// entry is removed as well so bookkeeping does not outlive the secrets.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.backend.EraseAll(s.pkg); err != nil {
		return err
	}
	return s.manifest.RemovePackage(s.pkg)
}

func (s *Store) checkKey(key string) error {
	if s.validator.IsValidKey(key) {
		return nil
	}
	return egerrors.ValidationError{
		Field:  "key",
		Value:  key,
		Reason: "must be non-empty, at most 255 bytes, and match [a-zA-Z0-9_-]+",
	}
}
