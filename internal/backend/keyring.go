package backend

import (
	"encoding/json"
	"errors"
	"os"
	"runtime"
	"sort"

	"github.com/zalando/go-keyring"
)

// DefaultServicePrefix scopes envguard entries inside the OS credential store
// so they never collide with other applications using the same store.
const DefaultServicePrefix = "envguard"

// indexAccount is the reserved identifier that holds the enumeration index for
// a namespace. Neither Keychain nor Secret Service expose listing through
// go-keyring, so the index is maintained alongside the entries. Real secret
// identifiers always carry an environment prefix and a restricted key charset,
// so this name cannot collide with one.
const indexAccount = "__envguard-index__"

// Keyring is the OS credential store backend, built on the platform keyring
// (macOS Keychain, Linux Secret Service, Windows Credential Manager).
type Keyring struct {
	servicePrefix string
}

// KeyringOption configures a Keyring backend.
type KeyringOption func(*Keyring)

// WithServicePrefix overrides the service prefix used to scope entries.
func WithServicePrefix(prefix string) KeyringOption {
	return func(k *Keyring) {
		if prefix != "" {
			k.servicePrefix = prefix
		}
	}
}

// NewKeyring creates the OS keyring backend.
func NewKeyring(opts ...KeyringOption) *Keyring {
	k := &Keyring{servicePrefix: DefaultServicePrefix}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *Keyring) service(namespace string) string {
	return k.servicePrefix + "." + namespace
}

// Store writes the value and records the identifier in the namespace index.
func (k *Keyring) Store(namespace, identifier, value string) error {
	service := k.service(namespace)
	if err := keyring.Set(service, identifier, value); err != nil {
		return &Error{Op: "store", Namespace: namespace, Identifier: identifier, Err: mapKeyringError(err)}
	}
	if err := k.updateIndex(service, identifier, true); err != nil {
		return &Error{Op: "store", Namespace: namespace, Identifier: identifier, Err: err}
	}
	return nil
}

// Retrieve reads the value for an identifier.
func (k *Keyring) Retrieve(namespace, identifier string) (string, error) {
	value, err := keyring.Get(k.service(namespace), identifier)
	if err != nil {
		mapped := mapKeyringError(err)
		if errors.Is(mapped, ErrItemNotFound) {
			return "", ErrItemNotFound
		}
		return "", &Error{Op: "retrieve", Namespace: namespace, Identifier: identifier, Err: mapped}
	}
	return value, nil
}

// Erase removes the entry and drops it from the namespace index.
func (k *Keyring) Erase(namespace, identifier string) error {
	service := k.service(namespace)
	if err := keyring.Delete(service, identifier); err != nil {
		mapped := mapKeyringError(err)
		if errors.Is(mapped, ErrItemNotFound) {
			return ErrItemNotFound
		}
		return &Error{Op: "erase", Namespace: namespace, Identifier: identifier, Err: mapped}
	}
	if err := k.updateIndex(service, identifier, false); err != nil {
		return &Error{Op: "erase", Namespace: namespace, Identifier: identifier, Err: err}
	}
	return nil
}

// Enumerate returns the identifiers recorded in the namespace index, sorted.
func (k *Keyring) Enumerate(namespace string) ([]string, error) {
	ids, err := k.readIndex(k.service(namespace))
	if err != nil {
		return nil, &Error{Op: "enumerate", Namespace: namespace, Err: err}
	}
	return ids, nil
}

// EraseAll removes every entry in the namespace, index included.
func (k *Keyring) EraseAll(namespace string) error {
	if err := keyring.DeleteAll(k.service(namespace)); err != nil {
		mapped := mapKeyringError(err)
		if errors.Is(mapped, ErrItemNotFound) {
			return nil
		}
		return &Error{Op: "erase-all", Namespace: namespace, Err: mapped}
	}
	return nil
}

// Available reports whether the OS credential store is usable. On Linux the
// Secret Service needs a desktop session; SSH and CI environments are treated
// as headless.
func (k *Keyring) Available() error {
	if runtime.GOOS != "darwin" && runtime.GOOS != "linux" && runtime.GOOS != "windows" {
		return ErrUnsupportedPlatform
	}
	if runtime.GOOS == "linux" {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			return ErrHeadless
		}
		if os.Getenv("SSH_TTY") != "" || os.Getenv("CI") != "" {
			return ErrHeadless
		}
	}
	return nil
}

func (k *Keyring) readIndex(service string) ([]string, error) {
	raw, err := keyring.Get(service, indexAccount)
	if err != nil {
		if errors.Is(mapKeyringError(err), ErrItemNotFound) {
			return []string{}, nil
		}
		return nil, mapKeyringError(err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		// A corrupt index is not recoverable in place; report it rather
		// than silently resetting and orphaning entries.
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (k *Keyring) updateIndex(service, identifier string, present bool) error {
	ids, err := k.readIndex(service)
	if err != nil {
		return err
	}
	next := ids[:0]
	for _, id := range ids {
		if id != identifier {
			next = append(next, id)
		}
	}
	if present {
		next = append(next, identifier)
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	return mapKeyringError(keyring.Set(service, indexAccount, string(raw)))
}

func mapKeyringError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, keyring.ErrNotFound):
		return ErrItemNotFound
	case errors.Is(err, keyring.ErrUnsupportedPlatform):
		return ErrUnsupportedPlatform
	case IsAccessDenied(err):
		return ErrAccessDenied
	default:
		return err
	}
}

var _ Backend = (*Keyring)(nil)
