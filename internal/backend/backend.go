// Package backend defines the secret backend capability: opaque store,
// retrieve, erase, and enumerate operations addressed by a per-package
// namespace and an identifier string. The coordination layer never assumes a
// concrete credential store; implementations are selected by the host at
// startup.
package backend

// Backend is the capability interface over an OS credential store (or a test
// double). The namespace is the package name; the identifier is built by the
// caller and is opaque at this level.
//
// Implementations must treat get/set/erase of a single entry as individually
// atomic, which the OS stores already guarantee.
type Backend interface {
	// Store writes value under (namespace, identifier), overwriting any
	// previous value.
	Store(namespace, identifier, value string) error

	// Retrieve returns the value for (namespace, identifier).
	// Returns ErrItemNotFound if the entry does not exist.
	Retrieve(namespace, identifier string) (string, error)

	// Erase removes (namespace, identifier).
	// Returns ErrItemNotFound if the entry does not exist; callers that
	// want idempotent deletes treat that as success.
	Erase(namespace, identifier string) error

	// Enumerate lists the identifiers stored under namespace.
	// A namespace with no entries yields an empty slice, not an error.
	Enumerate(namespace string) ([]string, error)

	// EraseAll removes every entry under namespace.
	EraseAll(namespace string) error

	// Available reports whether the backend can be used in the current
	// environment. A nil return means operations are expected to work.
	Available() error
}
