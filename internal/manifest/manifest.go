// Package manifest tracks, per package, which secret keys exist and whether
// each is required. The manifest is a side-car JSON file; it never holds
// secret values.
package manifest

import "time"

// Manifest is the on-disk model of .envguard/manifest.json.
type Manifest struct {
	Packages map[string]PackageEntry `json:"packages"`
}

// PackageEntry lists the known keys for one package.
type PackageEntry struct {
	Keys        []Key     `json:"keys"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Key is one tracked secret key.
type Key struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{Packages: make(map[string]PackageEntry)}
}

// findKey returns the index of name in entry.Keys, or -1.
func (e PackageEntry) findKey(name string) int {
	for i, k := range e.Keys {
		if k.Name == name {
			return i
		}
	}
	return -1
}
