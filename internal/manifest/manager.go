package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	egerrors "github.com/amannirala13/envguard/internal/errors"
	"github.com/amannirala13/envguard/internal/logging"
)

// Manager owns every read-modify-write cycle against the manifest file. Each
// mutator does a full load, mutates in memory, and saves. There is no file
// locking: two concurrent processes can lose an update (last writer wins),
// which matches the documented behavior of the tool.
type Manager struct {
	path   string
	logger *logging.Logger

	// now is swappable so tests can pin lastUpdated timestamps.
	now func() time.Time
}

// NewManager creates a manager for the manifest at path.
func NewManager(path string, logger *logging.Logger) *Manager {
	return &Manager{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Path returns the manifest file location.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the manifest. A missing file yields an empty manifest; a present
// but unparsable file is an error.
func (m *Manager) Load() (*Manifest, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Debug("manifest %s not found, starting empty", m.path)
			return NewManifest(), nil
		}
		return nil, egerrors.ManifestError{Op: "load", Path: m.path, Err: err}
	}

	var mf Manifest
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, egerrors.ManifestError{Op: "load", Path: m.path, Err: err}
	}
	if mf.Packages == nil {
		mf.Packages = make(map[string]PackageEntry)
	}
	return &mf, nil
}

// Save writes the manifest, creating parent directories as needed. The write
// is a plain overwrite, not an atomic rename.
func (m *Manager) Save(mf *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return egerrors.ManifestError{Op: "save", Path: m.path, Err: err}
	}
	data, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return egerrors.ManifestError{Op: "save", Path: m.path, Err: err}
	}
	if err := os.WriteFile(m.path, append(data, '\n'), 0o600); err != nil {
		return egerrors.ManifestError{Op: "save", Path: m.path, Err: err}
	}
	return nil
}

// AddKey upserts (pkg, key) with the given required flag and refreshes the
// package's lastUpdated stamp. The package entry is created lazily on the
// first key. When the key is already present with the same flag the write is
// skipped.
func (m *Manager) AddKey(pkg, key string, required bool) error {
	mf, err := m.Load()
	if err != nil {
		return err
	}

	entry, ok := mf.Packages[pkg]
	if ok {
		if i := entry.findKey(key); i >= 0 {
			if entry.Keys[i].Required == required {
				m.logger.Debug("manifest already tracks %s/%s, skipping write", pkg, key)
				return nil
			}
			entry.Keys[i].Required = required
		} else {
			entry.Keys = append(entry.Keys, Key{Name: key, Required: required})
		}
	} else {
		entry = PackageEntry{Keys: []Key{{Name: key, Required: required}}}
	}
	entry.LastUpdated = m.now().UTC()
	mf.Packages[pkg] = entry

	return m.Save(mf)
}

// RemoveKey drops key from pkg's key list. When the list becomes empty the
// package entry itself is pruned. Removing an untracked key is a no-op.
func (m *Manager) RemoveKey(pkg, key string) error {
	mf, err := m.Load()
	if err != nil {
		return err
	}

	entry, ok := mf.Packages[pkg]
	if !ok {
		return nil
	}
	i := entry.findKey(key)
	if i < 0 {
		return nil
	}

	entry.Keys = append(entry.Keys[:i], entry.Keys[i+1:]...)
	if len(entry.Keys) == 0 {
		delete(mf.Packages, pkg)
	} else {
		entry.LastUpdated = m.now().UTC()
		mf.Packages[pkg] = entry
	}

	return m.Save(mf)
}

// ListKeys returns the tracked key names for pkg.
func (m *Manager) ListKeys(pkg string) ([]string, error) {
	mf, err := m.Load()
	if err != nil {
		return nil, err
	}
	entry := mf.Packages[pkg]
	names := make([]string, 0, len(entry.Keys))
	for _, k := range entry.Keys {
		names = append(names, k.Name)
	}
	return names, nil
}

// IsKeyRequired reports whether (pkg, key) is tracked as required. An
// untracked key is reported as not required.
func (m *Manager) IsKeyRequired(pkg, key string) (bool, error) {
	mf, err := m.Load()
	if err != nil {
		return false, err
	}
	entry := mf.Packages[pkg]
	if i := entry.findKey(key); i >= 0 {
		return entry.Keys[i].Required, nil
	}
	return false, nil
}

// GetRequiredKeys returns the names of pkg's required keys.
func (m *Manager) GetRequiredKeys(pkg string) ([]string, error) {
	return m.filterKeys(pkg, true)
}

// GetOptionalKeys returns the names of pkg's optional keys.
func (m *Manager) GetOptionalKeys(pkg string) ([]string, error) {
	return m.filterKeys(pkg, false)
}

func (m *Manager) filterKeys(pkg string, required bool) ([]string, error) {
	mf, err := m.Load()
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, k := range mf.Packages[pkg].Keys {
		if k.Required == required {
			names = append(names, k.Name)
		}
	}
	return names, nil
}

// RemovePackage drops pkg's entire entry. Unknown packages are a no-op.
func (m *Manager) RemovePackage(pkg string) error {
	mf, err := m.Load()
	if err != nil {
		return err
	}
	if _, ok := mf.Packages[pkg]; !ok {
		return nil
	}
	delete(mf.Packages, pkg)
	return m.Save(mf)
}
