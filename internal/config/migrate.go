package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amannirala13/envguard/internal/logging"
	"github.com/amannirala13/envguard/internal/validation"
)

// Version labels the configuration schema versions this tool knows about.
type Version string

const (
	// VersionUnknown covers a missing file, a parse failure, and any shape
	// that is neither v1 nor v2. These cases are indistinguishable at this
	// layer on purpose.
	VersionUnknown Version = ""
	VersionV1      Version = "v1"
	VersionV2      Version = "v2"
)

// Migrator is the single point of truth for the on-disk configuration shape.
// It detects the schema version, migrates v1 files to v2 with a backup, and
// loads whichever typed model is present.
type Migrator struct {
	logger *logging.Logger

	// now is swappable so tests can pin backup filenames and metadata.
	now func() time.Time
}

// NewMigrator creates a migrator.
func NewMigrator(logger *logging.Logger) *Migrator {
	return &Migrator{logger: logger, now: time.Now}
}

// MigrationResult reports the outcome of PerformMigration.
type MigrationResult struct {
	Success    bool    `json:"success"`
	Version    Version `json:"version"`
	BackupPath string  `json:"backupPath,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Loaded carries whichever typed config model was found on disk.
type Loaded struct {
	Version Version
	V1      *V1
	V2      *V2
}

// DetectVersion reads and parses the file at path. A version field equal to
// "2.0.0" means v2; a plain-string package field means v1; anything else,
// including a missing or unparsable file, is VersionUnknown.
func (m *Migrator) DetectVersion(path string) Version {
	data, err := os.ReadFile(path)
	if err != nil {
		m.logger.Debug("config %s unreadable: %v", path, err)
		return VersionUnknown
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		m.logger.Debug("config %s is not a JSON object: %v", path, err)
		return VersionUnknown
	}

	if raw, ok := doc["version"]; ok {
		var version string
		if err := json.Unmarshal(raw, &version); err == nil && version == V2Version {
			return VersionV2
		}
	}

	if raw, ok := doc["package"]; ok {
		var pkg string
		if err := json.Unmarshal(raw, &pkg); err == nil {
			return VersionV1
		}
	}

	return VersionUnknown
}

// NeedsMigration reports whether the file at path is exactly a v1 config.
func (m *Migrator) NeedsMigration(path string) bool {
	return m.DetectVersion(path) == VersionV1
}

// MigrateV1ToV2 builds the v2 equivalent of a v1 config. It is deterministic:
// the same v1 input yields the same v2 output apart from _metadata timestamps.
func (m *Migrator) MigrateV1ToV2(v1 V1, cliVersion string) *V2 {
	v2 := DefaultV2(v1.Package, cliVersion, m.now())
	v2.Package.Type = string(validation.ClassifyPackageName(v1.Package))

	if v1.DefaultEnvironment != "" {
		v2.Environments.Default = v1.DefaultEnvironment
		if !v2.IsAllowedEnvironment(v1.DefaultEnvironment) {
			v2.Environments.Allowed = append(v2.Environments.Allowed, v1.DefaultEnvironment)
		}
	}
	if v1.TemplateFile != "" {
		v2.Paths.Template = v1.TemplateFile
	}
	if v1.ManifestVersion != "" {
		v2.Manifest.Version = v1.ManifestVersion
	}
	v2.Metadata.MigratedFrom = "v1"

	return v2
}

// BackupV1Config serializes the v1 config verbatim to
// <root>/.envguard/config.v1.backup.<timestamp>.json and returns the backup
// path. The timestamp is embedded in the name, so an existing backup is never
// overwritten.
func (m *Migrator) BackupV1Config(v1 V1, root string) (string, error) {
	stamp := backupTimestamp(m.now())
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("config.v1.backup.%s.json", stamp))
	data, err := json.MarshalIndent(v1, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return "", err
	}

	m.logger.Debug("backed up v1 config to %s", path)
	return path, nil
}

// PerformMigration backs up the v1 config, builds the v2 equivalent, and
// overwrites the live config file. On failure it reports version "v1" since
// the backup happens before the overwrite; it does not roll back a partially
// written target, recovery relies on the backup file.
func (m *Migrator) PerformMigration(path string, v1 V1, cliVersion string) MigrationResult {
	root := filepath.Dir(filepath.Dir(path))

	backupPath, err := m.BackupV1Config(v1, root)
	if err != nil {
		return MigrationResult{Success: false, Version: VersionV1, Error: err.Error()}
	}

	v2 := m.MigrateV1ToV2(v1, cliVersion)
	data, err := json.MarshalIndent(v2, "", "  ")
	if err != nil {
		return MigrationResult{Success: false, Version: VersionV1, BackupPath: backupPath, Error: err.Error()}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return MigrationResult{Success: false, Version: VersionV1, BackupPath: backupPath, Error: err.Error()}
	}

	m.logger.Info("migrated configuration to v%s", V2Version)
	return MigrationResult{Success: true, Version: VersionV2, BackupPath: backupPath}
}

// LoadConfig detects the version at path and returns the corresponding typed
// model. It returns nil when the version is undetermined.
func (m *Migrator) LoadConfig(path string) *Loaded {
	switch m.DetectVersion(path) {
	case VersionV1:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var v1 V1
		if err := json.Unmarshal(data, &v1); err != nil {
			return nil
		}
		return &Loaded{Version: VersionV1, V1: &v1}

	case VersionV2:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var v2 V2
		if err := json.Unmarshal(data, &v2); err != nil {
			return nil
		}
		return &Loaded{Version: VersionV2, V2: &v2}

	default:
		return nil
	}
}

// backupTimestamp renders an ISO-8601 instant with the colons and dots
// replaced by dashes so it is safe inside a filename.
func backupTimestamp(t time.Time) string {
	iso := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(iso)
}
