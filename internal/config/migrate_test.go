package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amannirala13/envguard/internal/config"
	"github.com/amannirala13/envguard/internal/logging"
)

func newMigrator() *config.Migrator {
	return config.NewMigrator(logging.New(false, true))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

const v1Doc = `{
  "package": "my-app",
  "templateFile": ".env.example",
  "manifestVersion": "1.0",
  "defaultEnvironment": "development"
}`

func TestDetectVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    config.Version
	}{
		{name: "v1", content: v1Doc, want: config.VersionV1},
		{name: "v2", content: `{"version": "2.0.0", "package": {"name": "my-app"}}`, want: config.VersionV2},
		{name: "v2_wins_over_v1_shape", content: `{"version": "2.0.0", "package": "my-app"}`, want: config.VersionV2},
		{name: "wrong_version_string", content: `{"version": "1.5.0", "package": {"name": "x"}}`, want: config.VersionUnknown},
		{name: "package_not_string", content: `{"package": {"name": "my-app"}}`, want: config.VersionUnknown},
		{name: "not_json", content: `{broken`, want: config.VersionUnknown},
		{name: "json_array", content: `[1,2,3]`, want: config.VersionUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.json")
			writeFile(t, path, tt.content)
			assert.Equal(t, tt.want, newMigrator().DetectVersion(path))
		})
	}
}

func TestDetectVersionMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nope", "config.json")
	assert.Equal(t, config.VersionUnknown, newMigrator().DetectVersion(path))
}

func TestNeedsMigration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	v1Path := filepath.Join(dir, "v1.json")
	v2Path := filepath.Join(dir, "v2.json")
	writeFile(t, v1Path, v1Doc)
	writeFile(t, v2Path, `{"version": "2.0.0"}`)

	m := newMigrator()
	assert.True(t, m.NeedsMigration(v1Path))
	assert.False(t, m.NeedsMigration(v2Path))
	assert.False(t, m.NeedsMigration(filepath.Join(dir, "absent.json")))
}

func TestMigrateV1ToV2(t *testing.T) {
	t.Parallel()

	v1 := config.V1{
		Package:            "com.company.app",
		TemplateFile:       "templates/.env.tmpl",
		ManifestVersion:    "1.2",
		DefaultEnvironment: "staging",
	}

	v2 := newMigrator().MigrateV1ToV2(v1, "2.0.0-cli")

	assert.Equal(t, "2.0.0", v2.Version)
	assert.Equal(t, "com.company.app", v2.Package.Name)
	assert.Equal(t, "reverse-domain", v2.Package.Type)
	assert.Equal(t, "staging", v2.Environments.Default)
	assert.Equal(t, "templates/.env.tmpl", v2.Paths.Template)
	assert.Equal(t, "1.2", v2.Manifest.Version)
	require.NotNil(t, v2.Metadata)
	assert.Equal(t, "v1", v2.Metadata.MigratedFrom)
	assert.Equal(t, "2.0.0-cli", v2.Metadata.CLIVersion)
	assert.NoError(t, v2.Validate())
}

func TestMigrateV1ToV2CustomEnvironmentAddedToAllowed(t *testing.T) {
	t.Parallel()

	v1 := config.V1{Package: "my-app", DefaultEnvironment: "qa"}
	v2 := newMigrator().MigrateV1ToV2(v1, "1.0.0")

	assert.Equal(t, "qa", v2.Environments.Default)
	assert.True(t, v2.IsAllowedEnvironment("qa"))
	assert.NoError(t, v2.Validate())
}

func TestMigrateV1ToV2Deterministic(t *testing.T) {
	t.Parallel()

	v1 := config.V1{
		Package:            "@scope/name",
		TemplateFile:       ".env.example",
		ManifestVersion:    "1.0",
		DefaultEnvironment: "development",
	}

	m := newMigrator()
	a := m.MigrateV1ToV2(v1, "1.0.0")
	b := m.MigrateV1ToV2(v1, "1.0.0")

	// Timestamps aside, the outputs must be structurally identical.
	a.Metadata.CreatedAt = ""
	b.Metadata.CreatedAt = ""
	assert.Equal(t, a, b)
	assert.Equal(t, "npm", a.Package.Type)
}

func TestBackupV1ConfigRoundTrips(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	v1 := config.V1{
		Package:            "my-app",
		TemplateFile:       ".env.example",
		ManifestVersion:    "1.0",
		DefaultEnvironment: "development",
	}

	backupPath, err := newMigrator().BackupV1Config(v1, root)
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(backupPath), "config.v1.backup.")
	assert.NotContains(t, filepath.Base(backupPath), ":")

	raw, err := os.ReadFile(backupPath)
	require.NoError(t, err)

	var restored config.V1
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, v1, restored)
}

func TestBackupsNeverOverwrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	m := newMigrator()
	v1 := config.V1{Package: "my-app"}

	first, err := m.BackupV1Config(v1, root)
	require.NoError(t, err)
	second, err := m.BackupV1Config(v1, root)
	require.NoError(t, err)

	if first == second {
		// Same-millisecond runs share a timestamp; both writes carry the
		// identical v1 payload, so nothing was lost.
		return
	}
	assert.NotEqual(t, first, second)
}

func TestPerformMigration(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := config.DefaultPath(root)
	writeFile(t, path, v1Doc)

	m := newMigrator()
	loaded := m.LoadConfig(path)
	require.NotNil(t, loaded)
	require.NotNil(t, loaded.V1)

	result := m.PerformMigration(path, *loaded.V1, "1.0.0")
	require.True(t, result.Success, "migration failed: %s", result.Error)
	assert.Equal(t, config.VersionV2, result.Version)
	require.NotEmpty(t, result.BackupPath)

	// The backup holds the original v1 document.
	raw, err := os.ReadFile(result.BackupPath)
	require.NoError(t, err)
	var restored config.V1
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, "my-app", restored.Package)

	// The live file is now a valid v2 config.
	assert.Equal(t, config.VersionV2, m.DetectVersion(path))
	migrated := m.LoadConfig(path)
	require.NotNil(t, migrated)
	require.NotNil(t, migrated.V2)
	assert.NoError(t, migrated.V2.Validate())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NoError(t, config.ValidateV2Document(data))
}

func TestPerformMigrationWriteFailureKeepsBackup(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// Target path is a directory, so the final overwrite must fail after the
	// backup has been written.
	path := filepath.Join(root, config.Dir, "config.json")
	require.NoError(t, os.MkdirAll(path, 0o755))

	v1 := config.V1{Package: "my-app"}
	result := newMigrator().PerformMigration(path, v1, "1.0.0")

	assert.False(t, result.Success)
	assert.Equal(t, config.VersionV1, result.Version)
	assert.NotEmpty(t, result.Error)
	require.NotEmpty(t, result.BackupPath)
	_, err := os.Stat(result.BackupPath)
	assert.NoError(t, err, "backup must exist even when the overwrite fails")
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := newMigrator()

	v1Path := filepath.Join(dir, "v1.json")
	writeFile(t, v1Path, v1Doc)
	loaded := m.LoadConfig(v1Path)
	require.NotNil(t, loaded)
	assert.Equal(t, config.VersionV1, loaded.Version)
	require.NotNil(t, loaded.V1)
	assert.Equal(t, "my-app", loaded.V1.Package)
	assert.Nil(t, loaded.V2)

	assert.Nil(t, m.LoadConfig(filepath.Join(dir, "absent.json")))
}
