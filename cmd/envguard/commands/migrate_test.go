package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amannirala13/envguard/internal/config"
)

func writeV1Config(t *testing.T, app *App, defaultEnv string) {
	t.Helper()

	dir := filepath.Join(app.Root, config.Dir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	v1 := map[string]string{
		"package":            "legacy-app",
		"templateFile":       ".env.sample",
		"manifestVersion":    "1.0.0",
		"defaultEnvironment": defaultEnv,
	}
	data, err := json.Marshal(v1)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), data, 0o600))
}

func TestMigrateCommand_UpgradesV1ToV2(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	writeV1Config(t, app, "development")

	_, err := executeCommand(NewMigrateCommand(app))
	require.NoError(t, err)

	migrator := config.NewMigrator(app.Logger)
	assert.Equal(t, config.VersionV2, migrator.DetectVersion(app.ConfigPath()))

	loaded := migrator.LoadConfig(app.ConfigPath())
	require.NotNil(t, loaded)
	require.NotNil(t, loaded.V2)
	assert.Equal(t, "legacy-app", loaded.V2.Package.Name)
	assert.Equal(t, "manual", loaded.V2.Package.Type)
	assert.Equal(t, ".env.sample", loaded.V2.Paths.Template)
	require.NotNil(t, loaded.V2.Metadata)
	assert.Equal(t, "v1", loaded.V2.Metadata.MigratedFrom)
}

func TestMigrateCommand_WritesBackupBeforeOverwriting(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	writeV1Config(t, app, "development")

	_, err := executeCommand(NewMigrateCommand(app))
	require.NoError(t, err)

	backups, err := filepath.Glob(filepath.Join(app.Root, config.Dir, "config.v1.backup.*.json"))
	require.NoError(t, err)
	require.Len(t, backups, 1)

	backed, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	var v1 config.V1
	require.NoError(t, json.Unmarshal(backed, &v1))
	assert.Equal(t, "legacy-app", v1.Package)
	assert.Equal(t, ".env.sample", v1.TemplateFile)
}

func TestMigrateCommand_CarriesCustomDefaultEnvironment(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	writeV1Config(t, app, "qa")

	_, err := executeCommand(NewMigrateCommand(app))
	require.NoError(t, err)

	loaded := config.NewMigrator(app.Logger).LoadConfig(app.ConfigPath())
	require.NotNil(t, loaded)
	assert.Equal(t, "qa", loaded.V2.Environments.Default)
	assert.Contains(t, loaded.V2.Environments.Allowed, "qa")
}

func TestMigrateCommand_JSONOutput(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	writeV1Config(t, app, "development")

	out, err := executeCommand(NewMigrateCommand(app), "--json")
	require.NoError(t, err)

	var result config.MigrationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	assert.Equal(t, config.VersionV2, result.Version)
	assert.FileExists(t, result.BackupPath)
}

func TestMigrateCommand_AlreadyV2IsANoop(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	initProject(t, app, "com.example.app")

	_, err := executeCommand(NewMigrateCommand(app))
	require.NoError(t, err)

	backups, err := filepath.Glob(filepath.Join(app.Root, config.Dir, "config.v1.backup.*.json"))
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestMigrateCommand_NoConfig(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	_, err := executeCommand(NewMigrateCommand(app))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}
