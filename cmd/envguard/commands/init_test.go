package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amannirala13/envguard/internal/config"
)

func TestInitCommand_CreatesV2Config(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	_, err := executeCommand(NewInitCommand(app), "--package", "com.example.app")
	require.NoError(t, err)

	path := app.ConfigPath()
	require.FileExists(t, path)

	migrator := config.NewMigrator(app.Logger)
	assert.Equal(t, config.VersionV2, migrator.DetectVersion(path))

	loaded := migrator.LoadConfig(path)
	require.NotNil(t, loaded)
	require.NotNil(t, loaded.V2)
	assert.Equal(t, "com.example.app", loaded.V2.Package.Name)
	assert.Equal(t, "reverse-domain", loaded.V2.Package.Type)
	assert.Equal(t, "development", loaded.V2.Environments.Default)
}

func TestInitCommand_ClassifiesNpmPackages(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	_, err := executeCommand(NewInitCommand(app), "--package", "@scope/name")
	require.NoError(t, err)

	loaded := config.NewMigrator(app.Logger).LoadConfig(app.ConfigPath())
	require.NotNil(t, loaded)
	assert.Equal(t, "npm", loaded.V2.Package.Type)
}

func TestInitCommand_RequiresPackageFlag(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	_, err := executeCommand(NewInitCommand(app))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Package name is required")
}

func TestInitCommand_RejectsInvalidPackageName(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	_, err := executeCommand(NewInitCommand(app), "--package", "has spaces")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid package")
}

func TestInitCommand_RefusesToOverwriteWithoutForce(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	initProject(t, app, "com.example.app")

	_, err := executeCommand(NewInitCommand(app), "--package", "com.example.other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")

	_, err = executeCommand(NewInitCommand(app), "--package", "com.example.other", "--force")
	require.NoError(t, err)

	loaded := config.NewMigrator(app.Logger).LoadConfig(app.ConfigPath())
	require.NotNil(t, loaded)
	assert.Equal(t, "com.example.other", loaded.V2.Package.Name)
}

func TestInitCommand_RedirectsV1ConfigsToMigrate(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	dir := filepath.Join(app.Root, config.Dir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	v1 := `{"package":"legacy-app","templateFile":".env.example","manifestVersion":"1.0.0","defaultEnvironment":"development"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(v1), 0o600))

	_, err := executeCommand(NewInitCommand(app), "--package", "com.example.app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "envguard migrate")
}
