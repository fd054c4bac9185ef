package commands

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/amannirala13/envguard/internal/backend"
	"github.com/amannirala13/envguard/internal/logging"
)

// newTestApp builds an App rooted in a fresh temp directory, backed by the
// in-memory backend so tests never touch the real credential store.
func newTestApp(t *testing.T) *App {
	t.Helper()

	app := &App{
		Root:        t.TempDir(),
		BackendName: "memory",
		CLIVersion:  "0.0.0-test",
		Logger:      logging.NewWithWriter(io.Discard, false, true),
	}
	app.SetBackend(backend.NewMemory())
	return app
}

// initProject runs the init command so subsequent commands find a v2 config.
func initProject(t *testing.T, app *App, packageName string) {
	t.Helper()

	_, err := executeCommand(NewInitCommand(app), "--package", packageName)
	require.NoError(t, err)
}

// executeCommand runs a command with the given args and returns captured
// stdout plus the execution error.
func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
