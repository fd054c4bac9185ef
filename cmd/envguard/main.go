package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amannirala13/envguard/cmd/envguard/commands"
	"github.com/amannirala13/envguard/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		projectDir string
		backend    string
		noColor    bool
		debug      bool
	)

	app := &commands.App{CLIVersion: version}

	rootCmd := &cobra.Command{
		Use:   "envguard",
		Short: "Local-first secret manager backed by the OS credential store",
		Long: `envguard keeps project secrets in your operating system's credential
store and launches commands with ephemeral environment variables.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			app.Logger = logging.New(debug, noColor)
			app.Root = projectDir
			app.BackendName = backend
		},
	}

	rootCmd.PersistentFlags().StringVar(&projectDir, "project", ".", "Project root directory")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "keyring", "Secret backend (keyring or memory)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	// Add commands
	rootCmd.AddCommand(
		commands.NewInitCommand(app),
		commands.NewMigrateCommand(app),
		commands.NewSetCommand(app),
		commands.NewGetCommand(app),
		commands.NewUnsetCommand(app),
		commands.NewListCommand(app),
		commands.NewClearCommand(app),
		commands.NewRunCommand(app),
		commands.NewDoctorCommand(app),
	)

	return rootCmd.Execute()
}
