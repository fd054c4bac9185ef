package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amannirala13/envguard/internal/config"
	egerrors "github.com/amannirala13/envguard/internal/errors"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(app *App) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade a legacy v1 configuration to v2",
		Long: `Migrate .envguard/config.json from the v1 to the v2 schema.

The original v1 file is backed up to .envguard/config.v1.backup.<timestamp>.json
before the live file is overwritten, so a failed migration can always be
recovered from the backup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.ConfigPath()
			migrator := config.NewMigrator(app.Logger)

			switch migrator.DetectVersion(path) {
			case config.VersionV2:
				app.Logger.Info("configuration is already v2, nothing to migrate")
				return nil
			case config.VersionUnknown:
				return egerrors.NotInitializedError{Path: path}
			}

			loaded := migrator.LoadConfig(path)
			if loaded == nil || loaded.V1 == nil {
				return egerrors.ConfigError{
					Message:    "configuration looked like v1 but could not be parsed",
					Suggestion: "Inspect " + path + " by hand",
				}
			}

			result := migrator.PerformMigration(path, *loaded.V1, app.CLIVersion)

			if jsonOutput {
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			}

			if !result.Success {
				return egerrors.ConfigError{
					Message:    "migration failed: " + result.Error,
					Suggestion: "Your v1 configuration is intact; the backup is at " + result.BackupPath,
				}
			}

			app.Logger.Info("backup written to %s", result.BackupPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the migration result as JSON")

	return cmd
}
