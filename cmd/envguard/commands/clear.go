package commands

import (
	"github.com/spf13/cobra"

	egerrors "github.com/amannirala13/envguard/internal/errors"
)

// NewClearCommand creates the clear command.
func NewClearCommand(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every secret stored for this package",
		Long: `Remove all credential-store entries for this package, across every
environment, and drop the package from the manifest. This cannot be undone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if !yes {
				return egerrors.UserError{
					Message:    "Refusing to clear all secrets without confirmation",
					Suggestion: "Re-run with --yes to delete every secret for " + cfg.Package.Name,
				}
			}

			s, err := app.Store(cfg)
			if err != nil {
				return err
			}
			if err := s.Clear(cmd.Context()); err != nil {
				return err
			}

			app.Logger.Info("cleared all secrets for %s", cfg.Package.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion of every secret for this package")

	return cmd
}
