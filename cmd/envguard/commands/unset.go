package commands

import (
	"github.com/spf13/cobra"
)

// NewUnsetCommand creates the unset command.
func NewUnsetCommand(app *App) *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "unset KEY",
		Short: "Delete a secret from the OS credential store",
		Long: `Remove a secret for this package. Deleting a secret that does not
exist is not an error; the manifest entry is cleaned up either way.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			env, err := app.ResolveEnvironment(cfg, envName)
			if err != nil {
				return err
			}

			s, err := app.Store(cfg)
			if err != nil {
				return err
			}
			if err := s.Delete(cmd.Context(), args[0], env); err != nil {
				return err
			}

			app.Logger.Info("removed %s for %s in %s", args[0], cfg.Package.Name, env)
			return nil
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment (defaults to the configured default)")

	return cmd
}
