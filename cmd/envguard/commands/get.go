package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	egerrors "github.com/amannirala13/envguard/internal/errors"
)

// NewGetCommand creates the get command.
func NewGetCommand(app *App) *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print a secret value",
		Long: `Retrieve a single secret and print the raw value to stdout,
suitable for scripting:

  export API_KEY=$(envguard get API_KEY --env production)`,
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

			value, ok, err := s.Get(cmd.Context(), args[0], env)
			if err != nil {
				return err
			}
			if !ok {
				return egerrors.UserError{
					Message:    fmt.Sprintf("Secret %s is not set for %s in %s", args[0], cfg.Package.Name, env),
					Suggestion: fmt.Sprintf("Set it with 'envguard set %s --env %s'", args[0], env),
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment (defaults to the configured default)")

	return cmd
}
