package commands

import (
	"bufio"
	"io"
	"strings"

	"github.com/spf13/cobra"

	egerrors "github.com/amannirala13/envguard/internal/errors"
)

// NewSetCommand creates the set command.
func NewSetCommand(app *App) *cobra.Command {
	var (
		envName  string
		optional bool
	)

	cmd := &cobra.Command{
		Use:   "set KEY [VALUE]",
		Short: "Store a secret in the OS credential store",
		Long: `Store a secret for this package.

When VALUE is omitted it is read from stdin, so values never land in shell
history:

  envguard set API_KEY sk-12345
  printf '%s' "$TOKEN" | envguard set DEPLOY_TOKEN
  envguard set DEBUG_FLAG --optional --env staging`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			env, err := app.ResolveEnvironment(cfg, envName)
			if err != nil {
				return err
			}

			key := args[0]
			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				value, err = readValue(cmd)
				if err != nil {
					return egerrors.UserError{
						Message: "Failed to read value from stdin",
						Err:     err,
					}
				}
			}

			if env == "production" && cfg.Security.WarnOnProduction {
				app.Logger.Warn("writing to the production environment")
			}

			s, err := app.Store(cfg)
			if err != nil {
				return err
			}
			if err := s.Set(cmd.Context(), key, value, !optional, env); err != nil {
				return err
			}

			app.Logger.Info("stored %s for %s in %s", key, cfg.Package.Name, env)
			return nil
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment (defaults to the configured default)")
	cmd.Flags().BoolVar(&optional, "optional", false, "Track the key as optional instead of required")

	return cmd
}

// readValue reads a single value from stdin. A trailing newline from
// interactive entry or echo is stripped; inner whitespace is preserved.
func readValue(cmd *cobra.Command) (string, error) {
	data, err := io.ReadAll(bufio.NewReader(cmd.InOrStdin()))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
