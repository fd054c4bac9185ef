package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	egerrors "github.com/amannirala13/envguard/internal/errors"
	"github.com/amannirala13/envguard/internal/execenv"
	"github.com/amannirala13/envguard/internal/secure"
	"github.com/amannirala13/envguard/internal/session"
)

// NewRunCommand creates the run command.
func NewRunCommand(app *App) *cobra.Command {
	var (
		envName   string
		timeout   time.Duration
		printKeys bool
	)

	cmd := &cobra.Command{
		Use:   "run -- COMMAND [ARGS...]",
		Short: "Run a command with this package's secrets as environment variables",
		Long: `Resolve every manifest-tracked key for the chosen environment and run
COMMAND with those variables injected. Required keys must be present in the
credential store; missing optional keys are skipped with a warning.

Examples:
  envguard run -- npm start
  envguard run --env production --timeout 30s -- ./deploy.sh`,
		Args: cobra.MinimumNArgs(1),
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
			man := app.Manifest(cfg)

			keys, err := man.ListKeys(cfg.Package.Name)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				app.Logger.Warn("no secrets tracked for %s; running with the plain environment", cfg.Package.Name)
			}

			secrets := make(map[string]*secure.Buffer, len(keys))
			var missing []string
			for _, key := range keys {
				value, ok, err := s.Get(cmd.Context(), key, env)
				if err != nil {
					return err
				}
				if !ok {
					required, err := man.IsKeyRequired(cfg.Package.Name, key)
					if err != nil {
						return err
					}
					if required {
						missing = append(missing, key)
					} else {
						app.Logger.Warn("optional secret %s is not set in %s, skipping", key, env)
					}
					continue
				}
				secrets[key] = secure.NewBuffer(value)
			}
			if len(missing) > 0 {
				return egerrors.UserError{
					Message:    fmt.Sprintf("Required secrets missing in %s: %v", env, missing),
					Suggestion: fmt.Sprintf("Set them with 'envguard set <KEY> --env %s'", env),
				}
			}

			sess := session.New()
			runner := execenv.NewRunner(app.Logger)
			runErr := runner.Run(cmd.Context(), execenv.Options{
				Command:     args,
				Environment: env,
				Secrets:     secrets,
				Session:     sess,
				Timeout:     timeout,
				PrintKeys:   printKeys,
			})

			injected := sess.Reset(env)
			app.Logger.Debug("cleared %d injected key(s) for %s", len(injected), env)
			for _, buf := range secrets {
				buf.Destroy()
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment (defaults to the configured default)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Kill the command after this duration (0 disables)")
	cmd.Flags().BoolVar(&printKeys, "print-keys", false, "Print injected key names (values stay masked)")

	return cmd
}
