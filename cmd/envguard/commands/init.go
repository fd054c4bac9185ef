package commands

import (
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/amannirala13/envguard/internal/config"
	egerrors "github.com/amannirala13/envguard/internal/errors"
	"github.com/amannirala13/envguard/internal/validation"
)

// NewInitCommand creates the init command.
func NewInitCommand(app *App) *cobra.Command {
	var (
		packageName string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize envguard for this project",
		Long: `Create a v2 configuration under .envguard/.

The package name scopes every secret this project stores; it becomes the
credential-store namespace. Reverse-domain names (com.company.app) and
npm-style names (@scope/name) are recognized and classified automatically.

Examples:
  envguard init --package com.company.app
  envguard init --package @scope/name`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if packageName == "" {
				return egerrors.UserError{
					Message:    "Package name is required",
					Suggestion: "Use --package <name> to identify this project",
				}
			}

			v := validation.New(app.Logger)
			if !v.IsValidPackageName(packageName) {
				return egerrors.ValidationError{
					Field:  "package",
					Value:  packageName,
					Reason: "must be non-empty, at most 255 bytes, and match [a-zA-Z0-9._@/-]+",
				}
			}

			path := app.ConfigPath()
			migrator := config.NewMigrator(app.Logger)
			switch migrator.DetectVersion(path) {
			case config.VersionV1:
				return egerrors.ConfigError{
					Field:      "version",
					Value:      "v1",
					Message:    "a legacy v1 configuration already exists",
					Suggestion: "Run 'envguard migrate' instead of re-initializing",
				}
			case config.VersionV2:
				if !force {
					return egerrors.UserError{
						Message:    "Project is already initialized",
						Suggestion: "Use --force to overwrite the existing configuration",
					}
				}
			}

			cfg := config.DefaultV2(packageName, app.CLIVersion, time.Now())
			if err := app.WriteConfig(cfg); err != nil {
				return err
			}

			bold := color.New(color.Bold).SprintFunc()
			app.Logger.Info("initialized %s (%s package)", bold(packageName), cfg.Package.Type)
			app.Logger.Info("configuration written to %s", path)

			if _, err := os.Stat(cfg.Paths.Template); os.IsNotExist(err) {
				app.Logger.Warn("template file %s does not exist yet", cfg.Paths.Template)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&packageName, "package", "", "Package name (reverse-domain, npm, or plain)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing v2 configuration")

	return cmd
}
