package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/amannirala13/envguard/internal/config"
	egerrors "github.com/amannirala13/envguard/internal/errors"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, backend, and manifest health",
		Long: `Run every diagnostic check:

  - configuration present, current version, schema-valid
  - credential-store backend reachable in this environment
  - manifest and credential store agree on which keys exist

Exits non-zero when any check fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			pass := color.GreenString("✓")
			fail := color.RedString("✗")
			failures := 0

			check := func(ok bool, format string, args ...interface{}) {
				glyph := pass
				if !ok {
					glyph = fail
					failures++
				}
				fmt.Fprintf(out, "%s %s\n", glyph, fmt.Sprintf(format, args...))
			}

			// Configuration.
			path := app.ConfigPath()
			migrator := config.NewMigrator(app.Logger)
			version := migrator.DetectVersion(path)
			switch version {
			case config.VersionUnknown:
				check(false, "configuration: none found at %s", path)
			case config.VersionV1:
				check(false, "configuration: legacy v1 format, run 'envguard migrate'")
			case config.VersionV2:
				check(true, "configuration: v2 at %s", path)
				if data, err := os.ReadFile(path); err == nil {
					schemaErr := config.ValidateV2Document(data)
					check(schemaErr == nil, "configuration schema: %s", errOrOK(schemaErr))
				}
			}

			// Backend.
			be, err := app.Backend()
			if err != nil {
				return err
			}
			availErr := be.Available()
			check(availErr == nil, "backend (%s): %s", backendName(app), errOrOK(availErr))

			// Manifest vs backend drift.
			if version == config.VersionV2 && availErr == nil {
				cfg, err := app.LoadConfig()
				if err != nil {
					check(false, "manifest: %v", err)
				} else if err := checkDrift(cmd.Context(), app, cfg, check); err != nil {
					check(false, "manifest: %v", err)
				}
			}

			if failures > 0 {
				return egerrors.UserError{
					Message: fmt.Sprintf("%d check(s) failed", failures),
				}
			}
			fmt.Fprintln(out, color.GreenString("all checks passed"))
			return nil
		},
	}

	return cmd
}

// checkDrift compares manifest-tracked keys against backend entries for every
// allowed environment and reports each direction of drift.
func checkDrift(ctx context.Context, app *App, cfg *config.V2, check func(bool, string, ...interface{})) error {
	s, err := app.Store(cfg)
	if err != nil {
		return err
	}
	man := app.Manifest(cfg)

	keys, err := man.ListKeys(cfg.Package.Name)
	if err != nil {
		return err
	}
	tracked := make(map[string]bool, len(keys))
	for _, k := range keys {
		tracked[k] = true
	}

	identifiers, err := s.List(ctx)
	if err != nil {
		return err
	}
	stored := make(map[string]bool)
	untracked := []string{}
	for _, id := range identifiers {
		_, key := splitIdentifier(id)
		stored[key] = true
		if !tracked[key] {
			untracked = append(untracked, key)
		}
	}

	orphaned := []string{}
	for _, k := range keys {
		if !stored[k] {
			orphaned = append(orphaned, k)
		}
	}

	check(len(untracked) == 0, "backend entries tracked in manifest: %s", driftMsg(untracked))
	check(len(orphaned) == 0, "manifest keys present in backend: %s", driftMsg(orphaned))
	return nil
}

func driftMsg(keys []string) string {
	if len(keys) == 0 {
		return "ok"
	}
	return fmt.Sprintf("drift %v", keys)
}

func errOrOK(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}

func backendName(app *App) string {
	if app.BackendName == "" {
		return "keyring"
	}
	return app.BackendName
}
