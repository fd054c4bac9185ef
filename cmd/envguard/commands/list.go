package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	egerrors "github.com/amannirala13/envguard/internal/errors"
)

// listEntry is one row of list output.
type listEntry struct {
	Environment string `json:"environment" yaml:"environment"`
	Key         string `json:"key" yaml:"key"`
	Required    bool   `json:"required" yaml:"required"`
	Tracked     bool   `json:"tracked" yaml:"tracked"`
}

// NewListCommand creates the list command.
func NewListCommand(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored secrets for this package",
		Long: `Enumerate the credential-store entries for this package across all
environments. Values are never shown. Entries missing from the manifest are
flagged as untracked; they usually mean a crash between a backend write and
the manifest update.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			s, err := app.Store(cfg)
			if err != nil {
				return err
			}

			identifiers, err := s.List(cmd.Context())
			if err != nil {
				return err
			}

			man := app.Manifest(cfg)
			tracked := make(map[string]bool)
			required := make(map[string]bool)
			keys, err := man.ListKeys(cfg.Package.Name)
			if err != nil {
				return err
			}
			for _, k := range keys {
				tracked[k] = true
				req, err := man.IsKeyRequired(cfg.Package.Name, k)
				if err != nil {
					return err
				}
				required[k] = req
			}

			entries := make([]listEntry, 0, len(identifiers))
			for _, id := range identifiers {
				env, key := splitIdentifier(id)
				entries = append(entries, listEntry{
					Environment: env,
					Key:         key,
					Required:    required[key],
					Tracked:     tracked[key],
				})
			}

			switch output {
			case "json":
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "yaml":
				data, err := yaml.Marshal(entries)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
			case "table":
				printTable(cmd, cfg.Package.Name, entries)
			default:
				return egerrors.UserError{
					Message:    "Unknown output format " + output,
					Suggestion: "Use --output table, json, or yaml",
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, or yaml")

	return cmd
}

// splitIdentifier parses a backend identifier back into (environment, key).
// Keys never contain a colon, so the first colon is the separator.
func splitIdentifier(id string) (string, string) {
	if i := strings.Index(id, ":"); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

func printTable(cmd *cobra.Command, pkg string, entries []listEntry) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(out, "%s\n", bold(pkg))
	if len(entries) == 0 {
		fmt.Fprintln(out, dim("  no secrets stored"))
		return
	}
	for _, e := range entries {
		flag := "optional"
		if e.Required {
			flag = "required"
		}
		line := fmt.Sprintf("  %-14s %-30s %s", e.Environment, e.Key, flag)
		if !e.Tracked {
			line += "  " + color.YellowString("(untracked)")
		}
		fmt.Fprintln(out, line)
	}
}
