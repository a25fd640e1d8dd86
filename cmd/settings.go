package cmd

import (
	"fmt"
	"strings"

	"rentadm/api"

	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View and change system settings such as utility prices",
	}

	cmd.AddCommand(settingsListCmd())
	cmd.AddCommand(settingsSetCmd())
	return cmd
}

func settingsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List system settings",
		Annotations: routed("/settings"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.Settings.Fetch(cmd.Context()); err != nil {
				return err
			}
			return printSettings(cmd, store.Settings.Items())
		},
	}

	return cmd
}

func printSettings(cmd *cobra.Command, settings []api.SystemSetting) error {
	out := cmd.OutOrStdout()
	if outputJSON {
		return writeJSON(out, settings)
	}
	if len(settings) == 0 {
		fmt.Fprintln(out, "No settings defined.")
		return nil
	}
	writer := newTable(out)
	if !outputCompact {
		fmt.Fprintln(writer, "KEY\tVALUE\tDESCRIPTION")
	}
	for _, s := range settings {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", s.Key, s.Value, s.Description)
	}
	return writer.Flush()
}

// parseAssignments reads KEY=VALUE arguments. Later duplicates win.
func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid setting %q, expected KEY=VALUE", arg)
		}
		values[key] = strings.TrimSpace(value)
	}
	return values, nil
}

func settingsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "set KEY=VALUE...",
		Short:       "Change one or more settings",
		Example:     "  rentadm settings set PRICE_ELECTRICITY=3500 PRICE_WATER=15000",
		Args:        cobra.MinimumNArgs(1),
		Annotations: routed("/settings"),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(args)
			if err != nil {
				return err
			}
			if err := store.Settings.Update(cmd.Context(), values); err != nil {
				return err
			}
			if !outputJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %d setting(s).\n", len(values))
			}
			return printSettings(cmd, store.Settings.Items())
		},
	}

	return cmd
}
