package cmd

import (
	"fmt"
	"strings"

	"rentadm/storage"

	"github.com/spf13/cobra"
)

func profilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage saved backend profiles",
	}

	cmd.AddCommand(profilesListCmd())
	cmd.AddCommand(profilesAddCmd())
	cmd.AddCommand(profilesRemoveCmd())
	return cmd
}

func profilesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			profiles, err := storage.LoadProfiles()
			if err != nil {
				return err
			}

			if outputJSON {
				return writeJSON(out, profiles)
			}

			if len(profiles) == 0 {
				fmt.Fprintln(out, "No profiles saved.")
				return nil
			}

			writer := newTable(out)
			if !outputCompact {
				fmt.Fprintln(writer, "ALIAS\tAPI\tSOCKET")
			}
			for _, profile := range profiles {
				fmt.Fprintf(writer, "%s\t%s\t%s\n", profile.Alias, profile.APIURL, profile.SocketURL())
			}
			return writer.Flush()
		},
	}

	return cmd
}

func profilesAddCmd() *cobra.Command {
	var alias string
	var apiURL string
	var wsURL string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a backend profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if alias == "" || apiURL == "" {
				return fmt.Errorf("--alias and --url are required")
			}
			profiles, err := storage.LoadProfiles()
			if err != nil {
				return err
			}
			profiles, err = storage.AddProfile(profiles, storage.Profile{Alias: alias, APIURL: apiURL, WSURL: wsURL})
			if err != nil {
				return err
			}

			if err := storage.SaveProfiles(profiles); err != nil {
				return err
			}

			saved, _ := storage.FindProfileByAlias(profiles, alias)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s (%s, socket %s).\n", saved.Alias, saved.APIURL, saved.SocketURL())
			return nil
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "", "Short alias")
	cmd.Flags().StringVar(&apiURL, "url", "", "Backend API base URL")
	cmd.Flags().StringVar(&wsURL, "socket-url", "", "Notification socket URL")
	return cmd
}

func profilesRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <alias>",
		Short: "Remove a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := strings.TrimSpace(args[0])
			profiles, err := storage.LoadProfiles()
			if err != nil {
				return err
			}

			profiles, err = storage.RemoveProfile(profiles, alias)
			if err != nil {
				return err
			}
			if err := storage.SaveProfiles(profiles); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed profile %s.\n", alias)
			return nil
		},
	}

	return cmd
}
