package cmd

import (
	"database/sql"
	"fmt"

	"rentadm/storage"

	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local snapshot cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete cached list pages and notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := withCache(func(db *sql.DB) error { return storage.ClearCache(db) }); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	})
	return cmd
}
