package cmd

import (
	"context"
	"fmt"

	"rentadm/api"

	"github.com/spf13/cobra"
)

func requestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"user-requests"},
		Short:   "Handle tenant requests for renewal, termination or payment changes",
	}

	cmd.AddCommand(requestsListCmd())
	cmd.AddCommand(requestsResolveCmd("approve", "Approve a request", "Approved", func(ctx context.Context, id int64) error {
		return store.UserRequests.Approve(ctx, id)
	}))
	cmd.AddCommand(requestsResolveCmd("reject", "Reject a request", "Rejected", func(ctx context.Context, id int64) error {
		return store.UserRequests.Reject(ctx, id)
	}))
	return cmd
}

func requestsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List open requests",
		Annotations: routed("/contracts/requests"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.UserRequests.Fetch(cmd.Context()); err != nil {
				return err
			}
			l := listing[api.UserRequest]{Items: store.UserRequests.Items(), Pagination: store.UserRequests.Pagination()}
			return renderListing(cmd.OutOrStdout(), l, "ID\tTENANT\tROOM\tTYPE\tVALUE\tMESSAGE\tCREATED", "No open requests.", func(r api.UserRequest) string {
				return fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s\t%s",
					r.ID, r.UserName, r.RoomNumber, r.Type, r.RequestedValue, r.Message, formatDateTime(r.CreatedAt))
			})
		},
	}

	return cmd
}

func requestsResolveCmd(use, short, done string, resolve func(context.Context, int64) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:         use + " <id>",
		Short:       short,
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/contracts/requests"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := resolve(cmd.Context(), id); err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"id": id, "result": use})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s request #%d.\n", done, id)
			return nil
		},
	}

	return cmd
}
