package cmd

import (
	"fmt"

	"rentadm/api"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "dashboard",
		Short:       "Show occupancy, revenue and items needing attention",
		Annotations: routed("/dashboard"),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data api.Dashboard
			var unread int

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				data, err = store.Dashboard.Fetch(ctx)
				return err
			})
			g.Go(func() error {
				var err error
				unread, err = store.Notifications.FetchUnreadCount(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, struct {
					api.Dashboard
					UnreadNotifications int `json:"unreadNotifications"`
				}{data, unread})
			}

			s := data.Stats
			writer := newTable(out)
			fmt.Fprintf(writer, "Buildings:\t%d\n", s.TotalBuildings)
			fmt.Fprintf(writer, "Rooms:\t%d (%d rented, %d available)\n", s.TotalRooms, s.RentedRooms, s.AvailableRooms)
			fmt.Fprintf(writer, "Tenants:\t%d\n", s.TotalTenants)
			fmt.Fprintf(writer, "Expiring contracts:\t%d\n", s.ExpiringContracts)
			fmt.Fprintf(writer, "Unread notifications:\t%d\n", unread)
			if err := writer.Flush(); err != nil {
				return err
			}
			if outputCompact {
				return nil
			}

			if len(data.RevenueByMonth) > 0 {
				fmt.Fprintln(out, "\nRevenue")
				writer = newTable(out)
				for _, r := range data.RevenueByMonth {
					fmt.Fprintf(writer, "  %s\t%s\n", r.Month, formatMoney(r.TotalRevenue))
				}
				if err := writer.Flush(); err != nil {
					return err
				}
			}
			if err := printQuickList(cmd, "Contracts expiring soon", data.ExpiringContracts); err != nil {
				return err
			}
			return printQuickList(cmd, "Pending incidents", data.PendingIncidents)
		},
	}

	return cmd
}

func printQuickList(cmd *cobra.Command, title string, items []api.QuickListItem) error {
	if len(items) == 0 {
		return nil
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", title)
	writer := newTable(out)
	for _, item := range items {
		fmt.Fprintf(writer, "  #%d\t%s\t%s\t%s\n", item.ID, item.Title, item.Subtitle, formatDate(item.Date))
	}
	return writer.Flush()
}
