package cmd

import (
	"fmt"

	"rentadm/api"
	"rentadm/workflow"

	"github.com/spf13/cobra"
)

func incidentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incidents",
		Short: "Track reported incidents",
	}

	cmd.AddCommand(incidentsListCmd())
	cmd.AddCommand(incidentsUpdateStatusCmd())
	cmd.AddCommand(incidentsDeleteCmd())
	return cmd
}

func incidentsListCmd() *cobra.Command {
	var q api.ListQuery
	var offline bool
	var buildingID int64

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List incidents",
		Annotations: routed("/incidents"),
		RunE: func(cmd *cobra.Command, args []string) error {
			row := func(i api.Incident) string {
				return fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s",
					i.ID, i.Title, i.RoomNumber, i.Priority, i.Status, formatDateTime(i.ReportedAt))
			}
			const header = "ID\tTITLE\tROOM\tPRIORITY\tSTATUS\tREPORTED"

			if buildingID > 0 {
				if err := store.Incidents.FetchByBuilding(cmd.Context(), buildingID); err != nil {
					return err
				}
				l := listing[api.Incident]{Items: store.Incidents.Items(), Pagination: store.Incidents.Pagination()}
				return renderListing(cmd.OutOrStdout(), l, header, "No incidents for this building.", row)
			}

			l, err := loadListing(cmd.Context(), "incidents", apiQuery(q), offline, store.Incidents.Collection, store.Incidents.Fetch)
			if err != nil {
				return err
			}
			return renderListing(cmd.OutOrStdout(), l, header, "No incidents found.", row)
		},
	}

	listFlags(cmd, &q, &offline)
	cmd.Flags().Int64Var(&buildingID, "building", 0, "All incidents of one building (unpaged)")
	return cmd
}

func incidentsUpdateStatusCmd() *cobra.Command {
	var status string
	var priority string

	cmd := &cobra.Command{
		Use:         "update-status <id>",
		Short:       "Move an incident to a new status",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/incidents"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := workflow.ParseIncidentStatus(status)
			if err != nil {
				return err
			}
			p, err := workflow.ParseIncidentPriority(priority)
			if err != nil {
				return err
			}
			inc, err := store.Incidents.UpdateStatus(cmd.Context(), id, api.IncidentStatusUpdate{Status: s, Priority: p})
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), inc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Incident #%d is now %s (%s).\n", inc.ID, inc.Status, inc.Priority)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "REPORTED, IN_PROGRESS, RESOLVED or CLOSED")
	cmd.Flags().StringVar(&priority, "priority", "", "LOW, MEDIUM, HIGH or CRITICAL")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func incidentsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "delete <id>",
		Short:       "Delete an incident",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/incidents"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := store.Incidents.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted incident #%d.\n", id)
			return nil
		},
	}

	return cmd
}
