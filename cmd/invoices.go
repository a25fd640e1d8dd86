package cmd

import (
	"fmt"
	"strings"

	"rentadm/api"
	"rentadm/workflow"

	"github.com/spf13/cobra"
)

func invoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Review invoices and confirm payments",
	}

	cmd.AddCommand(invoicesListCmd())
	cmd.AddCommand(invoicesShowCmd())
	cmd.AddCommand(invoicesConfirmPaymentCmd())
	return cmd
}

func parseInvoiceStatus(raw string) (api.InvoiceStatus, error) {
	if raw == "" {
		return "", nil
	}
	switch s := api.InvoiceStatus(strings.ToUpper(raw)); s {
	case api.InvoicePending, api.InvoiceWaitingConfirmation, api.InvoicePaid, api.InvoiceOverdue:
		return s, nil
	}
	return "", fmt.Errorf("invalid invoice status %q", raw)
}

func invoicesListCmd() *cobra.Command {
	var q api.ListQuery
	var offline bool

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List invoices",
		Annotations: routed("/invoices"),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := parseInvoiceStatus(q.Status)
			if err != nil {
				return err
			}
			query := apiQuery(q)
			query.Status = string(status)
			l, err := loadListing(cmd.Context(), "invoices", query, offline, store.Invoices.Collection, store.Invoices.Fetch)
			if err != nil {
				return err
			}
			return renderListing(cmd.OutOrStdout(), l, "ID\tROOM\tTENANT\tPERIOD\tTOTAL\tDUE\tSTATUS", "No invoices found.", func(i api.Invoice) string {
				return fmt.Sprintf("%d\t%s\t%s\t%02d/%d\t%s\t%s\t%s",
					i.ID, i.RoomNumber, i.TenantName, i.PeriodMonth, i.PeriodYear, formatMoney(i.TotalAmount), formatDate(i.DueDate), i.Status)
			})
		},
	}

	listFlags(cmd, &q, &offline)
	cmd.Flags().StringVar(&q.Status, "status", "", "PENDING, WAITING_CONFIRMATION, PAID or OVERDUE")
	cmd.Flags().Int64Var(&q.BuildingID, "building", 0, "Only invoices for this building")
	cmd.Flags().Int64Var(&q.RoomID, "room", 0, "Only invoices for this room")
	return cmd
}

func invoicesShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "show <id>",
		Short:       "Show an invoice with its line items",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/invoices/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			inv, err := store.Invoices.FetchByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := renderDetail(out, inv, [][2]string{
				{"ID", fmt.Sprint(inv.ID)},
				{"Status", string(inv.Status)},
				{"Contract", fmt.Sprint(inv.ContractID)},
				{"Room", inv.RoomNumber},
				{"Tenant", inv.TenantName},
				{"Period", fmt.Sprintf("%02d/%d", inv.PeriodMonth, inv.PeriodYear)},
				{"Issued", formatDate(inv.IssueDate)},
				{"Due", formatDate(inv.DueDate)},
				{"Total", formatMoney(inv.TotalAmount)},
				{"Paid on", formatDate(inv.PaymentDate)},
				{"Receipt", inv.PaymentReceiptURL},
			}); err != nil {
				return err
			}
			if outputJSON {
				return nil
			}

			if len(inv.Details) > 0 && !outputCompact {
				fmt.Fprintln(out)
				writer := newTable(out)
				fmt.Fprintln(writer, "SERVICE\tDESCRIPTION\tAMOUNT")
				for _, d := range inv.Details {
					fmt.Fprintf(writer, "%s\t%s\t%s\n", d.ServiceType, d.Description, formatMoney(d.Amount))
				}
				if err := writer.Flush(); err != nil {
					return err
				}
			}
			if workflow.CanConfirmPayment(inv) {
				fmt.Fprintf(out, "Payment awaits confirmation: rentadm invoices confirm-payment %d\n", inv.ID)
			}
			return nil
		},
	}

	return cmd
}

func invoicesConfirmPaymentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "confirm-payment <id>",
		Short:       "Confirm a tenant's payment",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/invoices/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			inv, err := store.Invoices.ConfirmPayment(cmd.Context(), id)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), inv)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invoice #%d is now %s.\n", inv.ID, inv.Status)
			return nil
		},
	}

	return cmd
}
