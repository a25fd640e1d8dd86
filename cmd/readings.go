package cmd

import (
	"context"
	"fmt"
	"time"

	"rentadm/api"
	"rentadm/workflow"

	"github.com/spf13/cobra"
)

func readingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readings",
		Short: "Record meter readings and bill them",
	}

	cmd.AddCommand(readingsListCmd())
	cmd.AddCommand(readingsRecordCmd())
	cmd.AddCommand(readingsGenerateInvoiceCmd())
	return cmd
}

func readingsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "list <room-id>",
		Short:       "Show a room's reading history",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/meter-readings/history/:roomId"),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := store.MeterReadings.Fetch(cmd.Context(), roomID); err != nil {
				return err
			}
			readings := store.MeterReadings.Items()
			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, readings)
			}
			if len(readings) == 0 {
				fmt.Fprintln(out, "No readings recorded for this room.")
				return nil
			}

			writer := newTable(out)
			if !outputCompact {
				fmt.Fprintln(writer, "ID\tPERIOD\tELECTRIC\tUSED\tWATER\tUSED\tINVOICE")
			}
			for _, r := range readings {
				invoice := fmt.Sprintf("rentadm readings generate-invoice %d %d", roomID, r.ID)
				if !workflow.CanGenerateInvoice(r) {
					invoice = "already generated"
				}
				fmt.Fprintf(writer, "%d\t%02d/%d\t%.0f -> %.0f\t%.0f\t%.0f -> %.0f\t%.0f\t%s\n",
					r.ID, r.ReadingMonth, r.ReadingYear,
					r.OldElectricNumber, r.NewElectricNumber, r.ElectricConsumption,
					r.OldWaterNumber, r.NewWaterNumber, r.WaterConsumption,
					invoice)
			}
			return writer.Flush()
		},
	}

	return cmd
}

func readingsRecordCmd() *cobra.Command {
	var input api.MeterReadingInput
	var electricPath string
	var waterPath string

	cmd := &cobra.Command{
		Use:         "record <room-id>",
		Short:       "Record this month's meter numbers for a room",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/meter-readings"),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("electric") || !cmd.Flags().Changed("water") {
				return fmt.Errorf("--electric and --water are required")
			}
			if input.ReadingMonth < 1 || input.ReadingMonth > 12 {
				return fmt.Errorf("--month must be between 1 and 12")
			}
			electric, err := readOptionalFile(electricPath)
			if err != nil {
				return err
			}
			water, err := readOptionalFile(waterPath)
			if err != nil {
				return err
			}
			r, err := store.MeterReadings.Record(cmd.Context(), roomID, input, electric, water)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded reading #%d for %02d/%d: electric %.0f, water %.0f.\n",
				r.ID, r.ReadingMonth, r.ReadingYear, r.ElectricConsumption, r.WaterConsumption)
			return nil
		},
	}

	now := time.Now()
	cmd.Flags().IntVar(&input.ReadingMonth, "month", int(now.Month()), "Reading month")
	cmd.Flags().IntVar(&input.ReadingYear, "year", now.Year(), "Reading year")
	cmd.Flags().Float64Var(&input.NewElectricNumber, "electric", 0, "Current electricity meter number")
	cmd.Flags().Float64Var(&input.NewWaterNumber, "water", 0, "Current water meter number")
	cmd.Flags().StringVar(&electricPath, "electric-image", "", "Photo of the electricity meter")
	cmd.Flags().StringVar(&waterPath, "water-image", "", "Photo of the water meter")
	return cmd
}

func readingsGenerateInvoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "generate-invoice <room-id> <reading-id>",
		Short:       "Issue the invoice for a reading",
		Args:        cobra.ExactArgs(2),
		Annotations: routed("/meter-readings"),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := parseID(args[0])
			if err != nil {
				return err
			}
			readingID, err := parseID(args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if err := store.MeterReadings.Fetch(ctx, roomID); err != nil {
				return err
			}
			reading, ok := store.MeterReadings.ByID(readingID)
			if !ok {
				return fmt.Errorf("reading #%d not found for room #%d", readingID, roomID)
			}
			if !workflow.CanGenerateInvoice(reading) {
				return fmt.Errorf("%w: reading #%d", workflow.ErrInvoiceAlreadyGenerated, reading.ID)
			}

			contracts, err := activeContracts(ctx, roomID)
			if err != nil {
				return err
			}
			if err := store.Settings.Fetch(ctx); err != nil {
				return err
			}
			req, err := workflow.PrepareInvoice(reading, contracts, store.Settings.Items())
			if err != nil {
				return err
			}

			inv, err := store.MeterReadings.GenerateInvoice(ctx, reading, req)
			if err != nil && inv.ID == 0 {
				return err
			}
			if err != nil {
				logger.Warn("invoice issued but reading history reload failed", "err", err)
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), inv)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Issued invoice #%d for %02d/%d: %s.\n", inv.ID, req.PeriodMonth, req.PeriodYear, formatMoney(inv.TotalAmount))
			return nil
		},
	}

	return cmd
}

// activeContracts pages through ACTIVE contracts until one for roomID turns
// up.
func activeContracts(ctx context.Context, roomID int64) ([]api.Contract, error) {
	q := api.ListQuery{Status: string(api.ContractActive), Size: 50}
	for {
		if err := store.Contracts.Fetch(ctx, q); err != nil {
			return nil, err
		}
		items := store.Contracts.Items()
		if _, ok := workflow.ActiveContractForRoom(items, roomID); ok {
			return items, nil
		}
		if q.Page+1 >= store.Contracts.Pagination().TotalPages {
			return items, nil
		}
		q.Page++
	}
}
