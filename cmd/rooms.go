package cmd

import (
	"fmt"
	"strings"

	"rentadm/api"

	"github.com/spf13/cobra"
)

func roomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Manage rooms",
	}

	cmd.AddCommand(roomsListCmd())
	cmd.AddCommand(roomsShowCmd())
	cmd.AddCommand(roomsCreateCmd())
	cmd.AddCommand(roomsUpdateCmd())
	cmd.AddCommand(roomsDeleteCmd())
	return cmd
}

func parseRoomStatus(raw string) (api.RoomStatus, error) {
	if raw == "" {
		return "", nil
	}
	switch s := api.RoomStatus(strings.ToUpper(raw)); s {
	case api.RoomAvailable, api.RoomRented, api.RoomMaintenance:
		return s, nil
	}
	return "", fmt.Errorf("invalid room status %q (want AVAILABLE, RENTED or MAINTENANCE)", raw)
}

func roomsListCmd() *cobra.Command {
	var q api.ListQuery
	var offline bool

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List rooms",
		Annotations: routed("/rooms"),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := parseRoomStatus(q.Status)
			if err != nil {
				return err
			}
			query := apiQuery(q)
			query.Status = string(status)
			l, err := loadListing(cmd.Context(), "rooms", query, offline, store.Rooms.Collection, store.Rooms.Fetch)
			if err != nil {
				return err
			}
			return renderListing(cmd.OutOrStdout(), l, "ID\tROOM\tBUILDING\tPRICE\tAREA\tSTATUS", "No rooms found.", func(r api.Room) string {
				return fmt.Sprintf("%d\t%s\t%d\t%s\t%.1f\t%s", r.ID, r.RoomNumber, r.BuildingID, formatMoney(r.Price), r.Area, r.Status)
			})
		},
	}

	listFlags(cmd, &q, &offline)
	cmd.Flags().Int64Var(&q.BuildingID, "building", 0, "Only rooms in this building")
	cmd.Flags().StringVar(&q.Status, "status", "", "AVAILABLE, RENTED or MAINTENANCE")
	return cmd
}

func roomsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "show <id>",
		Short:       "Show a room",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/rooms/edit/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := store.Rooms.FetchByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderDetail(cmd.OutOrStdout(), r, [][2]string{
				{"ID", fmt.Sprint(r.ID)},
				{"Room", r.RoomNumber},
				{"Building", fmt.Sprint(r.BuildingID)},
				{"Price", formatMoney(r.Price)},
				{"Area", fmt.Sprintf("%.1f", r.Area)},
				{"Status", string(r.Status)},
				{"Image", r.ImageURL},
			})
		},
	}

	return cmd
}

func roomFlags(cmd *cobra.Command, input *api.RoomInput, status *string, imagePath *string) {
	cmd.Flags().StringVar(&input.RoomNumber, "number", "", "Room number")
	cmd.Flags().Int64Var(&input.BuildingID, "building", 0, "Building id")
	cmd.Flags().Float64Var(&input.Price, "price", 0, "Monthly price")
	cmd.Flags().Float64Var(&input.Area, "area", 0, "Area in square metres")
	cmd.Flags().StringVar(status, "status", "", "AVAILABLE, RENTED or MAINTENANCE")
	cmd.Flags().StringVar(imagePath, "image", "", "Path to a room image")
}

func roomsCreateCmd() *cobra.Command {
	var input api.RoomInput
	var status string
	var imagePath string

	cmd := &cobra.Command{
		Use:         "create",
		Short:       "Create a room",
		Annotations: routed("/rooms/add"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.RoomNumber == "" || input.BuildingID <= 0 {
				return fmt.Errorf("--number and --building are required")
			}
			parsed, err := parseRoomStatus(status)
			if err != nil {
				return err
			}
			input.Status = parsed
			image, err := readOptionalFile(imagePath)
			if err != nil {
				return err
			}
			r, err := store.Rooms.Create(cmd.Context(), input, image)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created room #%d (%s).\n", r.ID, r.RoomNumber)
			return nil
		},
	}

	roomFlags(cmd, &input, &status, &imagePath)
	return cmd
}

func roomsUpdateCmd() *cobra.Command {
	var input api.RoomInput
	var status string
	var imagePath string

	cmd := &cobra.Command{
		Use:         "update <id>",
		Short:       "Update a room",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/rooms/edit/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := store.Rooms.FetchByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("number") {
				input.RoomNumber = current.RoomNumber
			}
			if !flags.Changed("building") {
				input.BuildingID = current.BuildingID
			}
			if !flags.Changed("price") {
				input.Price = current.Price
			}
			if !flags.Changed("area") {
				input.Area = current.Area
			}
			input.Status = current.Status
			if flags.Changed("status") {
				if input.Status, err = parseRoomStatus(status); err != nil {
					return err
				}
			}
			image, err := readOptionalFile(imagePath)
			if err != nil {
				return err
			}
			r, err := store.Rooms.Update(cmd.Context(), id, input, image)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated room #%d.\n", r.ID)
			return nil
		},
	}

	roomFlags(cmd, &input, &status, &imagePath)
	return cmd
}

func roomsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "delete <id>",
		Short:       "Delete a room",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/rooms"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := store.Rooms.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted room #%d.\n", id)
			return nil
		},
	}

	return cmd
}
