package cmd

import (
	"fmt"

	"rentadm/api"

	"github.com/spf13/cobra"
)

func buildingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buildings",
		Short: "Manage buildings",
	}

	cmd.AddCommand(buildingsListCmd())
	cmd.AddCommand(buildingsShowCmd())
	cmd.AddCommand(buildingsCreateCmd())
	cmd.AddCommand(buildingsUpdateCmd())
	cmd.AddCommand(buildingsDeleteCmd())
	return cmd
}

func buildingsListCmd() *cobra.Command {
	var q api.ListQuery
	var offline bool

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List buildings",
		Annotations: routed("/buildings"),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadListing(cmd.Context(), "buildings", apiQuery(q), offline, store.Buildings.Collection, store.Buildings.Fetch)
			if err != nil {
				return err
			}
			return renderListing(cmd.OutOrStdout(), l, "ID\tNAME\tADDRESS", "No buildings found.", func(b api.Building) string {
				return fmt.Sprintf("%d\t%s\t%s", b.ID, b.Name, b.Address)
			})
		},
	}

	listFlags(cmd, &q, &offline)
	return cmd
}

func buildingsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "show <id>",
		Short:       "Show a building",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/buildings/edit/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := store.Buildings.FetchByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderDetail(cmd.OutOrStdout(), b, buildingFields(b))
		},
	}

	return cmd
}

func buildingFields(b api.Building) [][2]string {
	return [][2]string{
		{"ID", fmt.Sprint(b.ID)},
		{"Name", b.Name},
		{"Address", b.Address},
		{"Image", b.ImageURL},
	}
}

func buildingsCreateCmd() *cobra.Command {
	var input api.BuildingInput
	var imagePath string

	cmd := &cobra.Command{
		Use:         "create",
		Short:       "Create a building",
		Annotations: routed("/buildings/add"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.Name == "" || input.Address == "" {
				return fmt.Errorf("--name and --address are required")
			}
			image, err := readOptionalFile(imagePath)
			if err != nil {
				return err
			}
			b, err := store.Buildings.Create(cmd.Context(), input, image)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), b)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created building #%d (%s).\n", b.ID, b.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "Building name")
	cmd.Flags().StringVar(&input.Address, "address", "", "Street address")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a cover image")
	return cmd
}

func buildingsUpdateCmd() *cobra.Command {
	var input api.BuildingInput
	var imagePath string

	cmd := &cobra.Command{
		Use:         "update <id>",
		Short:       "Update a building",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/buildings/edit/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := store.Buildings.FetchByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("name") {
				input.Name = current.Name
			}
			if !cmd.Flags().Changed("address") {
				input.Address = current.Address
			}
			image, err := readOptionalFile(imagePath)
			if err != nil {
				return err
			}
			b, err := store.Buildings.Update(cmd.Context(), id, input, image)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), b)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated building #%d.\n", b.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "Building name")
	cmd.Flags().StringVar(&input.Address, "address", "", "Street address")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a new cover image")
	return cmd
}

func buildingsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "delete <id>",
		Short:       "Delete a building",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/buildings"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := store.Buildings.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted building #%d.\n", id)
			return nil
		},
	}

	return cmd
}
