package cmd

import (
	"fmt"

	"rentadm/api"

	"github.com/spf13/cobra"
)

func tenantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenants",
		Short: "Manage tenants",
	}

	cmd.AddCommand(tenantsListCmd())
	cmd.AddCommand(tenantsShowCmd())
	cmd.AddCommand(tenantsCreateCmd())
	cmd.AddCommand(tenantsUpdateCmd())
	cmd.AddCommand(tenantsDeleteCmd())
	return cmd
}

func tenantsListCmd() *cobra.Command {
	var q api.ListQuery
	var offline bool

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List tenants",
		Annotations: routed("/tenants"),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadListing(cmd.Context(), "tenants", apiQuery(q), offline, store.Tenants.Collection, store.Tenants.Fetch)
			if err != nil {
				return err
			}
			return renderListing(cmd.OutOrStdout(), l, "ID\tNAME\tPHONE\tCITIZEN ID\tEMAIL", "No tenants found.", func(t api.Tenant) string {
				return fmt.Sprintf("%d\t%s\t%s\t%s\t%s", t.ID, t.FullName, t.PhoneNumber, t.CitizenID, t.Email)
			})
		},
	}

	listFlags(cmd, &q, &offline)
	return cmd
}

func tenantsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "show <id>",
		Short:       "Show a tenant",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/tenants/edit/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := store.Tenants.FetchByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderDetail(cmd.OutOrStdout(), t, [][2]string{
				{"ID", fmt.Sprint(t.ID)},
				{"Name", t.FullName},
				{"Born", formatDate(t.DateOfBirth)},
				{"Phone", t.PhoneNumber},
				{"Email", t.Email},
				{"Citizen ID", t.CitizenID},
				{"Citizen ID image", t.CitizenIDImageURL},
				{"Address", t.PermanentAddress},
			})
		},
	}

	return cmd
}

func tenantFlags(cmd *cobra.Command, input *api.TenantInput, imagePath *string) {
	cmd.Flags().StringVar(&input.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&input.DateOfBirth, "born", "", "Date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&input.PhoneNumber, "phone", "", "Phone number")
	cmd.Flags().StringVar(&input.Email, "email", "", "Email, also the tenant's login")
	cmd.Flags().StringVar(&input.CitizenID, "citizen-id", "", "Citizen id number")
	cmd.Flags().StringVar(&input.PermanentAddress, "address", "", "Permanent address")
	cmd.Flags().StringVar(imagePath, "citizen-id-image", "", "Path to a scan of the citizen id")
}

func tenantsCreateCmd() *cobra.Command {
	var input api.TenantInput
	var imagePath string

	cmd := &cobra.Command{
		Use:         "create",
		Short:       "Create a tenant",
		Annotations: routed("/tenants/add"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.FullName == "" || input.PhoneNumber == "" || input.CitizenID == "" {
				return fmt.Errorf("--name, --phone and --citizen-id are required")
			}
			image, err := readOptionalFile(imagePath)
			if err != nil {
				return err
			}
			t, err := store.Tenants.Create(cmd.Context(), input, image)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tenant #%d (%s).\n", t.ID, t.FullName)
			return nil
		},
	}

	tenantFlags(cmd, &input, &imagePath)
	cmd.Flags().StringVar(&input.Password, "password", "", "Initial password for the tenant account")
	return cmd
}

func tenantsUpdateCmd() *cobra.Command {
	var input api.TenantInput
	var imagePath string

	cmd := &cobra.Command{
		Use:         "update <id>",
		Short:       "Update a tenant",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/tenants/edit/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := store.Tenants.FetchByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			keep := func(name string, dst *string, value string) {
				if !flags.Changed(name) {
					*dst = value
				}
			}
			keep("name", &input.FullName, current.FullName)
			keep("born", &input.DateOfBirth, current.DateOfBirth)
			keep("phone", &input.PhoneNumber, current.PhoneNumber)
			keep("email", &input.Email, current.Email)
			keep("citizen-id", &input.CitizenID, current.CitizenID)
			keep("address", &input.PermanentAddress, current.PermanentAddress)

			image, err := readOptionalFile(imagePath)
			if err != nil {
				return err
			}
			t, err := store.Tenants.Update(cmd.Context(), id, input, image)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated tenant #%d.\n", t.ID)
			return nil
		},
	}

	tenantFlags(cmd, &input, &imagePath)
	return cmd
}

func tenantsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "delete <id>",
		Short:       "Delete a tenant",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/tenants"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := store.Tenants.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted tenant #%d.\n", id)
			return nil
		},
	}

	return cmd
}
