package cmd

import (
	"fmt"
	"strings"

	"rentadm/api"
	"rentadm/workflow"

	"github.com/spf13/cobra"
)

var contractStatuses = []api.ContractStatus{
	api.ContractDraft, api.ContractWaitingSignatures, api.ContractActive,
	api.ContractPendingTermination, api.ContractTerminated, api.ContractExpired,
}

func contractsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "Manage lease contracts",
	}

	cmd.AddCommand(contractsListCmd())
	cmd.AddCommand(contractsShowCmd())
	cmd.AddCommand(contractsCreateCmd())
	cmd.AddCommand(contractsDeleteCmd())
	cmd.AddCommand(contractsParseFileCmd())
	cmd.AddCommand(contractsUploadCmd())
	for _, action := range []workflow.Action{
		workflow.ActionSendForSigning,
		workflow.ActionApproveSignature,
		workflow.ActionRequestTermination,
		workflow.ActionConfirmTermination,
	} {
		cmd.AddCommand(contractTransitionCmd(action))
	}
	cmd.AddCommand(contractsDoCmd())
	return cmd
}

func parseContractStatus(raw string) (api.ContractStatus, error) {
	if raw == "" {
		return "", nil
	}
	needle := api.ContractStatus(strings.ToUpper(raw))
	for _, s := range contractStatuses {
		if s == needle {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid contract status %q", raw)
}

func contractsListCmd() *cobra.Command {
	var q api.ListQuery
	var offline bool

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List contracts",
		Annotations: routed("/contracts"),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := parseContractStatus(q.Status)
			if err != nil {
				return err
			}
			query := apiQuery(q)
			query.Status = string(status)
			l, err := loadListing(cmd.Context(), "contracts", query, offline, store.Contracts.Collection, store.Contracts.Fetch)
			if err != nil {
				return err
			}
			return renderListing(cmd.OutOrStdout(), l, "ID\tROOM\tTENANT\tSTART\tEND\tRENT\tSTATUS", "No contracts found.", func(c api.Contract) string {
				return fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s\t%s",
					c.ID, c.RoomNumber, c.TenantName, formatDate(c.StartDate), formatDate(c.EndDate), formatMoney(c.RentAmount), c.Status)
			})
		},
	}

	listFlags(cmd, &q, &offline)
	cmd.Flags().StringVar(&q.Status, "status", "", "Filter by status, e.g. ACTIVE")
	return cmd
}

func contractsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "show <id>",
		Short:       "Show a contract and the actions it allows",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/contracts/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := store.Contracts.FetchByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			actions := workflow.ContractActions(c)
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					api.Contract
					Actions []workflow.Action `json:"actions"`
				}{c, actions})
			}
			if err := renderDetail(cmd.OutOrStdout(), c, contractFields(c)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatActions(c.ID, actions))
			return nil
		},
	}

	return cmd
}

func contractFields(c api.Contract) [][2]string {
	return [][2]string{
		{"ID", fmt.Sprint(c.ID)},
		{"Status", string(c.Status)},
		{"Room", fmt.Sprintf("%s (#%d)", c.RoomNumber, c.RoomID)},
		{"Tenant", fmt.Sprintf("%s (#%d)", c.TenantName, c.TenantID)},
		{"Period", fmt.Sprintf("%s to %s", formatDate(c.StartDate), formatDate(c.EndDate))},
		{"Rent", formatMoney(c.RentAmount)},
		{"Deposit", formatMoney(c.DepositAmount)},
		{"Payment cycle", fmt.Sprintf("%d month(s)", c.PaymentCycle)},
		{"Contract file", c.ContractFileURL},
		{"Tenant signature", c.TenantSignatureURL},
		{"Owner signature", c.OwnerSignatureURL},
	}
}

func formatActions(id int64, actions []workflow.Action) string {
	if len(actions) == 0 {
		return "No further actions."
	}
	lines := []string{"Actions:"}
	for _, a := range actions {
		if a == workflow.ActionUploadFile {
			lines = append(lines, fmt.Sprintf("  rentadm contracts upload %d --file <path>", id))
			continue
		}
		lines = append(lines, fmt.Sprintf("  rentadm contracts %s %d", a, id))
	}
	return strings.Join(lines, "\n")
}

func contractsCreateCmd() *cobra.Command {
	var input api.ContractInput
	var fromFile string

	cmd := &cobra.Command{
		Use:         "create",
		Short:       "Create a draft contract",
		Annotations: routed("/contracts/add"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromFile != "" {
				file, err := api.ReadFile(fromFile)
				if err != nil {
					return err
				}
				draft, err := store.Contracts.ParseFile(cmd.Context(), file)
				if err != nil {
					return err
				}
				mergeDraft(cmd, &input, draft)
			}
			if input.RoomID <= 0 || input.TenantID <= 0 || input.StartDate == "" || input.EndDate == "" {
				return fmt.Errorf("--room, --tenant, --start and --end are required")
			}
			c, err := store.Contracts.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created contract #%d (%s).\n", c.ID, c.Status)
			return nil
		},
	}

	contractInputFlags(cmd, &input)
	cmd.Flags().StringVar(&fromFile, "from-file", "", "Prefill from a contract document parsed by the backend")
	return cmd
}

func contractInputFlags(cmd *cobra.Command, input *api.ContractInput) {
	cmd.Flags().Int64Var(&input.RoomID, "room", 0, "Room id")
	cmd.Flags().Int64Var(&input.TenantID, "tenant", 0, "Tenant id")
	cmd.Flags().StringVar(&input.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&input.EndDate, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&input.RentAmount, "rent", 0, "Monthly rent")
	cmd.Flags().Float64Var(&input.DepositAmount, "deposit", 0, "Deposit")
	cmd.Flags().IntVar(&input.PaymentCycle, "payment-cycle", 1, "Months per payment")
}

// mergeDraft fills the fields the user did not set from a parsed draft.
func mergeDraft(cmd *cobra.Command, input *api.ContractInput, draft api.ContractInput) {
	flags := cmd.Flags()
	if !flags.Changed("room") {
		input.RoomID = draft.RoomID
	}
	if !flags.Changed("tenant") {
		input.TenantID = draft.TenantID
	}
	if !flags.Changed("start") {
		input.StartDate = draft.StartDate
	}
	if !flags.Changed("end") {
		input.EndDate = draft.EndDate
	}
	if !flags.Changed("rent") {
		input.RentAmount = draft.RentAmount
	}
	if !flags.Changed("deposit") {
		input.DepositAmount = draft.DepositAmount
	}
	if !flags.Changed("payment-cycle") && draft.PaymentCycle > 0 {
		input.PaymentCycle = draft.PaymentCycle
	}
}

func contractsParseFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "parse-file <path>",
		Short:       "Extract a draft contract from a document",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/contracts/add"),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := api.ReadFile(args[0])
			if err != nil {
				return err
			}
			draft, err := store.Contracts.ParseFile(cmd.Context(), file)
			if err != nil {
				return err
			}
			return renderDetail(cmd.OutOrStdout(), draft, [][2]string{
				{"Room", fmt.Sprint(draft.RoomID)},
				{"Tenant", fmt.Sprint(draft.TenantID)},
				{"Start", draft.StartDate},
				{"End", draft.EndDate},
				{"Rent", formatMoney(draft.RentAmount)},
				{"Deposit", formatMoney(draft.DepositAmount)},
				{"Payment cycle", fmt.Sprint(draft.PaymentCycle)},
			})
		},
	}

	return cmd
}

func contractsUploadCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:         "upload <id>",
		Short:       "Attach the signed contract document",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/contracts/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if path == "" {
				return fmt.Errorf("--file is required")
			}
			file, err := api.ReadFile(path)
			if err != nil {
				return err
			}
			c, err := store.Contracts.UploadFile(cmd.Context(), id, file)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s to contract #%d.\n", file.Name, c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "Path to the document")
	return cmd
}

func contractTransitionCmd(action workflow.Action) *cobra.Command {
	short := map[workflow.Action]string{
		workflow.ActionSendForSigning:     "Send a draft contract to the tenant for signing",
		workflow.ActionApproveSignature:   "Approve the tenant's signature and activate the contract",
		workflow.ActionRequestTermination: "Request termination of an active contract",
		workflow.ActionConfirmTermination: "Confirm a pending termination",
	}

	cmd := &cobra.Command{
		Use:         string(action) + " <id>",
		Short:       short[action],
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/contracts/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runTransition(cmd, id, action)
		},
	}

	return cmd
}

func contractsDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "do <id> <action>",
		Short:       "Apply a workflow action by name, e.g. from a script",
		Args:        cobra.ExactArgs(2),
		Annotations: routed("/contracts/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			action, err := workflow.ParseAction(args[1])
			if err != nil {
				return err
			}
			if action == workflow.ActionUploadFile {
				return fmt.Errorf("%s needs a document: use rentadm contracts upload %d --file <path>", action, id)
			}
			return runTransition(cmd, id, action)
		},
	}

	return cmd
}

func runTransition(cmd *cobra.Command, id int64, action workflow.Action) error {
	c, err := store.Contracts.Transition(cmd.Context(), id, action)
	if err != nil {
		return err
	}
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), c)
	}
	fmt.Fprintln(cmd.OutOrStdout(), transitionSummary(c, action))
	return nil
}

// transitionSummary flags a backend that answered with a status the action
// does not lead to.
func transitionSummary(c api.Contract, action workflow.Action) string {
	msg := fmt.Sprintf("Contract #%d is now %s.", c.ID, c.Status)
	if want, ok := workflow.TargetStatus(action); ok && want != c.Status {
		msg += fmt.Sprintf(" Expected %s after %s.", want, action)
	}
	return msg
}

func contractsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "delete <id>",
		Short:       "Delete a contract",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/contracts"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := store.Contracts.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted contract #%d.\n", id)
			return nil
		},
	}

	return cmd
}
