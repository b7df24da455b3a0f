package cmd

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/contract"
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Manage contracts",
}

var contractListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contracts",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		f := cmd.Flags()
		q := flagQuery(f, map[string]string{
			"signed":      "signed",
			"unpaid":      "unpaid",
			"mine":        "mine",
			"client-name": "client_name",
			"min-amount":  "min_amount",
			"max-amount":  "max_amount",
		})
		if unsigned, _ := f.GetBool("unsigned"); unsigned {
			if q.Get("signed") == "true" {
				return internal.NewValidationFieldError("unsigned", "--signed and --unsigned are exclusive", internal.ErrCodeValidationFailed)
			}
			q.Set("signed", "false")
		}
		filter, mine, err := contract.ParseFilter(q)
		if err != nil {
			return err
		}

		contracts, err := deps.Contracts.List(cmd.Context(), actor, filter, mine)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(contracts))
		for _, c := range contracts {
			rows = append(rows, []string{
				strconv.FormatInt(c.ID, 10), strconv.FormatInt(c.ClientID, 10), strconv.FormatInt(c.CommercialID, 10),
				c.TotalAmount.StringFixed(2), c.RemainingAmount.StringFixed(2), strconv.FormatBool(c.IsSigned),
			})
		}
		return table(cmd.OutOrStdout(), []string{"ID", "CLIENT", "COMMERCIAL", "TOTAL", "REMAINING", "SIGNED"}, rows)
	}),
}

var contractGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one contract",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := deps.Contracts.Get(cmd.Context(), actor, id)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), c)
	}),
}

var contractCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a contract for a client",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		f := cmd.Flags()
		var dto contract.CreateContractDTO
		dto.ClientID, _ = f.GetInt64("client")
		dto.IsSigned, _ = f.GetBool("signed")

		total, err := changedDecimal(f, "total")
		if err != nil {
			return err
		}
		if total == nil {
			return internal.NewValidationFieldError("total", "--total is required", internal.ErrCodeValidationFailed)
		}
		dto.TotalAmount = *total
		if dto.RemainingAmount, err = changedDecimal(f, "remaining"); err != nil {
			return err
		}

		c, err := deps.Contracts.Create(cmd.Context(), actor, dto)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created contract %d for client %d\n", c.ID, c.ClientID)
		return nil
	}),
}

var contractUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change contract amounts",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var dto contract.UpdateContractDTO
		if dto.TotalAmount, err = changedDecimal(cmd.Flags(), "total"); err != nil {
			return err
		}
		if dto.RemainingAmount, err = changedDecimal(cmd.Flags(), "remaining"); err != nil {
			return err
		}
		c, err := deps.Contracts.Update(cmd.Context(), actor, id, dto)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated contract %d\n", c.ID)
		return nil
	}),
}

var contractSignCmd = &cobra.Command{
	Use:   "sign <id>",
	Short: "Mark a contract as signed",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := deps.Contracts.Sign(cmd.Context(), actor, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Contract %d is signed\n", c.ID)
		return nil
	}),
}

var contractPayCmd = &cobra.Command{
	Use:   "pay <id> <amount>",
	Short: "Record a payment against a contract",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return internal.NewValidationFieldError("amount", fmt.Sprintf("%q is not a valid amount", args[1]), internal.ErrCodeInvalidAmount)
		}
		c, err := deps.Contracts.Pay(cmd.Context(), actor, id, contract.PaymentDTO{Amount: amount})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Contract %d: %s remaining\n", c.ID, c.RemainingAmount.StringFixed(2))
		return nil
	}),
}

var contractDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a contract and its events",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := deps.Contracts.Delete(cmd.Context(), actor, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted contract %d\n", id)
		return nil
	}),
}

var contractSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Contract totals (own contracts for sales)",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		s, err := deps.Reports.Contracts(cmd.Context(), actor)
		if err != nil {
			return err
		}
		return table(cmd.OutOrStdout(), []string{"METRIC", "VALUE"}, [][]string{
			{"contracts", strconv.FormatInt(s.Total, 10)},
			{"signed", strconv.FormatInt(s.Signed, 10)},
			{"unsigned", strconv.FormatInt(s.Unsigned, 10)},
			{"total amount", s.TotalAmount.StringFixed(2)},
			{"paid", s.PaidAmount.StringFixed(2)},
			{"remaining", s.RemainingAmount.StringFixed(2)},
		})
	}),
}

func init() {
	f := contractListCmd.Flags()
	f.Bool("signed", false, "only signed contracts")
	f.Bool("unsigned", false, "only unsigned contracts")
	f.Bool("unpaid", false, "only contracts with an amount remaining")
	f.Bool("mine", false, "only contracts I am the commercial for")
	f.String("client-name", "", "match on client name or company")
	f.String("min-amount", "", "minimum total amount")
	f.String("max-amount", "", "maximum total amount")

	contractCreateCmd.Flags().Int64("client", 0, "client id")
	contractCreateCmd.Flags().Bool("signed", false, "create as signed")
	for _, c := range []*cobra.Command{contractCreateCmd, contractUpdateCmd} {
		c.Flags().String("total", "", "total amount")
		c.Flags().String("remaining", "", "remaining amount (defaults to total on create)")
	}

	contractCmd.AddCommand(contractListCmd, contractGetCmd, contractCreateCmd, contractUpdateCmd,
		contractSignCmd, contractPayCmd, contractDeleteCmd, contractSummaryCmd)
}
