package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/client"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage clients",
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		mine, _ := cmd.Flags().GetBool("mine")
		search, _ := cmd.Flags().GetString("search")
		clients, err := deps.Clients.List(cmd.Context(), actor, mine, search)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(clients))
		for _, c := range clients {
			rows = append(rows, []string{
				strconv.FormatInt(c.ID, 10), c.FullName, c.CompanyName, c.Email, orDash(c.Phone),
				strconv.FormatInt(c.CommercialID, 10), c.LastContact.Format("2006-01-02"),
			})
		}
		return table(cmd.OutOrStdout(), []string{"ID", "NAME", "COMPANY", "EMAIL", "PHONE", "COMMERCIAL", "LAST CONTACT"}, rows)
	}),
}

var clientGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one client",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := deps.Clients.Get(cmd.Context(), actor, id)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), c)
	}),
}

var clientCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a client",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		f := cmd.Flags()
		var dto client.CreateClientDTO
		dto.FullName, _ = f.GetString("name")
		dto.Email, _ = f.GetString("email")
		dto.Phone, _ = f.GetString("phone")
		dto.CompanyName, _ = f.GetString("company")
		dto.CommercialID, _ = f.GetInt64("commercial")

		c, err := deps.Clients.Create(cmd.Context(), actor, dto)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created client %d (%s)\n", c.ID, c.CompanyName)
		return nil
	}),
}

var clientUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a client",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		f := cmd.Flags()
		dto := client.UpdateClientDTO{
			FullName:     changedString(f, "name"),
			Email:        changedString(f, "email"),
			Phone:        changedString(f, "phone"),
			CompanyName:  changedString(f, "company"),
			CommercialID: changedInt64(f, "commercial"),
		}
		c, err := deps.Clients.Update(cmd.Context(), actor, id, dto)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated client %d\n", c.ID)
		return nil
	}),
}

var clientDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a client with its contracts and events",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := deps.Clients.Delete(cmd.Context(), actor, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted client %d\n", id)
		return nil
	}),
}

func init() {
	clientListCmd.Flags().Bool("mine", false, "only clients I am the commercial for")
	clientListCmd.Flags().String("search", "", "match on name or company")

	for _, c := range []*cobra.Command{clientCreateCmd, clientUpdateCmd} {
		c.Flags().String("name", "", "contact full name")
		c.Flags().String("email", "", "contact email")
		c.Flags().String("phone", "", "French phone number")
		c.Flags().String("company", "", "company name")
		c.Flags().Int64("commercial", 0, "id of the sales contact (management only when not yourself)")
	}

	clientCmd.AddCommand(clientListCmd, clientGetCmd, clientCreateCmd, clientUpdateCmd, clientDeleteCmd)
}
