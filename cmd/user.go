package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/user"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage employees (management only)",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		department, _ := cmd.Flags().GetString("department")
		users, err := deps.Users.List(cmd.Context(), actor, department)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.EmployeeID, u.FullName, u.Email, string(u.Role)})
		}
		return table(cmd.OutOrStdout(), []string{"ID", "EMPLOYEE", "NAME", "EMAIL", "DEPARTMENT"}, rows)
	}),
}

var userGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one employee",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		u, err := deps.Users.Get(cmd.Context(), actor, id)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), u)
	}),
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an employee",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		f := cmd.Flags()
		dto := user.CreateUserDTO{}
		dto.EmployeeID, _ = f.GetString("employee-id")
		dto.FullName, _ = f.GetString("name")
		dto.Email, _ = f.GetString("email")
		dto.Department, _ = f.GetString("department")
		dto.Password, _ = f.GetString("password")
		if dto.Password == "" {
			pw, err := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).password("Password for new user: ")
			if err != nil {
				return err
			}
			dto.Password = pw
		}

		u, err := deps.Users.Create(cmd.Context(), actor, dto)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s, %s)\n", u.ID, u.Email, u.Role)
		return nil
	}),
}

var userUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an employee's details",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		f := cmd.Flags()
		dto := user.UpdateUserDTO{
			EmployeeID: changedString(f, "employee-id"),
			FullName:   changedString(f, "name"),
			Email:      changedString(f, "email"),
			Password:   changedString(f, "password"),
		}
		u, err := deps.Users.Update(cmd.Context(), actor, id, dto)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated user %d\n", u.ID)
		return nil
	}),
}

var userSetRoleCmd = &cobra.Command{
	Use:   "set-role <id> <MANAGEMENT|SALES|SUPPORT>",
	Short: "Move an employee to another department",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		u, err := deps.Users.ChangeRole(cmd.Context(), actor, id, user.ChangeRoleDTO{Department: args[1]})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "User %d is now %s\n", u.ID, u.Role)
		return nil
	}),
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an employee",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := deps.Users.Delete(cmd.Context(), actor, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d\n", id)
		return nil
	}),
}

var userSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Headcount by department",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		summary, err := deps.Reports.Users(cmd.Context(), actor)
		if err != nil {
			return err
		}
		departments := make([]string, 0, len(summary.ByDepartment))
		for d := range summary.ByDepartment {
			departments = append(departments, d)
		}
		sort.Strings(departments)

		rows := make([][]string, 0, len(departments)+1)
		for _, d := range departments {
			rows = append(rows, []string{d, strconv.FormatInt(summary.ByDepartment[d], 10)})
		}
		rows = append(rows, []string{"TOTAL", strconv.FormatInt(summary.Total, 10)})
		return table(cmd.OutOrStdout(), []string{"DEPARTMENT", "USERS"}, rows)
	}),
}

func init() {
	userListCmd.Flags().String("department", "", "only list one department")

	for _, c := range []*cobra.Command{userCreateCmd, userUpdateCmd} {
		c.Flags().String("employee-id", "", "employee number")
		c.Flags().String("name", "", "full name")
		c.Flags().String("email", "", "email address")
		c.Flags().String("password", "", "password (prompted on create when empty)")
	}
	userCreateCmd.Flags().String("department", "", "MANAGEMENT, SALES or SUPPORT")

	userCmd.AddCommand(userListCmd, userGetCmd, userCreateCmd, userUpdateCmd, userSetRoleCmd, userDeleteCmd, userSummaryCmd)
}
