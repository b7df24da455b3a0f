package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/event"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Manage events",
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		q := flagQuery(cmd.Flags(), map[string]string{
			"without-support": "without_support",
			"mine":            "mine",
			"upcoming":        "upcoming",
			"support":         "support_id",
			"client":          "client_id",
			"from":            "from",
			"to":              "to",
			"location":        "location",
			"name":            "name",
		})
		opts, err := event.ParseListOptions(q)
		if err != nil {
			return err
		}

		list, err := deps.Events.List(cmd.Context(), actor, opts)
		if err != nil {
			return err
		}
		now := time.Now()
		rows := make([][]string, 0, len(list))
		for _, e := range list {
			support := "-"
			if e.SupportID != nil {
				support = strconv.FormatInt(*e.SupportID, 10)
			}
			rows = append(rows, []string{
				strconv.FormatInt(e.ID, 10), e.Name, strconv.FormatInt(e.ClientID, 10), strconv.FormatInt(e.ContractID, 10),
				e.StartDate.Format("2006-01-02 15:04"), e.EndDate.Format("2006-01-02 15:04"),
				orDash(e.Location), strconv.FormatInt(e.Attendees, 10), support, e.Status(now),
			})
		}
		return table(cmd.OutOrStdout(), []string{"ID", "NAME", "CLIENT", "CONTRACT", "START", "END", "LOCATION", "ATTENDEES", "SUPPORT", "STATUS"}, rows)
	}),
}

var eventGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one event",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := deps.Events.Get(cmd.Context(), actor, id)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), e)
	}),
}

var eventCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an event for a signed contract",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		f := cmd.Flags()
		var dto event.CreateEventDTO
		dto.Name, _ = f.GetString("name")
		dto.ClientID, _ = f.GetInt64("client")
		dto.ContractID, _ = f.GetInt64("contract")
		dto.Location, _ = f.GetString("location")
		dto.Attendees, _ = f.GetInt64("attendees")
		dto.Notes, _ = f.GetString("notes")
		dto.SupportID = changedInt64(f, "support")

		start, err := changedTime(f, "start")
		if err != nil {
			return err
		}
		end, err := changedTime(f, "end")
		if err != nil {
			return err
		}
		if start == nil || end == nil {
			return internal.NewValidationFieldError("start", "--start and --end are required", internal.ErrCodeInvalidDate)
		}
		dto.StartDate, dto.EndDate = *start, *end

		e, err := deps.Events.Create(cmd.Context(), actor, dto)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created event %d (%s)\n", e.ID, e.Name)
		return nil
	}),
}

var eventUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an event",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		f := cmd.Flags()
		dto := event.UpdateEventDTO{
			Name:      changedString(f, "name"),
			Location:  changedString(f, "location"),
			Attendees: changedInt64(f, "attendees"),
			Notes:     changedString(f, "notes"),
		}
		if dto.StartDate, err = changedTime(f, "start"); err != nil {
			return err
		}
		if dto.EndDate, err = changedTime(f, "end"); err != nil {
			return err
		}
		e, err := deps.Events.Update(cmd.Context(), actor, id, dto)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated event %d\n", e.ID)
		return nil
	}),
}

var eventAssignSupportCmd = &cobra.Command{
	Use:   "assign-support <id> [support-id]",
	Short: "Assign a support contact; omit the id to clear it",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var dto event.AssignSupportDTO
		if len(args) == 2 {
			supportID, err := parseID(args[1])
			if err != nil {
				return err
			}
			dto.SupportID = &supportID
		}
		e, err := deps.Events.AssignSupport(cmd.Context(), actor, id, dto)
		if err != nil {
			return err
		}
		if e.SupportID == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Event %d has no support contact\n", e.ID)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Event %d assigned to support %d\n", e.ID, *e.SupportID)
		return nil
	}),
}

var eventDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := deps.Events.Delete(cmd.Context(), actor, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %d\n", id)
		return nil
	}),
}

var eventSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Event counts (assigned events for support)",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		s, err := deps.Reports.Events(cmd.Context(), actor)
		if err != nil {
			return err
		}
		return table(cmd.OutOrStdout(), []string{"METRIC", "VALUE"}, [][]string{
			{"events", strconv.FormatInt(s.Total, 10)},
			{"with support", strconv.FormatInt(s.WithSupport, 10)},
			{"without support", strconv.FormatInt(s.WithoutSupport, 10)},
			{"upcoming", strconv.FormatInt(s.Upcoming, 10)},
			{"ongoing", strconv.FormatInt(s.Ongoing, 10)},
			{"past", strconv.FormatInt(s.Past, 10)},
		})
	}),
}

func init() {
	f := eventListCmd.Flags()
	f.Bool("without-support", false, "only events without a support contact")
	f.Bool("mine", false, "events of my clients (sales) or assigned to me (support)")
	f.Int("upcoming", 0, "only events starting within N days")
	f.Int64("support", 0, "events assigned to this support id")
	f.Int64("client", 0, "events of this client id")
	f.String("from", "", "start on or after (YYYY-MM-DD or RFC3339)")
	f.String("to", "", "start on or before (YYYY-MM-DD or RFC3339)")
	f.String("location", "", "match on location")
	f.String("name", "", "match on name")

	for _, c := range []*cobra.Command{eventCreateCmd, eventUpdateCmd} {
		c.Flags().String("name", "", "event name")
		c.Flags().String("start", "", "start (YYYY-MM-DD or RFC3339)")
		c.Flags().String("end", "", "end (YYYY-MM-DD or RFC3339)")
		c.Flags().String("location", "", "venue")
		c.Flags().Int64("attendees", 0, "expected attendees")
		c.Flags().String("notes", "", "free text notes")
	}
	eventCreateCmd.Flags().Int64("client", 0, "client id")
	eventCreateCmd.Flags().Int64("contract", 0, "signed contract id")
	eventCreateCmd.Flags().Int64("support", 0, "support contact id (management only)")

	eventCmd.AddCommand(eventListCmd, eventGetCmd, eventCreateCmd, eventUpdateCmd,
		eventAssignSupportCmd, eventDeleteCmd, eventSummaryCmd)
}
