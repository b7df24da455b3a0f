package cmd

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/epic-events-crm/internal/audit"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail (management only)",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit entries",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		f := cmd.Flags()
		var filter audit.Filter
		filter.UserID, _ = f.GetInt64("user")
		filter.Action, _ = f.GetString("action")
		filter.EntityType, _ = f.GetString("entity")
		filter.Limit, _ = f.GetInt("limit")
		if f.Changed("since") {
			since, _ := f.GetDuration("since")
			t := time.Now().Add(-since)
			filter.Since = &t
		}

		entries, err := deps.Audit.List(cmd.Context(), actor, filter)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			entity := "-"
			if e.EntityType != "" {
				entity = e.EntityType + ":" + strconv.FormatInt(e.EntityID, 10)
			}
			rows = append(rows, []string{e.Timestamp.Format(time.RFC3339), orDash(e.Username), e.Action, entity})
		}
		return table(cmd.OutOrStdout(), []string{"TIME", "USER", "ACTION", "ENTITY"}, rows)
	}),
}

func init() {
	f := auditListCmd.Flags()
	f.Int64("user", 0, "only entries by this user id")
	f.String("action", "", "action name, or a prefix ending in '.' such as 'client.'")
	f.String("entity", "", "entity type (user, client, contract, event)")
	f.Duration("since", 0, "only entries newer than this, e.g. 24h")
	f.Int("limit", 0, "maximum entries (default 50)")

	auditCmd.AddCommand(auditListCmd)
}
