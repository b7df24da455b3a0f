package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/frahmantamala/epic-events-crm/internal"
)

// describe renders an error for the terminal. Internal failures only show
// their generic message; the cause is already in the log.
func describe(err error) string {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		return "Error: " + err.Error()
	}

	var b strings.Builder
	b.WriteString("Error: " + appErr.Message)
	switch details := appErr.Details.(type) {
	case internal.ValidationErrors:
		for _, fe := range details.Errors {
			fmt.Fprintf(&b, "\n  - %s: %s", fe.Field, fe.Message)
		}
	case internal.PermissionDetails:
		if details.Reason != "" {
			b.WriteString(" (" + details.Reason + ")")
		}
	}
	return b.String()
}

// table writes aligned columns; rows are already formatted.
func table(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
