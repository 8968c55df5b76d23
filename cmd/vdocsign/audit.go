package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Show your audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.client.AuditLogs(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "No audit entries.")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tACTION\tDOCUMENT\tUSER")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp.Format(time.RFC3339), e.Action, e.DocumentID, e.User)
			}
			return tw.Flush()
		},
	}
}
