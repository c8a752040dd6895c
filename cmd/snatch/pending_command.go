package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"snatch/internal/api"
)

func newPendingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List jobs waiting for extraction",
		RunE: func(cmd *cobra.Command, args []string) error {
			var jobs []api.PendingJob
			if _, err := ctx.getJSON("/api/pending", nil, &jobs); err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending jobs.")
				return nil
			}

			rows := make([]table.Row, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, table.Row{
					shortKey(job.Key), job.Site, job.Kind, job.Format, job.Quality, job.URL,
				})
			}
			out := renderTable(table.Row{"KEY", "SITE", "KIND", "FORMAT", "QUALITY", "URL"}, rows)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
