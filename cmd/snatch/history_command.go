package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"snatch/internal/history"
	"snatch/internal/media"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent extraction attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			var attempts []history.Attempt
			if _, err := ctx.getJSON("/api/history", query, &attempts); err != nil {
				return err
			}
			if len(attempts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded attempts.")
				return nil
			}

			rows := make([]table.Row, 0, len(attempts))
			for _, att := range attempts {
				outcome := "ok"
				if !att.Succeeded {
					outcome = fmt.Sprintf("exit %d", att.ExitCode)
				}
				quality := att.Quality
				if att.Kind == media.KindAudio {
					quality = media.AudioQualityLabel(att.Quality)
				}
				rows = append(rows, table.Row{
					att.FinishedAt.Local().Format("2006-01-02 15:04:05"),
					att.Site,
					att.Kind,
					att.Format,
					quality,
					outcome,
					shortKey(string(att.JobKey)),
				})
			}
			out := renderTable(table.Row{"FINISHED", "SITE", "KIND", "FORMAT", "QUALITY", "OUTCOME", "KEY"}, rows)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of attempts to show")
	return cmd
}
