package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"snatch/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report api.StatusReport
			if _, err := ctx.getJSON("/api/status", nil, &report); err != nil {
				return err
			}

			pairs := [][2]string{
				{"Pending jobs", strconv.Itoa(report.Pending)},
				{"Uptime", (time.Duration(report.UptimeSeconds) * time.Second).String()},
			}
			if report.History != nil {
				pairs = append(pairs,
					[2]string{"Attempts", strconv.FormatInt(report.History.Total, 10)},
					[2]string{"Succeeded", strconv.FormatInt(report.History.Succeeded, 10)},
					[2]string{"Failed", strconv.FormatInt(report.History.Failed, 10)},
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderKV(pairs))
			return nil
		},
	}
}
