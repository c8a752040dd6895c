package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newFlushCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Drop every pending job from the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := ctx.secretKey()
			if err != nil {
				return err
			}
			var result struct {
				Flushed int `json:"flushed"`
			}
			query := url.Values{"key": {key}}
			if _, err := ctx.getJSON("/cache/flush", query, &result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Flushed %d pending job(s).\n", result.Flushed)
			return nil
		},
	}
}
