package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newCookiesCommand(ctx *commandContext) *cobra.Command {
	cookiesCmd := &cobra.Command{
		Use:   "cookies",
		Short: "Manage site cookie files",
	}

	cookiesCmd.AddCommand(newCookiesUploadCommand(ctx))
	cookiesCmd.AddCommand(newCookiesClearCommand(ctx))

	return cookiesCmd
}

func newCookiesUploadCommand(ctx *commandContext) *cobra.Command {
	var site string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a Netscape cookie file for a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			site = strings.ToLower(strings.TrimSpace(site))
			if site == "" {
				return fmt.Errorf("--site is required")
			}
			query := url.Values{"site": {site}}
			msg, err := ctx.uploadFile("/cookies/upload", query, "cookies", args[0])
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Cookies saved"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&site, "site", "s", "", "Site the cookies belong to (youtube, tiktok, default)")
	return cmd
}

func newCookiesClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored cookie file",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := ctx.secretKey()
			if err != nil {
				return err
			}
			var result struct {
				Removed int `json:"removed"`
			}
			query := url.Values{"key": {key}}
			if _, err := ctx.getJSON("/cookies/clear", query, &result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cookie file(s).\n", result.Removed)
			return nil
		},
	}
}
