package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var serverFlag string
	var keyFlag string
	var configFlag string

	ctx := newCommandContext(&serverFlag, &keyFlag, &configFlag)

	rootCmd := &cobra.Command{
		Use:           "snatch",
		Short:         "Snatch daemon CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Base URL of the snatch daemon API")
	rootCmd.PersistentFlags().StringVar(&keyFlag, "key", "", "Admin secret key (defaults to the configured secret)")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newPendingCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newFlushCommand(ctx))
	rootCmd.AddCommand(newCookiesCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
