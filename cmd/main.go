package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "webhookauth",
		Short:        "Authenticate payment platform webhooks by sender IP and signature",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newServeCmd(),
		newSignCmd(),
		newCheckIPCmd(),
	)

	return cmd
}
