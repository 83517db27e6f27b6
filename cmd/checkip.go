package main

import (
	"fmt"

	"github.com/harshpatel5940/webhookauth/internal/webhook"
	"github.com/spf13/cobra"
)

func newCheckIPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-ip <ip>...",
		Short: "Report whether addresses belong to the sender allowlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The secret is irrelevant for the address check.
			auth := webhook.New("")
			out := cmd.OutOrStdout()

			rejected := 0
			for _, ip := range args {
				if err := auth.AuthenticateClientIP(ip); err != nil {
					rejected++
					fmt.Fprintf(out, "%s\trejected\n", ip)
					continue
				}
				fmt.Fprintf(out, "%s\tallowed\n", ip)
			}

			if rejected > 0 {
				return fmt.Errorf("%d of %d addresses not in allowlist", rejected, len(args))
			}
			return nil
		},
	}
}
