package main

import (
	"fmt"
	"io"
	"os"

	"github.com/harshpatel5940/webhookauth/internal/webhook"
	"github.com/spf13/cobra"
)

func newSignCmd() *cobra.Command {
	var secret, file string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the authorization header value for a payload",
		Long: "Reads a payload from --file or stdin and prints the authorization header value " +
			"the payment platform would send for it. The payload is signed byte for byte.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("WEBHOOK_SECRET_KEY")
			}
			if secret == "" {
				return fmt.Errorf("a secret is required (--secret or WEBHOOK_SECRET_KEY)")
			}

			var (
				body []byte
				err  error
			)
			if file != "" {
				body, err = os.ReadFile(file)
			} else {
				body, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), webhook.FormatAuthorization(webhook.Sign(body, secret)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&secret, "secret", "s", "", "merchant secret key (default $WEBHOOK_SECRET_KEY)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "payload file (default stdin)")

	return cmd
}
