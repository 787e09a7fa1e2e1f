package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shipwright/internal/config"
	"shipwright/internal/signing"
)

func newSignCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sign FILE...",
		Short: "Sign files with the configured signing strategy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			signer := signing.FromConfig(cfg, logger)
			if signer.Mode() == config.SigningDisabled {
				return fmt.Errorf("signing is not configured; set a certificate file or an API token")
			}
			if err := signer.Sign(cmd.Context(), args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed %d file(s) using %s signing\n", len(args), signer.Mode())
			return nil
		},
	}
}
