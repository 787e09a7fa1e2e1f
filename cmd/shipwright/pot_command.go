package main

import (
	"github.com/spf13/cobra"
)

func newPotCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "pot",
		Short: "Generate the translation catalog template",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(ctx, cmd, []string{"pot"}, 0, force, false)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Regenerate even when sources are unchanged")
	return cmd
}
