package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var setFlags []string

	ctx := newCommandContext(&configFlag, &setFlags)

	rootCmd := &cobra.Command{
		Use:           "shipwright",
		Short:         "Build, sign, and package the application distribution",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringArrayVar(&setFlags, "set", nil, "Override a configuration option (key=value, repeatable)")

	rootCmd.AddCommand(newBuildCommand(ctx))
	rootCmd.AddCommand(newTargetsCommand(ctx))
	rootCmd.AddCommand(newPotCommand(ctx))
	rootCmd.AddCommand(newSignCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
