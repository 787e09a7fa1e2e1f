package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shipwright/internal/targets"
)

func newTargetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the build graph targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			g, err := targets.Build(targets.Wire(cfg, logger))
			if err != nil {
				return err
			}

			rows := make([][]string, 0)
			for _, name := range g.Names() {
				target, _ := g.Target(name)
				rows = append(rows, []string{
					target.Name,
					target.Doc,
					strings.Join(target.Deps, ", "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Target", "Description", "Depends on"},
				rows,
			))
			return nil
		},
	}
}
