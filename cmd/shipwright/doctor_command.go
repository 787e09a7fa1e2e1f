package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shipwright/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the required external tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := deps.CheckBinaries(deps.Requirements(cfg))

			rows := make([][]string, 0, len(results))
			missing := 0
			for _, status := range results {
				state := "ok"
				detail := status.Detail
				if !status.Available {
					if status.Optional {
						state = "optional"
					} else {
						state = "missing"
						missing++
					}
				}
				rows = append(rows, []string{status.Name, status.Command, state, detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Tool", "Command", "Status", "Detail"},
				rows,
			))
			if missing > 0 {
				return fmt.Errorf("%d required tool(s) missing", missing)
			}
			return nil
		},
	}
}
