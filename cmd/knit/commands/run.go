package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [entry]",
		Short: "Bundle the entry module in memory and execute it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Run(cmd.Context(), c.buildOptions(args), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}
