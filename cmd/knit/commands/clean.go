package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/knit/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove recorded build info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")

			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Dir:    c.dir,
				Output: all,
			})
		},
	}

	cmd.Flags().BoolP("all", "a", false, "Also remove the bundle and the .knit directory")

	return cmd
}
