package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle [entry]",
		Short: "Bundle the entry module and everything it imports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			watch, _ := cmd.Flags().GetBool("watch")

			opts := c.buildOptions(args)
			opts.Output = output
			opts.Watch = watch

			return c.app.Bundle(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringP("output", "o", "", "Path of the bundle (default from knit.yaml or dist/bundle.js)")
	cmd.Flags().BoolP("watch", "w", false, "Rebuild whenever a bundled source changes")
	return cmd
}
