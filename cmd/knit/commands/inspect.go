package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/knit/internal/app"
	"go.trai.ch/knit/internal/ui/output"
	"go.trai.ch/knit/internal/ui/style"
)

func (c *CLI) newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <bundle>",
		Short: "List the modules and dependencies embedded in a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inspection, err := c.app.Inspect(cmd.Context(), c.dir, args[0])
			if err != nil {
				return err
			}

			base := c.dir
			if base == "" {
				base = "."
			}
			if abs, err := filepath.Abs(base); err == nil {
				base = abs
			}

			w := cmd.OutOrStdout()
			printInspection(w, style.NewStyles(output.NewRenderer(w)), base, inspection)
			return nil
		},
	}
}

// printInspection writes the module tree of a bundle in insertion order:
//
//	index.js (2 modules, digest 8f0c2d6a1b3e4f57)
//	├─ index.js
//	│    ./a.js → a.js
//	└─ a.js
func printInspection(w io.Writer, s style.Styles, base string, in *app.Inspection) {
	g := in.Graph

	_, _ = fmt.Fprintf(w, "%s %s\n",
		s.Entry.Render(relTo(base, g.Entry().String())),
		s.Muted.Render(fmt.Sprintf("(%d modules, digest %s)", g.Len(), in.Digest)),
	)
	if in.Info != nil {
		_, _ = fmt.Fprintln(w, s.Success.Render(style.Check+" matches the last build"))
	}

	i := 0
	for m := range g.Walk() {
		i++
		branch, indent := style.Branch, "│ "
		if i == g.Len() {
			branch, indent = style.Last, "  "
		}

		_, _ = fmt.Fprintf(w, "%s %s\n", branch, s.Module.Render(relTo(base, m.Path.String())))
		for _, spec := range m.Specifiers {
			_, _ = fmt.Fprintf(w, "%s   %s %s %s\n",
				indent,
				s.Muted.Render(spec),
				style.Arrow,
				relTo(base, m.Dependencies[spec].String()),
			)
		}
	}
}

// relTo shortens path to be relative to base when it lies below it.
func relTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
