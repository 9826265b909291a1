// Package commands implements the CLI commands for the knit bundler.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/knit/internal/app"
	"go.trai.ch/knit/internal/build"
)

// CLI represents the command line interface for knit.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	dir      string
	trace    bool
	jsonLogs bool
}

// Application represents the application logic interface.
type Application interface {
	Bundle(ctx context.Context, opts app.BuildOptions) error
	Run(ctx context.Context, opts app.BuildOptions, stdout, stderr io.Writer) error
	Inspect(ctx context.Context, dir, path string) (*app.Inspection, error)
	Clean(ctx context.Context, opts app.CleanOptions) error
	SetJSONLogs(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "knit",
		Short:         "Bundle a JavaScript module graph into one self-contained script",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.dir, "dir", "C", "", "Run as if knit was started in this directory")
	flags.BoolVar(&c.trace, "trace", false, "Log a line for every traced operation")
	flags.BoolVar(&c.jsonLogs, "json-logs", false, "Write logs as JSON")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		c.app.SetJSONLogs(c.jsonLogs)
	}

	rootCmd.AddCommand(c.newBundleCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newInspectCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func (c *CLI) buildOptions(args []string) app.BuildOptions {
	opts := app.BuildOptions{
		Dir:   c.dir,
		Trace: c.trace,
	}
	if len(args) > 0 {
		opts.Entry = args[0]
	}
	return opts
}
