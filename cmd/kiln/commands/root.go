// Package commands implements the CLI commands for kiln.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
)

// CLI represents the command line interface for kiln.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Dev(ctx context.Context, opts app.RunOptions) error
	Build(ctx context.Context, opts app.RunOptions) error
	Optimize(ctx context.Context, opts app.RunOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:   "kiln",
		Short: "Build, serve and watch a static site's assets",
		Long: "Without a subcommand kiln cleans the output root, runs the full build, " +
			"serves the result with live reload and rebuilds on every change.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Dev(cmd.Context(), runOptions(cmd))
		},
	}

	rootCmd.SetVersionTemplate("{{.Name}} version {{.Version}}\n")
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", ".", "Path to kiln.yaml or the directory holding it")
	flags.Bool("no-clean", false, "Keep the output root from the previous run")
	flags.IntP("port", "p", 0, "Preview server port (overrides settings and KILN_PORT)")
	flags.Bool("json", false, "Write logs as JSON lines")
	flags.StringP("output", "o", "auto", "Output mode: auto, compact, or linear")

	c.rootCmd = rootCmd
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newOptimizeCmd())
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

func runOptions(cmd *cobra.Command) app.RunOptions {
	config, _ := cmd.Flags().GetString("config")
	noClean, _ := cmd.Flags().GetBool("no-clean")
	port, _ := cmd.Flags().GetInt("port")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	output, _ := cmd.Flags().GetString("output")

	return app.RunOptions{
		ConfigPath: config,
		NoClean:    noClean,
		Port:       port,
		OutputMode: output,
		JSON:       jsonLogs,
	}
}
