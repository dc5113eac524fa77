package commands

import "github.com/spf13/cobra"

func (c *CLI) newOptimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Run the AMP optimizer over every built html file",
		Long: "Rewrites every html file in the output root in place. A document that " +
			"fails to optimize is left untouched and reported with the others at the end.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Optimize(cmd.Context(), runOptions(cmd))
		},
	}
}
