package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/quarry/internal/query"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <query-file>",
		Short: "Report complexity, cost, and heuristic issues for a query",
		Long: `Analyze a declarative query definition without executing it:
weighted complexity bucket, deterministic cost score, and a fixed rule
set of heuristic issues and suggestions.

Example:
  quarry analyze ./query.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := LoadQueryDef(args[0])
			if err != nil {
				return err
			}
			analysis := query.Analyze(def.Plan())

			if rootOpts.Format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(analysis)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", color.CyanString("complexity:"), analysis.Complexity)
			fmt.Fprintf(out, "%s %d\n", color.CyanString("estimated cost:"), analysis.EstimatedCost)
			for _, issue := range analysis.Issues {
				fmt.Fprintf(out, "%s %s\n", color.RedString("issue:"), issue)
			}
			for _, s := range analysis.Suggestions {
				fmt.Fprintf(out, "%s %s\n", color.YellowString("suggestion:"), s)
			}
			return nil
		},
	}
	return cmd
}
