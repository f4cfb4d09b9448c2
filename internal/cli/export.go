package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quarry/internal/sqlexport"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Dialect string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <query-file>",
		Short: "Render a query definition as SQL text",
		Long: `Render a declarative query definition as SQL for a target dialect.
The output is text only; nothing is executed.

Example:
  quarry export --dialect postgresql ./query.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := LoadQueryDef(args[0])
			if err != nil {
				return err
			}
			d := sqlexport.Dialect(opts.Dialect)
			if !d.Valid() {
				return fmt.Errorf("unknown dialect %q: must be one of %v", opts.Dialect, sqlexport.Dialects)
			}
			fmt.Fprintln(cmd.OutOrStdout(), sqlexport.Export(def.Plan(), d))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Dialect, "dialect", string(sqlexport.Standard), "SQL dialect (standard|mysql|postgresql|sqlite)")
	return cmd
}
