package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/quarry/internal/engine"
)

// StoreOptions holds the mutually exclusive store source flags shared
// by run and serve.
type StoreOptions struct {
	Dataset string
	SQLite  string
	Pebble  string
}

func addStoreFlags(cmd *cobra.Command, opts *StoreOptions) {
	cmd.Flags().StringVar(&opts.Dataset, "data", "", "YAML dataset file (table name → rows)")
	cmd.Flags().StringVar(&opts.SQLite, "db", "", "SQLite database file")
	cmd.Flags().StringVar(&opts.Pebble, "pebble", "", "pebble database directory")
}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	StoreOptions
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <query-file>",
		Short: "Execute a query definition against a store",
		Long: `Execute a declarative query definition (.cue, .yaml, or .json)
against a record store and print the result rows.

Example:
  quarry run --data ./dataset.yaml ./query.cue
  quarry run --db ./records.sqlite ./query.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	addStoreFlags(cmd, &opts.StoreOptions)
	return cmd
}

func runQuery(opts *RunOptions, queryPath string, cmd *cobra.Command) error {
	def, err := LoadQueryDef(queryPath)
	if err != nil {
		return err
	}

	provider, closer, err := OpenStore(opts.Dataset, opts.SQLite, opts.Pebble)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer()
	}

	collector := &engine.Collector{}
	eng := engine.New(provider, engine.WithSink(collector))
	rows := eng.ExecutePlan(cmd.Context(), def.Plan())

	return writeResult(cmd.OutOrStdout(), opts.Format, rows, collector.Diagnostics())
}
