package cli

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/quarry/internal/api"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	StoreOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API over HTTP",
		Long: `Serve the query engine over HTTP. POST /query executes a query
definition against the configured store; /export and /analyze mirror
the corresponding commands.

Example:
  quarry serve --data ./dataset.yaml --addr :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, closer, err := OpenStore(opts.Dataset, opts.SQLite, opts.Pebble)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(provider, slog.Default())
			return server.ListenAndServe(ctx, opts.Addr)
		},
	}

	addStoreFlags(cmd, &opts.StoreOptions)
	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	return cmd
}
