package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/kanban/internal/httpapi"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP",
		Long: `Serve the board over HTTP until interrupted.

Routes:
  GET  /api/board   current board
  POST /api/events  JSON array of events, applied in order
  GET  /healthz     liveness

Examples:
  kanban serve
  kanban serve --addr :9090 --db team.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:8080", "listen address")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, kv, _, err := opts.OpenSession(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()

	logger := opts.Logger()
	e := httpapi.New(m, logger)
	if err := httpapi.Serve(ctx, e, opts.Addr, logger); err != nil {
		return WrapExitError(ExitCommandError, "server failed", err)
	}
	return nil
}
