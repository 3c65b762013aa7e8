package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/queuebot/internal/logging"
	"github.com/example/queuebot/internal/wire"
)

// RunCmd returns the run command, the long-running poll loop.
func RunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll the queue until interrupted",
		Long: `Open (and migrate) the record store, load the game's categories, then run a
Sweep followed by an Intake every poll interval until SIGINT or SIGTERM.

A cycle that overruns the interval delays the next one; cycles never overlap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			catalog, err := wire.CategoryCatalog()
			if err != nil {
				return err
			}
			poller, err := wire.Poller()
			if err != nil {
				return err
			}

			log := logging.New("cli")
			if err := catalog.Load(ctx); err != nil {
				// Titles use the unknown-category placeholder until a reload succeeds.
				log.WarnContext(ctx, "category bootstrap failed", "error", err)
			}

			return poller.Run(ctx)
		},
	}
}

// OnceCmd returns the once command.
func OnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single Sweep and Intake cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			adapter, err := wire.CycleAdapter()
			if err != nil {
				return err
			}
			return adapter.Once(ctx)
		},
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
