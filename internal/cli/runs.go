package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/queuebot/internal/wire"
)

// RunsCmd returns the runs command for inspecting run records.
func RunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect run records",
	}

	cmd.AddCommand(runsListCmd())
	cmd.AddCommand(runsShowCmd())
	cmd.AddCommand(runsCheckCmd())

	return cmd
}

func runsListCmd() *cobra.Command {
	var state, srcState string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List run records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.RunAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return adapter.List(cmd.Context(), state, srcState)
		},
	}

	cmd.Flags().StringVarP(&state, "state", "s", "", "Filter by local state (none, thread_created, message_created, finalized)")
	cmd.Flags().StringVar(&srcState, "src-state", "", "Filter by source state (new, verified, rejected, removed)")
	return cmd
}

func runsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show a run record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.RunAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, err = adapter.Show(cmd.Context(), args[0])
			return err
		},
	}
}

func runsCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Audit run records for invalid state",
		Long: `Check every record against the lifecycle invariants.

Invalid records (a thread state without a thread id, unknown state text,
finalized without a verdict) are never repaired automatically and make the
command exit non-zero. Stalled runs, still awaiting a thread or message after
the source stopped listing them as new, are reported but not counted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.RunAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			violations, err := adapter.Check(cmd.Context())
			if err != nil {
				return err
			}
			if violations > 0 {
				return fmt.Errorf("%d invalid run records", violations)
			}
			return nil
		},
	}
}
