package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/queuebot/internal/ports/primary"
)

// CycleAdapter runs reconciliation passes on demand and prints their reports.
type CycleAdapter struct {
	service primary.ReconcileService
	out     io.Writer
}

// NewCycleAdapter creates a new CycleAdapter with the given service.
func NewCycleAdapter(service primary.ReconcileService, out io.Writer) *CycleAdapter {
	return &CycleAdapter{service: service, out: out}
}

// Once runs a single Sweep+Intake cycle. The report is printed even when
// the cycle failed part-way.
func (a *CycleAdapter) Once(ctx context.Context) error {
	report, err := a.service.RunCycle(ctx)
	if report != nil {
		fmt.Fprintf(a.out, "Cycle %s\n", report.CycleID)
		if s := report.Sweep; s != nil {
			fmt.Fprintf(a.out, "  sweep:  %d candidates, %d finalized, %d removed, %d skipped, %d failed\n",
				s.Candidates, s.Finalized, s.Removed, s.Skipped, s.Failed)
		}
		if in := report.Intake; in != nil {
			fmt.Fprintf(a.out, "  intake: %d listed, %d recorded, %d threads, %d messages, %d skipped, %d failed\n",
				in.Listed, in.Created, in.Threads, in.Messages, in.Skipped, in.Failed)
		}
	}
	if err != nil {
		return fmt.Errorf("cycle failed: %w", err)
	}
	return nil
}
