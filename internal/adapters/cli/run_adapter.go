// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting, but delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/example/queuebot/internal/ports/primary"
)

// RunAdapter is a thin adapter that translates CLI operations to RunService calls.
// It depends only on the RunService interface, enabling easy testing with mocks.
type RunAdapter struct {
	service primary.RunService
	out     io.Writer
}

// NewRunAdapter creates a new RunAdapter with the given service.
func NewRunAdapter(service primary.RunService, out io.Writer) *RunAdapter {
	return &RunAdapter{
		service: service,
		out:     out,
	}
}

// List lists run records with optional state filters.
func (a *RunAdapter) List(ctx context.Context, state, srcState string) error {
	runs, err := a.service.ListRuns(ctx, primary.RunFilters{State: state, SrcState: srcState})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(a.out, "No runs found")
		return nil
	}

	t := newTable(a.out)
	t.AppendHeader(table.Row{"ID", "RUN", "STATE", "SOURCE", "THREAD", "UPDATED"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.ID, r.RunID, r.State, r.SrcState, orDash(r.ThreadID), orDash(r.UpdatedAt)})
	}
	t.Render()
	return nil
}

// Show displays a single run record.
func (a *RunAdapter) Show(ctx context.Context, runID string) (*primary.Run, error) {
	r, err := a.service.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	fmt.Fprintf(a.out, "\nRun:       %s\n", r.RunID)
	fmt.Fprintf(a.out, "State:     %s\n", stateColor(r.State).Sprint(r.State))
	fmt.Fprintf(a.out, "Source:    %s\n", srcStateColor(r.SrcState).Sprint(r.SrcState))
	fmt.Fprintf(a.out, "Thread:    %s\n", orDash(r.ThreadID))
	if r.Submitted != "" {
		fmt.Fprintf(a.out, "Submitted: %s\n", r.Submitted)
	}
	fmt.Fprintf(a.out, "Created:   %s\n", orDash(r.CreatedAt))
	fmt.Fprintf(a.out, "Updated:   %s\n", orDash(r.UpdatedAt))
	fmt.Fprintln(a.out)

	return r, nil
}

// Check audits every record and prints the problems found.
// It returns the number of invariant violations; stalled runs are reported
// but not counted.
func (a *RunAdapter) Check(ctx context.Context) (int, error) {
	problems, err := a.service.CheckRuns(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check runs: %w", err)
	}

	if len(problems) == 0 {
		fmt.Fprintf(a.out, "%s all runs consistent\n", color.New(color.FgGreen).Sprint("✓"))
		return 0, nil
	}

	violations := 0
	for _, p := range problems {
		if p.Stalled {
			fmt.Fprintf(a.out, "%s %s: %s\n", color.New(color.FgYellow).Sprint("STALLED"), p.RunID, p.Problem)
			continue
		}
		violations++
		fmt.Fprintf(a.out, "%s %s: %s\n", color.New(color.FgRed).Sprint("INVALID"), p.RunID, p.Problem)
	}
	fmt.Fprintf(a.out, "\n%d invalid, %d stalled\n", violations, len(problems)-violations)
	return violations, nil
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func stateColor(state string) *color.Color {
	switch state {
	case "finalized":
		return color.New(color.FgGreen)
	case "message_created":
		return color.New(color.FgCyan)
	case "thread_created", "none":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func srcStateColor(state string) *color.Color {
	switch state {
	case "verified":
		return color.New(color.FgHiGreen)
	case "rejected":
		return color.New(color.FgRed)
	case "removed":
		return color.New(color.FgHiBlack)
	case "new":
		return color.New(color.FgHiBlue)
	default:
		return color.New(color.FgRed)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
