package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/queuebot/internal/ports/primary"
)

type mockReconcileService struct {
	report *primary.CycleReport
	err    error
}

func (m *mockReconcileService) RunCycle(ctx context.Context) (*primary.CycleReport, error) {
	return m.report, m.err
}

func (m *mockReconcileService) Sweep(ctx context.Context) (*primary.SweepReport, error) {
	return m.report.Sweep, m.err
}

func (m *mockReconcileService) Intake(ctx context.Context) (*primary.IntakeReport, error) {
	return m.report.Intake, m.err
}

func TestCycleAdapter_Once(t *testing.T) {
	mock := &mockReconcileService{report: &primary.CycleReport{
		CycleID: "0192f0c1-aaaa",
		Sweep:   &primary.SweepReport{Candidates: 3, Finalized: 1, Removed: 1, Skipped: 1},
		Intake:  &primary.IntakeReport{Listed: 2, Created: 2, Threads: 2, Messages: 2},
	}}
	var out bytes.Buffer

	if err := NewCycleAdapter(mock, &out).Once(context.Background()); err != nil {
		t.Fatalf("Once() error = %v", err)
	}
	output := out.String()
	for _, want := range []string{"0192f0c1-aaaa", "3 candidates, 1 finalized, 1 removed", "2 listed, 2 recorded, 2 threads"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestCycleAdapter_OnceReportsPartialCycle(t *testing.T) {
	mock := &mockReconcileService{
		report: &primary.CycleReport{CycleID: "c1", Sweep: &primary.SweepReport{}},
		err:    errors.New("list new submissions: source: HTTP 503"),
	}
	var out bytes.Buffer

	err := NewCycleAdapter(mock, &out).Once(context.Background())
	if err == nil || !strings.Contains(err.Error(), "cycle failed") {
		t.Fatalf("expected cycle error, got %v", err)
	}
	if !strings.Contains(out.String(), "sweep:") {
		t.Errorf("expected partial report, got %q", out.String())
	}
}
