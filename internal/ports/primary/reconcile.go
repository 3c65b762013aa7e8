// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import "context"

// ReconcileService defines the primary port for the reconciliation engine.
type ReconcileService interface {
	// RunCycle runs one Sweep followed by one Intake.
	// The returned error joins any cycle-level failures of either pass.
	RunCycle(ctx context.Context) (*CycleReport, error)

	// Sweep drives runs awaiting verification to their terminal state.
	Sweep(ctx context.Context) (*SweepReport, error)

	// Intake onboards new submissions and resumes partially onboarded ones.
	Intake(ctx context.Context) (*IntakeReport, error)
}

// CycleReport summarises one poll cycle.
type CycleReport struct {
	CycleID string
	Sweep   *SweepReport
	Intake  *IntakeReport
}

// SweepReport summarises one sweep pass.
type SweepReport struct {
	Candidates int
	Finalized  int // verified or rejected
	Removed    int
	Skipped    int
	Failed     int
}

// IntakeReport summarises one intake pass.
type IntakeReport struct {
	Listed   int
	Created  int // new records inserted
	Threads  int // threads created
	Messages int // reference messages posted
	Skipped  int
	Failed   int
}
