package run

import "fmt"

// Run is the typed view of a run record used by the state machine.
// An empty ThreadID means no thread reference.
type Run struct {
	ID        int64
	RunID     string
	Submitted string
	ThreadID  string
	State     LocalState
	SrcState  ExternalState
}

// New returns the initial state for a submission seen for the first time.
func New(runID, submitted string) Run {
	return Run{
		RunID:     runID,
		Submitted: submitted,
		State:     LocalNone,
		SrcState:  ExternalNew,
	}
}

// IsFinalized reports whether the run is excluded from further reconciliation.
func (r Run) IsFinalized() bool {
	return r.State == LocalFinalized
}

// CheckInvariants validates that the thread reference is present exactly
// when the local state implies one.
func CheckInvariants(r Run) error {
	if r.State.HasThread() && r.ThreadID == "" {
		return fmt.Errorf("%w: run %s is %s but has no thread id", ErrInvalidState, r.RunID, r.State)
	}
	if !r.State.HasThread() && r.ThreadID != "" {
		return fmt.Errorf("%w: run %s is %s but has thread id %s", ErrInvalidState, r.RunID, r.State, r.ThreadID)
	}
	if r.State == LocalFinalized && !r.SrcState.IsTerminal() {
		return fmt.Errorf("%w: run %s is finalized with non-terminal source state %s", ErrInvalidState, r.RunID, r.SrcState)
	}
	return nil
}
