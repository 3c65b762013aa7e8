package run

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
// Violation is set when the refusal is caused by corrupted local state
// rather than the step simply having been done already.
type GuardResult struct {
	Allowed   bool
	Violation bool
	Reason    string
}

// Error returns the guard result as an error if it reports a violation, nil otherwise.
// A plain refusal is a no-op, not an error.
func (r GuardResult) Error() error {
	if r.Allowed || !r.Violation {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidState, r.Reason)
}

// CanCreateThread evaluates whether a thread should be created for the run.
// Rule: only from LocalNone.
func CanCreateThread(r Run) GuardResult {
	if r.State != LocalNone {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("run %s already has a thread (state: %s)", r.RunID, r.State),
		}
	}
	return GuardResult{Allowed: true}
}

// CanCreateMessage evaluates whether the reference message should be posted.
// Rules:
// - Only from LocalThreadCreated
// - The thread reference must be set
func CanCreateMessage(r Run) GuardResult {
	if r.State != LocalThreadCreated {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("run %s is not awaiting a message (state: %s)", r.RunID, r.State),
		}
	}
	if r.ThreadID == "" {
		return GuardResult{
			Allowed:   false,
			Violation: true,
			Reason:    fmt.Sprintf("run %s was in state %s but has no thread id", r.RunID, r.State),
		}
	}
	return GuardResult{Allowed: true}
}

// CanFinalize evaluates whether the run's thread can receive its terminal annotation.
// Rules:
// - Run must not already be finalized
// - Run must have a thread to annotate
func CanFinalize(r Run) GuardResult {
	if r.State == LocalFinalized {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("run %s is already finalized", r.RunID),
		}
	}
	if !r.State.HasThread() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("run %s has no thread to finalize (state: %s)", r.RunID, r.State),
		}
	}
	if r.ThreadID == "" {
		return GuardResult{
			Allowed:   false,
			Violation: true,
			Reason:    fmt.Sprintf("run %s was in state %s but has no thread id", r.RunID, r.State),
		}
	}
	return GuardResult{Allowed: true}
}
