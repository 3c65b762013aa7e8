package run

import "fmt"

// TransitionResult contains the result of applying a step to a run.
// Changed is false when the step had already been applied.
type TransitionResult struct {
	Run     Run
	Changed bool
}

// ApplyThreadCreated records a freshly created thread.
// Applying it to a run already past LocalNone returns the run unchanged.
func ApplyThreadCreated(r Run, threadID string) (TransitionResult, error) {
	if !CanCreateThread(r).Allowed {
		return TransitionResult{Run: r}, nil
	}
	if threadID == "" {
		return TransitionResult{Run: r}, fmt.Errorf("%w: empty thread id for run %s", ErrInvalidState, r.RunID)
	}
	r.ThreadID = threadID
	r.State = LocalThreadCreated
	return TransitionResult{Run: r, Changed: true}, nil
}

// ApplyMessageCreated records that the reference message was posted.
// A missing thread reference is an invariant violation.
func ApplyMessageCreated(r Run) (TransitionResult, error) {
	guard := CanCreateMessage(r)
	if err := guard.Error(); err != nil {
		return TransitionResult{Run: r}, err
	}
	if !guard.Allowed {
		return TransitionResult{Run: r}, nil
	}
	r.State = LocalMessageCreated
	return TransitionResult{Run: r, Changed: true}, nil
}

// ApplyFinalized marks the run terminal with the resolved outcome.
// The outcome must be terminal; Unknown never overwrites anything.
func ApplyFinalized(r Run, outcome ExternalState) (TransitionResult, error) {
	if !outcome.IsTerminal() {
		return TransitionResult{Run: r}, fmt.Errorf("cannot finalize run %s with non-terminal outcome %s", r.RunID, outcome)
	}
	guard := CanFinalize(r)
	if err := guard.Error(); err != nil {
		return TransitionResult{Run: r}, err
	}
	if !guard.Allowed {
		return TransitionResult{Run: r}, nil
	}
	r.SrcState = outcome
	r.State = LocalFinalized
	return TransitionResult{Run: r, Changed: true}, nil
}
