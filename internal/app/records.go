package app

import (
	"fmt"

	"github.com/example/queuebot/internal/core/run"
	"github.com/example/queuebot/internal/ports/secondary"
)

// recordToRun parses a stored record into the core model.
// Unrecognised state text is an invariant violation, never a default.
func recordToRun(rec *secondary.RunRecord) (run.Run, error) {
	local, err := run.ParseLocalState(rec.State)
	if err != nil {
		return run.Run{}, fmt.Errorf("run %s: %w", rec.RunID, err)
	}
	external, err := run.ParseExternalState(rec.SrcState)
	if err != nil {
		return run.Run{}, fmt.Errorf("run %s: %w", rec.RunID, err)
	}
	return run.Run{
		ID:        rec.ID,
		RunID:     rec.RunID,
		Submitted: rec.Submitted,
		ThreadID:  rec.ThreadID,
		State:     local,
		SrcState:  external,
	}, nil
}

// runToRecord renders the core model for persistence.
func runToRecord(r run.Run) *secondary.RunRecord {
	return &secondary.RunRecord{
		ID:        r.ID,
		RunID:     r.RunID,
		Submitted: r.Submitted,
		ThreadID:  r.ThreadID,
		State:     r.State.String(),
		SrcState:  r.SrcState.String(),
	}
}
