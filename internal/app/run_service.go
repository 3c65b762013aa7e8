package app

import (
	"context"
	"fmt"

	"github.com/example/queuebot/internal/core/run"
	"github.com/example/queuebot/internal/ports/primary"
	"github.com/example/queuebot/internal/ports/secondary"
)

// RunServiceImpl implements the RunService interface.
type RunServiceImpl struct {
	runRepo secondary.RunRepository
}

// NewRunService creates a new RunService with injected dependencies.
func NewRunService(runRepo secondary.RunRepository) *RunServiceImpl {
	return &RunServiceImpl{runRepo: runRepo}
}

// ListRuns lists runs, optionally filtered by local and source state.
func (s *RunServiceImpl) ListRuns(ctx context.Context, filters primary.RunFilters) ([]*primary.Run, error) {
	if filters.State != "" {
		if _, err := run.ParseLocalState(filters.State); err != nil {
			return nil, newBotError(KindValidation, "list runs", "", err)
		}
	}
	if filters.SrcState != "" {
		if _, err := run.ParseExternalState(filters.SrcState); err != nil {
			return nil, newBotError(KindValidation, "list runs", "", err)
		}
	}

	var (
		records []*secondary.RunRecord
		err     error
	)
	if filters.State != "" && filters.SrcState != "" {
		records, err = s.runRepo.LoadWhere(ctx, filters.State, filters.SrcState)
	} else {
		records, err = s.runRepo.LoadAll(ctx)
	}
	if err != nil {
		return nil, storeError("list runs", "", err)
	}

	var runs []*primary.Run
	for _, rec := range records {
		if filters.State != "" && rec.State != filters.State {
			continue
		}
		if filters.SrcState != "" && rec.SrcState != filters.SrcState {
			continue
		}
		runs = append(runs, recordToPrimary(rec))
	}
	return runs, nil
}

// GetRun retrieves a run by its source run ID.
func (s *RunServiceImpl) GetRun(ctx context.Context, runID string) (*primary.Run, error) {
	rec, err := s.runRepo.LoadByExternalID(ctx, runID)
	if err != nil {
		return nil, storeError("get run", runID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	return recordToPrimary(rec), nil
}

// CheckRuns audits every record.
// Records that fail to parse or break an invariant are violations; runs
// still short of their reference message are reported as stalled, since
// intake only resumes them while the source keeps listing them as new.
func (s *RunServiceImpl) CheckRuns(ctx context.Context) ([]*primary.RunProblem, error) {
	records, err := s.runRepo.LoadAll(ctx)
	if err != nil {
		return nil, storeError("check runs", "", err)
	}

	var problems []*primary.RunProblem
	for _, rec := range records {
		r, err := recordToRun(rec)
		if err != nil {
			problems = append(problems, &primary.RunProblem{RunID: rec.RunID, Problem: err.Error()})
			continue
		}
		if err := run.CheckInvariants(r); err != nil {
			problems = append(problems, &primary.RunProblem{RunID: rec.RunID, Problem: err.Error()})
			continue
		}
		if r.State < run.LocalMessageCreated && !r.SrcState.IsTerminal() {
			problems = append(problems, &primary.RunProblem{
				RunID:   rec.RunID,
				Stalled: true,
				Problem: fmt.Sprintf("awaiting intake at state %s", r.State),
			})
		}
	}
	return problems, nil
}

func recordToPrimary(rec *secondary.RunRecord) *primary.Run {
	return &primary.Run{
		ID:        rec.ID,
		RunID:     rec.RunID,
		Submitted: rec.Submitted,
		ThreadID:  rec.ThreadID,
		State:     rec.State,
		SrcState:  rec.SrcState,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// Ensure RunServiceImpl implements the interface
var _ primary.RunService = (*RunServiceImpl)(nil)
