package app

import (
	"context"
	"log/slog"

	"github.com/example/queuebot/internal/core/announce"
	"github.com/example/queuebot/internal/core/run"
	"github.com/example/queuebot/internal/ctxutil"
	"github.com/example/queuebot/internal/logging"
	"github.com/example/queuebot/internal/ports/primary"
	"github.com/example/queuebot/internal/ports/secondary"
)

// SweepReconciler resolves runs awaiting verification: once the source has
// a verdict, the run's thread is renamed with the outcome symbol, archived,
// and the record finalized.
type SweepReconciler struct {
	runs    secondary.RunRepository
	source  secondary.SubmissionSource
	gateway secondary.NotificationGateway
	marker  string
	logger  *slog.Logger
}

// NewSweepReconciler creates a SweepReconciler.
// gateway should already apply the rate-limit policy.
func NewSweepReconciler(
	runs secondary.RunRepository,
	source secondary.SubmissionSource,
	gateway secondary.NotificationGateway,
	notFoundMarker string,
) *SweepReconciler {
	return &SweepReconciler{
		runs:    runs,
		source:  source,
		gateway: gateway,
		marker:  notFoundMarker,
		logger:  logging.New("sweep"),
	}
}

// Run performs one sweep pass over every run in MessageCreated/New.
func (s *SweepReconciler) Run(ctx context.Context) (*primary.SweepReport, error) {
	log := s.logger.With("cycle_id", ctxutil.CycleIDFromContext(ctx))
	report := &primary.SweepReport{}

	candidates, err := s.runs.LoadWhere(ctx, run.LocalMessageCreated.String(), run.ExternalNew.String())
	if err != nil {
		return report, storeError("load sweep candidates", "", err)
	}
	report.Candidates = len(candidates)

	for _, rec := range candidates {
		if ctx.Err() != nil {
			break
		}

		action, err := s.process(ctx, log, rec)
		if err != nil {
			report.Failed++
			logRunFailure(ctx, log, err)
			continue
		}
		switch action {
		case run.SweepFinalize:
			report.Finalized++
		case run.SweepRemove:
			report.Removed++
		default:
			report.Skipped++
		}
	}

	log.InfoContext(ctx, "sweep complete",
		"candidates", report.Candidates, "finalized", report.Finalized,
		"removed", report.Removed, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

// process resolves one candidate. On any error the record is left as it was.
func (s *SweepReconciler) process(ctx context.Context, log *slog.Logger, rec *secondary.RunRecord) (run.SweepAction, error) {
	current, err := recordToRun(rec)
	if err != nil {
		return run.SweepSkip, invalidStateError("load run", rec.RunID, err)
	}
	if current.IsFinalized() {
		return run.SweepSkip, nil
	}

	in, err := s.lookup(ctx, log, current)
	if err != nil {
		return run.SweepSkip, err
	}

	plan := run.PlanSweep(in)
	if plan.Action == run.SweepSkip {
		return run.SweepSkip, nil
	}

	guard := run.CanFinalize(current)
	if err := guard.Error(); err != nil {
		return run.SweepSkip, invalidStateError("finalize", current.RunID, err)
	}
	if !guard.Allowed {
		return run.SweepSkip, nil
	}

	if plan.Action == run.SweepRemove {
		s.postRemovalNotice(ctx, log, current)
	}

	didWork, _, err := s.gateway.RenameAndArchive(ctx, current.ThreadID, plan.Symbol)
	if err != nil {
		if plan.Action != run.SweepRemove {
			return run.SweepSkip, ClassifyGatewayError("rename and archive", current.RunID, err)
		}
		// Removed runs are finalized even when the thread cannot be annotated.
		logRunFailure(ctx, log, ClassifyGatewayError("rename and archive", current.RunID, err))
	}
	if !didWork && err == nil {
		log.DebugContext(ctx, "thread was already archived", "run_id", current.RunID, "thread_id", current.ThreadID)
	}
	if ctx.Err() != nil {
		return run.SweepSkip, ctx.Err()
	}

	res, err := run.ApplyFinalized(current, plan.Outcome)
	if err != nil {
		return run.SweepSkip, invalidStateError("finalize", current.RunID, err)
	}
	if err := s.runs.Update(ctx, runToRecord(res.Run)); err != nil {
		return run.SweepSkip, storeError("record finalize", current.RunID, err)
	}

	log.InfoContext(ctx, "run finalized", "run_id", current.RunID, "thread_id", current.ThreadID,
		"outcome", plan.Outcome.String(), "symbol", plan.Symbol)
	return plan.Action, nil
}

// lookup fetches the candidate's source status.
// A not-found error is the removal signal, not a failure.
func (s *SweepReconciler) lookup(ctx context.Context, log *slog.Logger, current run.Run) (run.SweepInput, error) {
	status, err := s.source.GetStatus(ctx, current.RunID)
	if err != nil {
		classified := ClassifySourceError("get status", current.RunID, err, s.marker)
		if IsKind(classified, KindSourceNotFound) {
			log.InfoContext(ctx, "run removed from source queue", "run_id", current.RunID)
			return run.SweepInput{Removed: true}, nil
		}
		return run.SweepInput{}, classified
	}

	st, err := run.ParseExternalState(status.Status)
	if err != nil {
		// Unknown never overwrites the recorded state; retry next cycle.
		log.WarnContext(ctx, "unrecognised source status", "run_id", current.RunID, "status", status.Status)
		return run.SweepInput{Status: run.ExternalUnknown}, nil
	}
	return run.SweepInput{Status: st}, nil
}

// postRemovalNotice tells the thread its run left the queue. Best-effort.
func (s *SweepReconciler) postRemovalNotice(ctx context.Context, log *slog.Logger, current run.Run) {
	if _, err := s.gateway.CreateMessage(ctx, current.ThreadID, announce.RemovalNotice); err != nil {
		log.WarnContext(ctx, "removal notice not posted", "run_id", current.RunID,
			"thread_id", current.ThreadID, "error", err)
	}
}
