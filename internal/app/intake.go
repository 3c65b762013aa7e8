package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/queuebot/internal/core/announce"
	"github.com/example/queuebot/internal/core/run"
	"github.com/example/queuebot/internal/ctxutil"
	"github.com/example/queuebot/internal/logging"
	"github.com/example/queuebot/internal/ports/primary"
	"github.com/example/queuebot/internal/ports/secondary"
)

// IntakeReconciler onboards new submissions: one record, one thread and one
// reference message per run. Runs left part-way by an earlier failure are
// resumed from the step they reached.
type IntakeReconciler struct {
	runs    secondary.RunRepository
	source  secondary.SubmissionSource
	gateway secondary.NotificationGateway
	catalog *CategoryCatalog
	marker  string
	logger  *slog.Logger
}

// NewIntakeReconciler creates an IntakeReconciler.
// gateway should already apply the rate-limit policy.
func NewIntakeReconciler(
	runs secondary.RunRepository,
	source secondary.SubmissionSource,
	gateway secondary.NotificationGateway,
	catalog *CategoryCatalog,
	notFoundMarker string,
) *IntakeReconciler {
	return &IntakeReconciler{
		runs:    runs,
		source:  source,
		gateway: gateway,
		catalog: catalog,
		marker:  notFoundMarker,
		logger:  logging.New("intake"),
	}
}

type intakeOutcome struct {
	created  bool
	thread   bool
	message  bool
	finished bool // nothing left to do for this run

	record *secondary.RunRecord // last committed record, nil if nothing was written
}

// Run performs one intake pass.
// Only cycle-level failures (store or source listing unavailable) are
// returned; per-run failures are logged and counted.
func (r *IntakeReconciler) Run(ctx context.Context) (*primary.IntakeReport, error) {
	log := r.logger.With("cycle_id", ctxutil.CycleIDFromContext(ctx))
	report := &primary.IntakeReport{}

	records, err := r.runs.LoadAll(ctx)
	if err != nil {
		return report, storeError("load runs", "", err)
	}
	known := make(map[string]*secondary.RunRecord, len(records))
	for _, rec := range records {
		known[rec.RunID] = rec
	}

	subs, err := r.source.ListNew(ctx)
	if err != nil {
		return report, ClassifySourceError("list new submissions", "", err, r.marker)
	}
	report.Listed = len(subs)

	var namer *CategoryNamer
	if r.catalog != nil && len(subs) > 0 {
		namer = r.catalog.Namer(ctx)
	}

	for _, sub := range subs {
		if ctx.Err() != nil {
			break
		}

		out, err := r.process(ctx, log, sub, known[sub.ID], namer)
		if out.record != nil {
			// Paging can list a submission twice while the queue shifts.
			known[sub.ID] = out.record
		}
		if out.created {
			report.Created++
		}
		if out.thread {
			report.Threads++
		}
		if out.message {
			report.Messages++
		}
		switch {
		case err != nil:
			report.Failed++
			logRunFailure(ctx, log, err)
		case out.finished && !out.thread && !out.message:
			report.Skipped++
		}
	}

	log.InfoContext(ctx, "intake complete",
		"listed", report.Listed, "created", report.Created, "threads", report.Threads,
		"messages", report.Messages, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

// process drives one submission as far as it can go this cycle.
// Each step is committed before the next one starts.
func (r *IntakeReconciler) process(ctx context.Context, log *slog.Logger, sub *secondary.Submission, existing *secondary.RunRecord, namer *CategoryNamer) (intakeOutcome, error) {
	var out intakeOutcome

	if existing == nil {
		inserted, err := r.runs.Insert(ctx, runToRecord(run.New(sub.ID, sub.Submitted)))
		if err != nil {
			return out, storeError("insert run", sub.ID, err)
		}
		out.created = true
		out.record = inserted
		log.InfoContext(ctx, "run recorded", "run_id", sub.ID)
		existing = inserted
	}

	current, err := recordToRun(existing)
	if err != nil {
		return out, invalidStateError("load run", sub.ID, err)
	}

	if current.IsFinalized() || current.SrcState.IsTerminal() {
		out.finished = true
		return out, nil
	}

	if run.CanCreateThread(current).Allowed {
		title := announce.ThreadTitle(sub.PlayerName, namer.CategoryName(sub.CategoryID, sub.Values), sub.PrimaryTime)
		threadID, _, err := r.gateway.CreateThread(ctx, title)
		if err != nil {
			return out, ClassifyGatewayError("create thread", current.RunID, err)
		}

		res, err := run.ApplyThreadCreated(current, threadID)
		if err != nil {
			return out, invalidStateError("record thread", current.RunID, err)
		}
		rec := runToRecord(res.Run)
		if err := r.runs.Update(ctx, rec); err != nil {
			// The thread exists but is not recorded; a retry creates another.
			return out, storeError("record thread", current.RunID, err)
		}
		current = res.Run
		out.record = rec
		out.thread = true
		log.InfoContext(ctx, "thread created", "run_id", current.RunID, "thread_id", threadID, "title", title)
	}

	guard := run.CanCreateMessage(current)
	if err := guard.Error(); err != nil {
		return out, invalidStateError("post message", current.RunID, err)
	}
	if guard.Allowed {
		if _, err := r.gateway.CreateMessage(ctx, current.ThreadID, announce.MessageContent(sub.Weblink)); err != nil {
			return out, ClassifyGatewayError("post message", current.RunID, err)
		}

		res, err := run.ApplyMessageCreated(current)
		if err != nil {
			return out, invalidStateError("record message", current.RunID, err)
		}
		rec := runToRecord(res.Run)
		if err := r.runs.Update(ctx, rec); err != nil {
			return out, storeError("record message", current.RunID, err)
		}
		current = res.Run
		out.record = rec
		out.message = true
		log.InfoContext(ctx, "reference message posted", "run_id", current.RunID, "thread_id", current.ThreadID)
	}

	out.finished = true
	return out, nil
}

// logRunFailure logs a per-run failure at a level matching its kind.
func logRunFailure(ctx context.Context, log *slog.Logger, err error) {
	kind, _ := KindOf(err)
	attrs := []any{"kind", kind.String(), "error", err}
	var be *BotError
	if errors.As(err, &be) {
		attrs = append(attrs, "run_id", be.RunID, "op", be.Op)
	}

	switch kind {
	case KindRateLimited:
		log.WarnContext(ctx, "run abandoned for this cycle: rate limited", attrs...)
	case KindGatewayNotFound:
		log.WarnContext(ctx, "thread not found", attrs...)
	case KindSourceNotFound:
		log.WarnContext(ctx, "submission not found at source", attrs...)
	case KindValidation:
		log.ErrorContext(ctx, "request rejected as invalid, likely a bug", attrs...)
	case KindInvalidState:
		log.ErrorContext(ctx, "run has invalid local state, skipping", attrs...)
	case KindStore:
		log.ErrorContext(ctx, "store operation failed", attrs...)
	default:
		log.WarnContext(ctx, "run step failed, will retry next cycle", attrs...)
	}
}
