// Package app contains the application services that drive the reconciliation engine.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/example/queuebot/internal/ctxutil"
	"github.com/example/queuebot/internal/logging"
	"github.com/example/queuebot/internal/ports/primary"
)

// ReconcileServiceImpl implements the ReconcileService interface.
type ReconcileServiceImpl struct {
	sweep  *SweepReconciler
	intake *IntakeReconciler
	newID  func() string
	logger *slog.Logger
}

// NewReconcileService creates a new ReconcileService with injected dependencies.
func NewReconcileService(sweep *SweepReconciler, intake *IntakeReconciler) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		sweep:  sweep,
		intake: intake,
		newID:  newCycleID,
		logger: logging.New("reconcile"),
	}
}

// RunCycle runs Sweep then Intake under a fresh cycle ID.
// Intake still runs when Sweep fails at the cycle level.
func (s *ReconcileServiceImpl) RunCycle(ctx context.Context) (*primary.CycleReport, error) {
	cycleID := ctxutil.CycleIDFromContext(ctx)
	if cycleID == "" {
		cycleID = s.newID()
		ctx = ctxutil.WithCycleID(ctx, cycleID)
	}
	log := s.logger.With("cycle_id", cycleID)
	log.DebugContext(ctx, "cycle started")

	report := &primary.CycleReport{CycleID: cycleID}

	var errs []error
	sweep, err := s.Sweep(ctx)
	report.Sweep = sweep
	if err != nil {
		log.ErrorContext(ctx, "sweep failed", "error", err)
		errs = append(errs, err)
	}

	if ctx.Err() == nil {
		intake, err := s.Intake(ctx)
		report.Intake = intake
		if err != nil {
			log.ErrorContext(ctx, "intake failed", "error", err)
			errs = append(errs, err)
		}
	}

	return report, errors.Join(errs...)
}

// Sweep runs one sweep pass.
func (s *ReconcileServiceImpl) Sweep(ctx context.Context) (*primary.SweepReport, error) {
	return s.sweep.Run(ctx)
}

// Intake runs one intake pass.
func (s *ReconcileServiceImpl) Intake(ctx context.Context) (*primary.IntakeReport, error) {
	return s.intake.Run(ctx)
}

func newCycleID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Ensure ReconcileServiceImpl implements the interface
var _ primary.ReconcileService = (*ReconcileServiceImpl)(nil)
