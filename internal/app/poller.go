package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/queuebot/internal/logging"
	"github.com/example/queuebot/internal/ports/primary"
)

// Poller drives ReconcileService cycles on a fixed interval.
// The first cycle starts immediately. A cycle that overruns the interval
// delays the next one; cycles never overlap.
type Poller struct {
	service  primary.ReconcileService
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewPoller creates a Poller.
func NewPoller(service primary.ReconcileService, interval time.Duration) *Poller {
	return &Poller{
		service:  service,
		interval: interval,
		now:      time.Now,
		logger:   logging.New("poller"),
	}
}

// Run blocks until ctx is done. Cycle failures are logged and retried on
// the next tick.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "poller started", "interval", p.interval)

	for {
		start := p.now()
		report, err := p.service.RunCycle(ctx)
		if err != nil {
			p.logger.ErrorContext(ctx, "cycle finished with errors", "error", err)
		}
		if report != nil {
			p.logger.DebugContext(ctx, "cycle finished", "cycle_id", report.CycleID, "elapsed", p.now().Sub(start))
		}

		if ctx.Err() != nil {
			p.logger.InfoContext(ctx, "poller stopped")
			return nil
		}

		delay := p.interval - p.now().Sub(start)
		if delay < 0 {
			p.logger.WarnContext(ctx, "cycle overran poll interval", "overrun", -delay)
			delay = 0
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.InfoContext(ctx, "poller stopped")
			return nil
		case <-timer.C:
		}
	}
}
