package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/example/queuebot/internal/logging"
	"github.com/example/queuebot/internal/ports/secondary"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RateLimitedGateway wraps a NotificationGateway with the rate-limit policy:
// it blocks for reset-after whenever a response reports no remaining calls,
// and sleeps for retry-after before surfacing a rate-limited failure.
// Errors it returns are classified as *BotError.
type RateLimitedGateway struct {
	next   secondary.NotificationGateway
	sleep  Sleeper
	logger *slog.Logger

	mu      sync.Mutex
	buckets map[string]secondary.RateLimitInfo
}

// NewRateLimitedGateway wraps next. A nil sleep uses SleepContext.
func NewRateLimitedGateway(next secondary.NotificationGateway, sleep Sleeper) *RateLimitedGateway {
	if sleep == nil {
		sleep = SleepContext
	}
	return &RateLimitedGateway{
		next:    next,
		sleep:   sleep,
		logger:  logging.New("ratelimit"),
		buckets: make(map[string]secondary.RateLimitInfo),
	}
}

// CreateThread implements secondary.NotificationGateway.
func (g *RateLimitedGateway) CreateThread(ctx context.Context, title string) (string, *secondary.RateLimitInfo, error) {
	id, rl, err := g.next.CreateThread(ctx, title)
	return id, rl, g.settle(ctx, "create thread", rl, err)
}

// CreateMessage implements secondary.NotificationGateway.
func (g *RateLimitedGateway) CreateMessage(ctx context.Context, channelID, content string) (*secondary.RateLimitInfo, error) {
	rl, err := g.next.CreateMessage(ctx, channelID, content)
	return rl, g.settle(ctx, "create message", rl, err)
}

// RenameAndArchive implements secondary.NotificationGateway.
func (g *RateLimitedGateway) RenameAndArchive(ctx context.Context, threadID, symbol string) (bool, *secondary.RateLimitInfo, error) {
	didWork, rl, err := g.next.RenameAndArchive(ctx, threadID, symbol)
	return didWork, rl, g.settle(ctx, "rename and archive", rl, err)
}

// LastRateLimit returns the most recent descriptor seen for bucket.
func (g *RateLimitedGateway) LastRateLimit(bucket string) (secondary.RateLimitInfo, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	info, ok := g.buckets[bucket]
	return info, ok
}

// settle applies the throttling policy after a call and classifies its error.
// A shutdown that interrupts a pre-emptive sleep does not turn a successful
// call into a failure.
func (g *RateLimitedGateway) settle(ctx context.Context, op string, rl *secondary.RateLimitInfo, err error) error {
	if rl != nil {
		g.mu.Lock()
		g.buckets[rl.Bucket] = *rl
		g.mu.Unlock()

		if rl.Remaining == 0 && rl.ResetAfter > 0 {
			g.logger.InfoContext(ctx, "rate limit exhausted, waiting for reset",
				"op", op, "bucket", rl.Bucket, "reset_after", rl.ResetAfter)
			if serr := g.sleep(ctx, rl.ResetAfter); serr != nil {
				g.logger.DebugContext(ctx, "rate limit wait interrupted", "op", op, "error", serr)
			}
		}
	}

	if err == nil {
		return nil
	}

	if rle, ok := secondary.AsRateLimited(err); ok {
		g.logger.WarnContext(ctx, "rate limited, backing off",
			"op", op, "retry_after", rle.RetryAfter, "global", rle.Global)
		if serr := g.sleep(ctx, rle.RetryAfter); serr != nil {
			g.logger.DebugContext(ctx, "rate limit backoff interrupted", "op", op, "error", serr)
		}
	}
	return ClassifyGatewayError(op, "", err)
}

// Ensure RateLimitedGateway implements the interface
var _ secondary.NotificationGateway = (*RateLimitedGateway)(nil)
