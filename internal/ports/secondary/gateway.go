package secondary

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// NotificationGateway defines the secondary port for the chat platform.
// Every call may return a rate-limit descriptor; nil means none was reported.
type NotificationGateway interface {
	// CreateThread opens a thread in the configured channel and returns its ID.
	CreateThread(ctx context.Context, title string) (string, *RateLimitInfo, error)

	// CreateMessage posts content into a channel or thread.
	CreateMessage(ctx context.Context, channelID, content string) (*RateLimitInfo, error)

	// RenameAndArchive prefixes the thread name with symbol and archives it.
	// didWork is false when the thread was already archived.
	RenameAndArchive(ctx context.Context, threadID, symbol string) (didWork bool, rl *RateLimitInfo, err error)
}

// RateLimitInfo is the rate-limit descriptor returned alongside a response.
type RateLimitInfo struct {
	Remaining  uint64
	ResetAfter time.Duration
	Bucket     string
}

// ErrNotFound is matched (via errors.Is) by gateway errors with not-found semantics.
var ErrNotFound = errors.New("not found")

// RateLimitedError is returned when a call was refused for exceeding the rate limit.
type RateLimitedError struct {
	RetryAfter time.Duration
	Global     bool
	Message    string
}

func (e *RateLimitedError) Error() string {
	scope := "bucket"
	if e.Global {
		scope = "global"
	}
	return fmt.Sprintf("rate limited (%s), retry after %s: %s", scope, e.RetryAfter, e.Message)
}

// ValidationError is returned when a request is rejected as malformed before
// or by the remote service.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + e.Reason
}

// IsNotFound reports whether err has not-found semantics.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// AsRateLimited extracts a RateLimitedError from err's chain.
func AsRateLimited(err error) (*RateLimitedError, bool) {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
