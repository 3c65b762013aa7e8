package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/queuebot/internal/core/run"
	"github.com/example/queuebot/internal/ports/secondary"
)

// ErrorKind is the closed set of failure classes the reconcilers act on.
type ErrorKind int

const (
	KindConfig ErrorKind = iota + 1
	KindStore
	KindRateLimited
	KindGatewayNotFound
	KindValidation
	KindGateway
	KindSourceNotFound
	KindSource
	KindInvalidState
)

var kindNames = map[ErrorKind]string{
	KindConfig:          "config",
	KindStore:           "store",
	KindRateLimited:     "rate_limited",
	KindGatewayNotFound: "gateway_not_found",
	KindValidation:      "validation",
	KindGateway:         "gateway",
	KindSourceNotFound:  "source_not_found",
	KindSource:          "source",
	KindInvalidState:    "invalid_state",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// BotError is a classified failure of one operation, optionally scoped to a run.
type BotError struct {
	Kind  ErrorKind
	Op    string
	RunID string
	Err   error
}

func (e *BotError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.RunID != "" {
		fmt.Fprintf(&b, " (run %s)", e.RunID)
	}
	fmt.Fprintf(&b, ": %s", e.Kind)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *BotError) Unwrap() error { return e.Err }

func newBotError(kind ErrorKind, op, runID string, err error) *BotError {
	return &BotError{Kind: kind, Op: op, RunID: runID, Err: err}
}

// KindOf returns the kind of the first BotError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var be *BotError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// ClassifyGatewayError converts a notification gateway error into a BotError.
func ClassifyGatewayError(op, runID string, err error) error {
	if err == nil {
		return nil
	}
	var be *BotError
	if errors.As(err, &be) {
		return withRunID(be, runID)
	}

	var ve *secondary.ValidationError
	switch {
	case errors.As(err, &ve):
		return newBotError(KindValidation, op, runID, err)
	case isRateLimited(err):
		return newBotError(KindRateLimited, op, runID, err)
	case secondary.IsNotFound(err):
		return newBotError(KindGatewayNotFound, op, runID, err)
	default:
		return newBotError(KindGateway, op, runID, err)
	}
}

// ClassifySourceError converts a submission source error into a BotError.
// The source signals a removed submission only through its error text, so
// an error containing notFoundMarker is classified as KindSourceNotFound.
func ClassifySourceError(op, runID string, err error, notFoundMarker string) error {
	if err == nil {
		return nil
	}
	var be *BotError
	if errors.As(err, &be) {
		return withRunID(be, runID)
	}
	if notFoundMarker != "" && strings.Contains(err.Error(), notFoundMarker) {
		return newBotError(KindSourceNotFound, op, runID, err)
	}
	return newBotError(KindSource, op, runID, err)
}

func storeError(op, runID string, err error) error {
	if err == nil {
		return nil
	}
	return newBotError(KindStore, op, runID, err)
}

func invalidStateError(op, runID string, err error) error {
	if !errors.Is(err, run.ErrInvalidState) {
		err = fmt.Errorf("%w: %v", run.ErrInvalidState, err)
	}
	return newBotError(KindInvalidState, op, runID, err)
}

func isRateLimited(err error) bool {
	_, ok := secondary.AsRateLimited(err)
	return ok
}

// withRunID copies be with RunID filled in when it was unset.
func withRunID(be *BotError, runID string) *BotError {
	if be.RunID != "" || runID == "" {
		return be
	}
	cp := *be
	cp.RunID = runID
	return &cp
}
