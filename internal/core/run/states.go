// Package run contains the pure business logic for the run lifecycle.
// This is part of the Functional Core - no I/O, only pure functions.
package run

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned when a record violates a local invariant
// (e.g. a thread-bearing state without a thread reference).
var ErrInvalidState = errors.New("invalid run state")

// LocalState tracks progress of our own side effects for a run.
// Values are ordered: a run only ever moves to a higher value.
type LocalState uint8

const (
	LocalNone LocalState = iota
	LocalThreadCreated
	LocalMessageCreated
	LocalFinalized
)

// ExternalState is the last known verification outcome reported by the source.
type ExternalState uint8

const (
	// ExternalUnknown is the parse sentinel for unrecognised stored or remote values.
	ExternalUnknown ExternalState = iota
	ExternalNew
	ExternalVerified
	ExternalRejected
	// ExternalRemoved marks a submission that disappeared from the source.
	ExternalRemoved
)

// localStateNames is the canonical text form of each LocalState as persisted.
var localStateNames = map[LocalState]string{
	LocalNone:           "none",
	LocalThreadCreated:  "thread_created",
	LocalMessageCreated: "message_created",
	LocalFinalized:      "finalized",
}

// externalStateNames doubles as the source API's status vocabulary
// ("new", "verified", "rejected").
var externalStateNames = map[ExternalState]string{
	ExternalUnknown:  "unknown",
	ExternalNew:      "new",
	ExternalVerified: "verified",
	ExternalRejected: "rejected",
	ExternalRemoved:  "removed",
}

var (
	localStateByName    = invert(localStateNames)
	externalStateByName = invert(externalStateNames)
)

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// String returns the canonical persisted form.
func (s LocalState) String() string {
	if name, ok := localStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("local_state(%d)", uint8(s))
}

// String returns the canonical persisted form.
func (s ExternalState) String() string {
	if name, ok := externalStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("external_state(%d)", uint8(s))
}

// ParseLocalState maps persisted text back to a LocalState.
// Unrecognised text is an error; there is no default.
func ParseLocalState(s string) (LocalState, error) {
	if st, ok := localStateByName[s]; ok {
		return st, nil
	}
	return 0, fmt.Errorf("%w: unrecognised local state %q", ErrInvalidState, s)
}

// ParseExternalState maps persisted or remote text to an ExternalState.
// Unrecognised text yields ExternalUnknown together with an error.
// "unknown" itself is never a valid input.
func ParseExternalState(s string) (ExternalState, error) {
	if st, ok := externalStateByName[s]; ok && st != ExternalUnknown {
		return st, nil
	}
	return ExternalUnknown, fmt.Errorf("unrecognised external state %q", s)
}

// IsTerminal reports whether the verification outcome is final.
func (s ExternalState) IsTerminal() bool {
	return s == ExternalVerified || s == ExternalRejected || s == ExternalRemoved
}

// HasThread reports whether a local state implies a thread reference.
func (s LocalState) HasThread() bool {
	return s >= LocalThreadCreated
}
