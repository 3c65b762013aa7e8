package run

import (
	"errors"
	"testing"
)

func TestApplyThreadCreated(t *testing.T) {
	tests := []struct {
		name        string
		run         Run
		threadID    string
		wantChanged bool
		wantState   LocalState
		wantThread  string
		wantErr     bool
	}{
		{
			name:        "new run gets thread",
			run:         New("abc", "2024-01-01T00:00:00Z"),
			threadID:    "111",
			wantChanged: true,
			wantState:   LocalThreadCreated,
			wantThread:  "111",
		},
		{
			name:       "already has thread is a no-op",
			run:        Run{RunID: "abc", State: LocalThreadCreated, ThreadID: "111", SrcState: ExternalNew},
			threadID:   "222",
			wantState:  LocalThreadCreated,
			wantThread: "111",
		},
		{
			name:       "finalized run is a no-op",
			run:        Run{RunID: "abc", State: LocalFinalized, ThreadID: "111", SrcState: ExternalVerified},
			threadID:   "222",
			wantState:  LocalFinalized,
			wantThread: "111",
		},
		{
			name:      "empty thread id is rejected",
			run:       New("abc", ""),
			threadID:  "",
			wantState: LocalNone,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ApplyThreadCreated(tt.run, tt.threadID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyThreadCreated() error = %v, wantErr %v", err, tt.wantErr)
			}
			if res.Changed != tt.wantChanged {
				t.Errorf("Changed = %v, want %v", res.Changed, tt.wantChanged)
			}
			if res.Run.State != tt.wantState {
				t.Errorf("State = %v, want %v", res.Run.State, tt.wantState)
			}
			if res.Run.ThreadID != tt.wantThread {
				t.Errorf("ThreadID = %q, want %q", res.Run.ThreadID, tt.wantThread)
			}
		})
	}
}

func TestApplyMessageCreated(t *testing.T) {
	t.Run("advances from thread created", func(t *testing.T) {
		r := Run{RunID: "abc", State: LocalThreadCreated, ThreadID: "111", SrcState: ExternalNew}
		res, err := ApplyMessageCreated(r)
		if err != nil {
			t.Fatalf("ApplyMessageCreated() error = %v", err)
		}
		if !res.Changed || res.Run.State != LocalMessageCreated {
			t.Errorf("got %+v, want changed to message_created", res)
		}
	})

	t.Run("missing thread id is an invariant violation", func(t *testing.T) {
		r := Run{RunID: "abc", State: LocalThreadCreated, SrcState: ExternalNew}
		res, err := ApplyMessageCreated(r)
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("error = %v, want ErrInvalidState", err)
		}
		if res.Changed || res.Run.State != LocalThreadCreated {
			t.Errorf("run should be untouched, got %+v", res.Run)
		}
	})

	t.Run("no-op before thread exists", func(t *testing.T) {
		res, err := ApplyMessageCreated(New("abc", ""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Changed || res.Run.State != LocalNone {
			t.Errorf("got %+v, want unchanged", res)
		}
	})

	t.Run("no-op once past message created", func(t *testing.T) {
		r := Run{RunID: "abc", State: LocalMessageCreated, ThreadID: "111", SrcState: ExternalNew}
		res, err := ApplyMessageCreated(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Changed || res.Run != r {
			t.Errorf("got %+v, want unchanged", res)
		}
	})
}

func TestApplyFinalized(t *testing.T) {
	awaiting := Run{RunID: "abc", State: LocalMessageCreated, ThreadID: "111", SrcState: ExternalNew}

	for _, outcome := range []ExternalState{ExternalVerified, ExternalRejected, ExternalRemoved} {
		t.Run(outcome.String(), func(t *testing.T) {
			res, err := ApplyFinalized(awaiting, outcome)
			if err != nil {
				t.Fatalf("ApplyFinalized() error = %v", err)
			}
			if !res.Changed {
				t.Fatal("expected change")
			}
			if res.Run.State != LocalFinalized || res.Run.SrcState != outcome {
				t.Errorf("got %v/%v, want finalized/%v", res.Run.State, res.Run.SrcState, outcome)
			}
		})
	}

	t.Run("non-terminal outcome is rejected", func(t *testing.T) {
		for _, outcome := range []ExternalState{ExternalNew, ExternalUnknown} {
			res, err := ApplyFinalized(awaiting, outcome)
			if err == nil {
				t.Errorf("ApplyFinalized(%v) expected error", outcome)
			}
			if res.Run != awaiting {
				t.Errorf("run should be untouched for %v", outcome)
			}
		}
	})

	t.Run("finalized run keeps its outcome", func(t *testing.T) {
		done := Run{RunID: "abc", State: LocalFinalized, ThreadID: "111", SrcState: ExternalVerified}
		res, err := ApplyFinalized(done, ExternalRejected)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Changed || res.Run.SrcState != ExternalVerified {
			t.Errorf("got %+v, want unchanged", res)
		}
	})

	t.Run("thread created state without thread id is a violation", func(t *testing.T) {
		broken := Run{RunID: "abc", State: LocalThreadCreated, SrcState: ExternalNew}
		_, err := ApplyFinalized(broken, ExternalVerified)
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("error = %v, want ErrInvalidState", err)
		}
	})
}

// Any sequence of steps leaves the local state non-decreasing and the
// thread reference present exactly when the state implies it.
func TestTransitions_MonotonicAndConsistent(t *testing.T) {
	type step func(Run) (TransitionResult, error)
	steps := map[string]step{
		"thread":   func(r Run) (TransitionResult, error) { return ApplyThreadCreated(r, "999") },
		"message":  ApplyMessageCreated,
		"verified": func(r Run) (TransitionResult, error) { return ApplyFinalized(r, ExternalVerified) },
		"removed":  func(r Run) (TransitionResult, error) { return ApplyFinalized(r, ExternalRemoved) },
	}
	sequences := [][]string{
		{"thread", "message", "verified"},
		{"message", "thread", "thread", "message", "removed", "thread"},
		{"verified", "thread", "verified", "message", "message", "removed"},
		{"thread", "removed", "message", "thread"},
	}

	for _, seq := range sequences {
		r := New("abc", "")
		for _, name := range seq {
			before := r
			res, err := steps[name](r)
			if err != nil {
				t.Fatalf("%v: step %s error = %v", seq, name, err)
			}
			r = res.Run
			if r.State < before.State {
				t.Fatalf("%v: step %s regressed %v -> %v", seq, name, before.State, r.State)
			}
			if err := CheckInvariants(r); err != nil {
				t.Fatalf("%v: step %s broke invariants: %v", seq, name, err)
			}
		}
	}
}

func TestCheckInvariants(t *testing.T) {
	tests := []struct {
		name    string
		run     Run
		wantErr bool
	}{
		{name: "new run", run: New("a", "")},
		{name: "thread created", run: Run{RunID: "a", State: LocalThreadCreated, ThreadID: "1", SrcState: ExternalNew}},
		{name: "finalized", run: Run{RunID: "a", State: LocalFinalized, ThreadID: "1", SrcState: ExternalRejected}},
		{name: "thread without state", run: Run{RunID: "a", State: LocalNone, ThreadID: "1", SrcState: ExternalNew}, wantErr: true},
		{name: "state without thread", run: Run{RunID: "a", State: LocalMessageCreated, SrcState: ExternalNew}, wantErr: true},
		{name: "finalized while new", run: Run{RunID: "a", State: LocalFinalized, ThreadID: "1", SrcState: ExternalNew}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInvariants(tt.run)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckInvariants() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
