package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/queuebot/internal/ports/secondary"
)

type intakeFixture struct {
	runs    *mockRunRepository
	source  *mockSource
	gateway *mockGateway
	sleeper *recordingSleeper
	intake  *IntakeReconciler
}

func newIntakeFixture() *intakeFixture {
	f := &intakeFixture{
		runs:    newMockRunRepository(),
		source:  newMockSource(),
		gateway: newMockGateway(),
		sleeper: &recordingSleeper{},
	}
	f.source.categories = alttpCategories()
	catalog := NewCategoryCatalog(f.source, newMockAliasRepository(), "alttp", time.Hour)
	gw := NewRateLimitedGateway(f.gateway, f.sleeper.Sleep)
	f.intake = NewIntakeReconciler(f.runs, f.source, gw, catalog, testMarker)
	return f
}

func submission(id string) *secondary.Submission {
	return &secondary.Submission{
		ID:          id,
		Weblink:     "https://www.speedrun.com/alttp/run/" + id,
		CategoryID:  "nmg",
		Values:      map[string]string{"sub": "any"},
		PlayerName:  "Andy",
		Submitted:   "2024-05-01T12:00:00Z",
		PrimaryTime: 5025,
	}
}

var ignoreRecordMeta = cmpopts.IgnoreFields(secondary.RunRecord{}, "ID", "CreatedAt", "UpdatedAt")

func TestIntake_NewSubmission(t *testing.T) {
	f := newIntakeFixture()
	f.source.subs = []*secondary.Submission{submission("abc")}

	report, err := f.intake.Run(context.Background())
	require.NoError(t, err)

	want := &secondary.RunRecord{
		RunID:     "abc",
		Submitted: "2024-05-01T12:00:00Z",
		ThreadID:  "thread-1",
		State:     "message_created",
		SrcState:  "new",
	}
	if diff := cmp.Diff(want, f.runs.get("abc"), ignoreRecordMeta); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"Andy - Any% No Major Glitches in 1h23m45s"}, f.gateway.titles)
	assert.Equal(t, []messageCall{{ChannelID: "thread-1", Content: "https://www.speedrun.com/alttp/run/abc"}}, f.gateway.messages)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Threads)
	assert.Equal(t, 1, report.Messages)
	assert.Zero(t, report.Failed)
}

func TestIntake_AlreadyOnboardedMakesNoGatewayCalls(t *testing.T) {
	f := newIntakeFixture()
	f.runs.seed("abc", "thread-9", "message_created", "new")
	f.source.subs = []*secondary.Submission{submission("abc")}

	report, err := f.intake.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, f.gateway.totalCalls())
	assert.Zero(t, f.runs.updates)
	assert.Equal(t, 1, report.Skipped)
}

func TestIntake_SubmissionListedTwiceInOnePass(t *testing.T) {
	f := newIntakeFixture()
	f.source.subs = []*secondary.Submission{submission("abc"), submission("def"), submission("abc")}

	report, err := f.intake.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 2, report.Threads)
	assert.Equal(t, 2, report.Messages)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Failed)
	assert.Len(t, f.gateway.titles, 2)
	assert.Equal(t, "message_created", f.runs.get("abc").State)
}

func TestIntake_FinalizedRunIsSkipped(t *testing.T) {
	f := newIntakeFixture()
	f.runs.seed("abc", "thread-9", "finalized", "verified")
	f.source.subs = []*secondary.Submission{submission("abc")}

	_, err := f.intake.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, f.gateway.totalCalls())
}

func TestIntake_ResumesRunStuckAtThreadCreated(t *testing.T) {
	f := newIntakeFixture()
	f.runs.seed("abc", "thread-7", "thread_created", "new")
	f.source.subs = []*secondary.Submission{submission("abc")}

	report, err := f.intake.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, f.gateway.titles, "no second thread for a resumed run")
	require.Len(t, f.gateway.messages, 1)
	assert.Equal(t, "thread-7", f.gateway.messages[0].ChannelID)
	assert.Equal(t, "message_created", f.runs.get("abc").State)
	assert.Equal(t, 1, report.Messages)
	assert.Zero(t, report.Created)
}

func TestIntake_ResumesRunStuckAtNone(t *testing.T) {
	f := newIntakeFixture()
	f.runs.seed("abc", "", "none", "new")
	f.source.subs = []*secondary.Submission{submission("abc")}

	_, err := f.intake.Run(context.Background())
	require.NoError(t, err)

	rec := f.runs.get("abc")
	assert.Equal(t, "message_created", rec.State)
	assert.Equal(t, "thread-1", rec.ThreadID)
	assert.NotContains(t, f.runs.calls, "Insert")
}

func TestIntake_MissingThreadIDIsInvalidState(t *testing.T) {
	f := newIntakeFixture()
	f.runs.seed("abc", "", "thread_created", "new")
	f.source.subs = []*secondary.Submission{submission("abc")}

	report, err := f.intake.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, f.gateway.totalCalls())
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "thread_created", f.runs.get("abc").State, "never auto-repaired")
}

func TestIntake_MessageFailureLeavesThreadRecorded(t *testing.T) {
	f := newIntakeFixture()
	f.gateway.createMessageErr = errors.New("boom")
	f.source.subs = []*secondary.Submission{submission("abc")}

	report, err := f.intake.Run(context.Background())
	require.NoError(t, err)

	rec := f.runs.get("abc")
	assert.Equal(t, "thread_created", rec.State)
	assert.Equal(t, "thread-1", rec.ThreadID)
	assert.Equal(t, 1, report.Failed)

	// Next cycle resumes with only the message.
	f.gateway.createMessageErr = nil
	_, err = f.intake.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.gateway.titles, 1)
	assert.Equal(t, "message_created", f.runs.get("abc").State)
}

func TestIntake_OneFailureDoesNotAbortBatch(t *testing.T) {
	f := newIntakeFixture()
	f.runs.seed("bad", "", "thread_created", "new")
	f.source.subs = []*secondary.Submission{submission("bad"), submission("good")}

	report, err := f.intake.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "message_created", f.runs.get("good").State)
}

func TestIntake_RateLimitedThreadAbandonsRun(t *testing.T) {
	f := newIntakeFixture()
	f.gateway.createThreadErr = &secondary.RateLimitedError{RetryAfter: 3 * time.Second}
	f.source.subs = []*secondary.Submission{submission("abc")}

	report, err := f.intake.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{3 * time.Second}, f.sleeper.recorded())
	assert.Equal(t, "none", f.runs.get("abc").State)
	assert.Empty(t, f.gateway.messages)
	assert.Equal(t, 1, report.Failed)
}

func TestIntake_UnknownCategoryFallsBack(t *testing.T) {
	f := newIntakeFixture()
	sub := submission("abc")
	sub.CategoryID = "does-not-exist"
	sub.PlayerName = ""
	sub.PrimaryTime = 1425.67
	f.source.subs = []*secondary.Submission{sub}

	_, err := f.intake.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Unknown player - Unknown category in 23m45.67s"}, f.gateway.titles)
}

func TestIntake_ListFailureIsCycleLevel(t *testing.T) {
	f := newIntakeFixture()
	f.source.listErr = errors.New("list runs: HTTP 503: Service Unavailable")

	_, err := f.intake.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindSource))
}

func TestIntake_StoreFailureIsCycleLevel(t *testing.T) {
	f := newIntakeFixture()
	f.runs.loadAllErr = errors.New("disk I/O error")

	_, err := f.intake.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindStore))
}

func TestIntake_ThreadRecordFailureCountsAsFailed(t *testing.T) {
	f := newIntakeFixture()
	f.runs.updateErrFor["abc"] = errors.New("database is locked")
	f.source.subs = []*secondary.Submission{submission("abc")}

	report, err := f.intake.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "none", f.runs.get("abc").State)
	assert.Empty(t, f.gateway.messages)
}
