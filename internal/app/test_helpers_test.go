package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/queuebot/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure mocks implement the interfaces
var (
	_ secondary.RunRepository           = (*mockRunRepository)(nil)
	_ secondary.SubmissionSource        = (*mockSource)(nil)
	_ secondary.NotificationGateway     = (*mockGateway)(nil)
	_ secondary.CategoryAliasRepository = (*mockAliasRepository)(nil)
)

// mockRunRepository implements secondary.RunRepository in memory.
type mockRunRepository struct {
	mu      sync.Mutex
	nextID  int64
	runs    map[int64]*secondary.RunRecord
	calls   []string
	updates int

	insertErr    error
	loadAllErr   error
	loadWhereErr error
	updateErrFor map[string]error // by run ID
}

func newMockRunRepository() *mockRunRepository {
	return &mockRunRepository{
		runs:         make(map[int64]*secondary.RunRecord),
		updateErrFor: make(map[string]error),
	}
}

// seed stores a record as-is and returns its ID.
func (m *mockRunRepository) seed(runID, threadID, state, srcState string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.runs[m.nextID] = &secondary.RunRecord{
		ID:       m.nextID,
		RunID:    runID,
		ThreadID: threadID,
		State:    state,
		SrcState: srcState,
	}
	return m.nextID
}

// get returns a copy of the stored record for runID, or nil.
func (m *mockRunRepository) get(runID string) *secondary.RunRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runs {
		if r.RunID == runID {
			cp := *r
			return &cp
		}
	}
	return nil
}

func (m *mockRunRepository) sorted() []*secondary.RunRecord {
	out := make([]*secondary.RunRecord, 0, len(m.runs))
	for _, r := range m.runs {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockRunRepository) Insert(ctx context.Context, run *secondary.RunRecord) (*secondary.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "Insert")
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	for _, r := range m.runs {
		if r.RunID == run.RunID {
			return nil, fmt.Errorf("UNIQUE constraint failed: runs.run_id")
		}
	}
	m.nextID++
	cp := *run
	cp.ID = m.nextID
	m.runs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockRunRepository) Update(ctx context.Context, run *secondary.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "Update")
	if err := m.updateErrFor[run.RunID]; err != nil {
		return err
	}
	if _, ok := m.runs[run.ID]; !ok {
		return fmt.Errorf("run %d not found", run.ID)
	}
	cp := *run
	m.runs[run.ID] = &cp
	m.updates++
	return nil
}

func (m *mockRunRepository) LoadAll(ctx context.Context) ([]*secondary.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "LoadAll")
	if m.loadAllErr != nil {
		return nil, m.loadAllErr
	}
	return m.sorted(), nil
}

func (m *mockRunRepository) LoadWhere(ctx context.Context, state, srcState string) ([]*secondary.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "LoadWhere")
	if m.loadWhereErr != nil {
		return nil, m.loadWhereErr
	}
	var out []*secondary.RunRecord
	for _, r := range m.sorted() {
		if r.State == state && r.SrcState == srcState {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRunRepository) LoadByExternalID(ctx context.Context, runID string) (*secondary.RunRecord, error) {
	return m.get(runID), nil
}

// mockSource implements secondary.SubmissionSource.
type mockSource struct {
	subs       []*secondary.Submission
	listErr    error
	statuses   map[string]string
	statusErrs map[string]error
	categories []*secondary.Category
	catErr     error

	statusCalls []string
	catCalls    int
}

func newMockSource() *mockSource {
	return &mockSource{
		statuses:   make(map[string]string),
		statusErrs: make(map[string]error),
	}
}

func (m *mockSource) ListNew(ctx context.Context) ([]*secondary.Submission, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.subs, nil
}

func (m *mockSource) GetStatus(ctx context.Context, runID string) (*secondary.SubmissionStatus, error) {
	m.statusCalls = append(m.statusCalls, runID)
	if err := m.statusErrs[runID]; err != nil {
		return nil, err
	}
	status, ok := m.statuses[runID]
	if !ok {
		status = "new"
	}
	return &secondary.SubmissionStatus{ID: runID, Status: status}, nil
}

func (m *mockSource) ListCategories(ctx context.Context) ([]*secondary.Category, error) {
	m.catCalls++
	if m.catErr != nil {
		return nil, m.catErr
	}
	return m.categories, nil
}

type messageCall struct {
	ChannelID string
	Content   string
}

type renameCall struct {
	ThreadID string
	Symbol   string
}

// mockGateway implements secondary.NotificationGateway and records every call.
type mockGateway struct {
	mu       sync.Mutex
	threadN  int
	titles   []string
	messages []messageCall
	renames  []renameCall

	createThreadErr  error
	createMessageErr error
	messageErrFor    map[string]error // by channel ID
	renameErr        error
	alreadyArchived  bool
	rateLimit        *secondary.RateLimitInfo
}

func newMockGateway() *mockGateway {
	return &mockGateway{messageErrFor: make(map[string]error)}
}

func (m *mockGateway) CreateThread(ctx context.Context, title string) (string, *secondary.RateLimitInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titles = append(m.titles, title)
	if m.createThreadErr != nil {
		return "", m.rateLimit, m.createThreadErr
	}
	m.threadN++
	return fmt.Sprintf("thread-%d", m.threadN), m.rateLimit, nil
}

func (m *mockGateway) CreateMessage(ctx context.Context, channelID, content string) (*secondary.RateLimitInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, messageCall{ChannelID: channelID, Content: content})
	if err := m.messageErrFor[channelID]; err != nil {
		return m.rateLimit, err
	}
	return m.rateLimit, m.createMessageErr
}

func (m *mockGateway) RenameAndArchive(ctx context.Context, threadID, symbol string) (bool, *secondary.RateLimitInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renames = append(m.renames, renameCall{ThreadID: threadID, Symbol: symbol})
	if m.renameErr != nil {
		return false, m.rateLimit, m.renameErr
	}
	return !m.alreadyArchived, m.rateLimit, nil
}

func (m *mockGateway) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.titles) + len(m.messages) + len(m.renames)
}

// mockAliasRepository implements secondary.CategoryAliasRepository.
type mockAliasRepository struct {
	aliases map[string]*secondary.CategoryAliasRecord // by game/category
	listErr error
}

func newMockAliasRepository() *mockAliasRepository {
	return &mockAliasRepository{aliases: make(map[string]*secondary.CategoryAliasRecord)}
}

func (m *mockAliasRepository) List(ctx context.Context, gameID string) ([]*secondary.CategoryAliasRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.CategoryAliasRecord
	for _, a := range m.aliases {
		if a.GameID == gameID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (m *mockAliasRepository) Upsert(ctx context.Context, alias *secondary.CategoryAliasRecord) error {
	cp := *alias
	m.aliases[alias.GameID+"/"+alias.CategoryID] = &cp
	return nil
}

func (m *mockAliasRepository) Delete(ctx context.Context, gameID, categoryID string) error {
	key := gameID + "/" + categoryID
	if _, ok := m.aliases[key]; !ok {
		return errors.New("no alias for category " + categoryID)
	}
	delete(m.aliases, key)
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

// recordingSleeper records requested sleeps without blocking.
type recordingSleeper struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
	return nil
}

func (s *recordingSleeper) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.sleeps...)
}

// sourceNotFound mimics the source's removed-run error text.
var sourceNotFound = errors.New("get run: HTTP 404: The requested run could not be found.")

const testMarker = "could not be found"

func alttpCategories() []*secondary.Category {
	return []*secondary.Category{
		{
			ID:   "nmg",
			Name: "No Major Glitches",
			Variables: []*secondary.CategoryVariable{
				{ID: "platform", Values: map[string]string{"snes": "SNES"}},
				{ID: "sub", IsSubcategory: true, Values: map[string]string{"any": "Any%", "hundo": "100%"}},
			},
		},
		{ID: "mg", Name: "Major Glitches"},
	}
}
