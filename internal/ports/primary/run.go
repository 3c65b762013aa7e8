package primary

import "context"

// RunService defines the primary port for inspecting run records.
type RunService interface {
	// ListRuns lists runs with optional state filters.
	ListRuns(ctx context.Context, filters RunFilters) ([]*Run, error)

	// GetRun retrieves a run by its source run ID.
	GetRun(ctx context.Context, runID string) (*Run, error)

	// CheckRuns audits every record against the lifecycle invariants.
	CheckRuns(ctx context.Context) ([]*RunProblem, error)
}

// RunFilters contains filter options for listing runs.
type RunFilters struct {
	State    string
	SrcState string
}

// Run represents a run record at the port boundary.
type Run struct {
	ID        int64
	RunID     string
	Submitted string
	ThreadID  string
	State     string
	SrcState  string
	CreatedAt string
	UpdatedAt string
}

// RunProblem describes a record that fails an audit check.
// Stalled problems are not invariant violations: the run is waiting on a
// step that intake can no longer resume because the source stopped listing it.
type RunProblem struct {
	RunID   string
	Stalled bool
	Problem string
}

// AliasService defines the primary port for category alias management.
type AliasService interface {
	// ListAliases lists the aliases of the configured game.
	ListAliases(ctx context.Context) ([]*CategoryAlias, error)

	// SetAlias creates or replaces a category alias.
	SetAlias(ctx context.Context, categoryID, alias string) error

	// RemoveAlias deletes a category alias.
	RemoveAlias(ctx context.Context, categoryID string) error
}

// CategoryAlias represents a category alias at the port boundary.
type CategoryAlias struct {
	GameID     string
	CategoryID string
	Alias      string
}
