// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// RunRepository defines the secondary port for run record persistence.
type RunRepository interface {
	// Insert persists a new run and returns it with its store-assigned ID.
	Insert(ctx context.Context, run *RunRecord) (*RunRecord, error)

	// Update writes every mutable field of an existing run.
	Update(ctx context.Context, run *RunRecord) error

	// LoadAll retrieves every run.
	LoadAll(ctx context.Context) ([]*RunRecord, error)

	// LoadWhere retrieves runs matching both state columns.
	LoadWhere(ctx context.Context, state, srcState string) ([]*RunRecord, error)

	// LoadByExternalID retrieves a run by its source run ID.
	// Returns nil, nil when no such run exists.
	LoadByExternalID(ctx context.Context, runID string) (*RunRecord, error)
}

// RunRecord represents a run as stored in persistence.
// State and SrcState hold the canonical text forms; the core parses them.
type RunRecord struct {
	ID        int64
	RunID     string
	Submitted string // empty when the source gave no submission time
	ThreadID  string // empty until a thread exists
	State     string
	SrcState  string
	CreatedAt string
	UpdatedAt string
}

// CategoryAliasRepository defines the secondary port for category display aliases.
type CategoryAliasRepository interface {
	// List retrieves the aliases configured for a game.
	List(ctx context.Context, gameID string) ([]*CategoryAliasRecord, error)

	// Upsert creates or replaces the alias for a category.
	Upsert(ctx context.Context, alias *CategoryAliasRecord) error

	// Delete removes the alias for a category.
	Delete(ctx context.Context, gameID, categoryID string) error
}

// CategoryAliasRecord renames a category in thread titles.
type CategoryAliasRecord struct {
	ID         int64
	GameID     string
	CategoryID string
	Alias      string
}
