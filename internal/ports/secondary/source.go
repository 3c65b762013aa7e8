package secondary

import "context"

// SubmissionSource defines the secondary port for the external submission queue.
type SubmissionSource interface {
	// ListNew returns every submission awaiting verification, oldest submitted first.
	ListNew(ctx context.Context) ([]*Submission, error)

	// GetStatus returns a submission's current verification status.
	// A removed submission is reported through the error payload.
	GetStatus(ctx context.Context, runID string) (*SubmissionStatus, error)

	// ListCategories returns the game's categories with their variables.
	ListCategories(ctx context.Context) ([]*Category, error)
}

// Submission is one queued entry from the source.
type Submission struct {
	ID          string
	Weblink     string
	CategoryID  string
	Values      map[string]string // variable ID -> value ID
	PlayerName  string            // first embedded player; empty if none
	Submitted   string
	PrimaryTime float64 // seconds
}

// SubmissionStatus is a submission's current verification status.
type SubmissionStatus struct {
	ID     string
	Status string // "new", "verified" or "rejected"
}

// Category is a game category with its variables.
type Category struct {
	ID        string
	Name      string
	Variables []*CategoryVariable
}

// CategoryVariable is a category variable; Values maps value ID to label.
type CategoryVariable struct {
	ID            string
	IsSubcategory bool
	Values        map[string]string
}
