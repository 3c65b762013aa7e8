// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/queuebot/internal/ports/secondary"
)

const runColumns = "id, run_id, submitted, thread_id, state, src_state, created_at, updated_at"

// RunRepository implements secondary.RunRepository with SQLite.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new SQLite run repository.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Insert persists a new run and returns it with its assigned ID.
func (r *RunRepository) Insert(ctx context.Context, run *secondary.RunRecord) (*secondary.RunRecord, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, submitted, thread_id, state, src_state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		run.RunID, nullString(run.Submitted), nullString(run.ThreadID), run.State, run.SrcState,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read id of run %s: %w", run.RunID, err)
	}

	return r.getByID(ctx, id)
}

// Update writes the mutable fields of an existing run.
func (r *RunRepository) Update(ctx context.Context, run *secondary.RunRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE runs
		 SET submitted = ?, thread_id = ?, state = ?, src_state = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullString(run.Submitted), nullString(run.ThreadID), run.State, run.SrcState, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", run.RunID, err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("run %d not found", run.ID)
	}

	return nil
}

// LoadAll retrieves every run ordered by ID.
func (r *RunRepository) LoadAll(ctx context.Context) ([]*secondary.RunRecord, error) {
	return r.query(ctx, "SELECT "+runColumns+" FROM runs ORDER BY id ASC")
}

// LoadWhere retrieves runs in the given local and source state.
func (r *RunRepository) LoadWhere(ctx context.Context, state, srcState string) ([]*secondary.RunRecord, error) {
	return r.query(ctx,
		"SELECT "+runColumns+" FROM runs WHERE state = ? AND src_state = ? ORDER BY id ASC",
		state, srcState,
	)
}

// LoadByExternalID retrieves a run by its source run ID, or nil if absent.
func (r *RunRepository) LoadByExternalID(ctx context.Context, runID string) (*secondary.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID)
	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return record, nil
}

func (r *RunRepository) getByID(ctx context.Context, id int64) (*secondary.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return record, nil
}

func (r *RunRepository) query(ctx context.Context, query string, args ...any) ([]*secondary.RunRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*secondary.RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*secondary.RunRecord, error) {
	var (
		submitted sql.NullString
		threadID  sql.NullString
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	record := &secondary.RunRecord{}
	err := s.Scan(&record.ID, &record.RunID, &submitted, &threadID,
		&record.State, &record.SrcState, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.Submitted = submitted.String
	record.ThreadID = threadID.String
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)

	return record, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(time.RFC3339)
}

// Ensure RunRepository implements the interface
var _ secondary.RunRepository = (*RunRepository)(nil)
