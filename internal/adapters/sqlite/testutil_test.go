// Package sqlite_test contains integration tests for SQLite repositories.
//
// All test setup goes through setupTestDB, which loads db.GetSchemaSQL()
// so tests run against the authoritative schema.
// Do not hardcode CREATE TABLE statements in test files; use setupTestDB()
// and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/queuebot/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedRun inserts a run row directly and returns its ID.
func seedRun(t *testing.T, db *sql.DB, runID, threadID, state, srcState string) int64 {
	t.Helper()
	var thread sql.NullString
	if threadID != "" {
		thread = sql.NullString{String: threadID, Valid: true}
	}
	result, err := db.Exec(
		"INSERT INTO runs (run_id, submitted, thread_id, state, src_state) VALUES (?, '2024-05-01T12:00:00Z', ?, ?, ?)",
		runID, thread, state, srcState,
	)
	if err != nil {
		t.Fatalf("failed to seed run: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}
