package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete modern schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// Tests use this schema via GetSchemaSQL() instead of hardcoding their own,
// so a repository referencing a missing column fails with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Run `go test ./internal/db/...` to verify alignment
const SchemaSQL = `
-- Runs (one record per submission, keyed by source run id)
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	submitted TEXT,
	thread_id TEXT,
	state TEXT NOT NULL DEFAULT 'none',
	run_id TEXT NOT NULL UNIQUE,
	src_state TEXT NOT NULL DEFAULT 'new',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state, src_state);

-- Category aliases (display-name overrides per game)
CREATE TABLE IF NOT EXISTS category_aliases (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_src_id TEXT NOT NULL,
	category_src_id TEXT NOT NULL,
	alias TEXT NOT NULL,
	UNIQUE(game_src_id, category_src_id)
);
`

const schemaVersionSQL = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)
`

// InitSchema creates the database schema or migrates an existing one.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}
	if tableCount > 0 {
		return RunMigrations(db)
	}

	// No version table: either a fresh file or a store written by the
	// previous deployment, which tracked no versions at all.
	var legacyCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('runs', 'category_aliases')").Scan(&legacyCount)
	if err != nil {
		return err
	}
	if legacyCount > 0 {
		return RunMigrations(db)
	}

	// Completely fresh install - create modern schema directly and mark
	// every migration as applied.
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	for _, m := range migrations {
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
