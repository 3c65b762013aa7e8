package db

import (
	"database/sql"
	"fmt"

	"github.com/example/queuebot/internal/logging"
)

// Migration represents a database migration.
// Every step tolerates a store created by the previous deployment, which
// grew its tables without recording versions.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{Version: 1, Name: "create_runs", Up: migrationV1},
	{Version: 2, Name: "add_thread_and_state_to_runs", Up: migrationV2},
	{Version: 3, Name: "add_src_state_to_runs", Up: migrationV3},
	{Version: 4, Name: "create_category_aliases", Up: migrationV4},
	{Version: 5, Name: "normalize_state_spellings", Up: migrationV5},
	{Version: 6, Name: "add_timestamps_and_state_index", Up: migrationV6},
}

// LatestVersion returns the version a fully migrated store reports.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// CurrentVersion returns the highest applied migration version, 0 if none.
func CurrentVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil || exists == 0 {
		return 0, err
	}
	var v int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return v, nil
}

// RunMigrations executes all pending migrations
func RunMigrations(db *sql.DB) error {
	log := logging.New("db")

	if _, err := db.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		log.Info("running migration", "version", migration.Version, "name", migration.Name)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// columnExists reports whether table has a column named column.
func columnExists(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// addColumnIfMissing runs ALTER TABLE ... ADD COLUMN unless the column exists.
func addColumnIfMissing(tx *sql.Tx, table, column, definition string) error {
	exists, err := columnExists(tx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if _, err := tx.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)); err != nil {
		return fmt.Errorf("failed to add %s.%s: %w", table, column, err)
	}
	return nil
}

// migrationV1 creates the runs table and enforces one record per run id
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			submitted TEXT,
			run_id TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	// Older stores did not enforce uniqueness; keep the earliest record.
	_, err = tx.Exec(`
		DELETE FROM runs WHERE id NOT IN (SELECT MIN(id) FROM runs GROUP BY run_id)
	`)
	if err != nil {
		return fmt.Errorf("failed to remove duplicate runs: %w", err)
	}

	_, err = tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_runs_run_id ON runs(run_id)`)
	if err != nil {
		return fmt.Errorf("failed to create run_id index: %w", err)
	}
	return nil
}

// migrationV2 adds thread tracking to runs
func migrationV2(tx *sql.Tx) error {
	if err := addColumnIfMissing(tx, "runs", "thread_id", "TEXT"); err != nil {
		return err
	}
	return addColumnIfMissing(tx, "runs", "state", "TEXT NOT NULL DEFAULT 'none'")
}

// migrationV3 adds the source-side state to runs
func migrationV3(tx *sql.Tx) error {
	return addColumnIfMissing(tx, "runs", "src_state", "TEXT NOT NULL DEFAULT 'new'")
}

// migrationV4 creates the category alias table
func migrationV4(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS category_aliases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_src_id TEXT NOT NULL,
			category_src_id TEXT NOT NULL,
			alias TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create category_aliases table: %w", err)
	}

	// The newest alias wins when an older store holds duplicates.
	_, err = tx.Exec(`
		DELETE FROM category_aliases WHERE id NOT IN (
			SELECT MAX(id) FROM category_aliases GROUP BY game_src_id, category_src_id
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to remove duplicate aliases: %w", err)
	}

	_, err = tx.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_category_aliases_game_category
		ON category_aliases(game_src_id, category_src_id)
	`)
	if err != nil {
		return fmt.Errorf("failed to create alias index: %w", err)
	}
	return nil
}

// migrationV5 rewrites enum-style state spellings to their snake_case names
func migrationV5(tx *sql.Tx) error {
	rewrites := []struct {
		column string
		from   string
		to     string
	}{
		{"state", "None", "none"},
		{"state", "ThreadCreated", "thread_created"},
		{"state", "MessageCreated", "message_created"},
		{"state", "Finalized", "finalized"},
		{"src_state", "New", "new"},
		{"src_state", "Verified", "verified"},
		{"src_state", "Rejected", "rejected"},
		{"src_state", "Removed", "removed"},
	}
	for _, r := range rewrites {
		q := fmt.Sprintf("UPDATE runs SET %s = ? WHERE %s = ?", r.column, r.column)
		if _, err := tx.Exec(q, r.to, r.from); err != nil {
			return fmt.Errorf("failed to normalize %s %q: %w", r.column, r.from, err)
		}
	}
	return nil
}

// migrationV6 adds record timestamps and the sweep/intake lookup index
func migrationV6(tx *sql.Tx) error {
	// SQLite rejects non-constant defaults on ALTER TABLE, so backfill instead.
	if err := addColumnIfMissing(tx, "runs", "created_at", "DATETIME"); err != nil {
		return err
	}
	if err := addColumnIfMissing(tx, "runs", "updated_at", "DATETIME"); err != nil {
		return err
	}
	_, err := tx.Exec(`
		UPDATE runs
		SET created_at = COALESCE(created_at, CURRENT_TIMESTAMP),
		    updated_at = COALESCE(updated_at, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return fmt.Errorf("failed to backfill timestamps: %w", err)
	}

	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state, src_state)`)
	if err != nil {
		return fmt.Errorf("failed to create state index: %w", err)
	}
	return nil
}
