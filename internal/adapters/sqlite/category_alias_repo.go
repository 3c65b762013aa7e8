package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/queuebot/internal/ports/secondary"
)

// CategoryAliasRepository implements secondary.CategoryAliasRepository with SQLite.
type CategoryAliasRepository struct {
	db *sql.DB
}

// NewCategoryAliasRepository creates a new SQLite category alias repository.
func NewCategoryAliasRepository(db *sql.DB) *CategoryAliasRepository {
	return &CategoryAliasRepository{db: db}
}

// List retrieves the aliases of a game ordered by category ID.
func (r *CategoryAliasRepository) List(ctx context.Context, gameID string) ([]*secondary.CategoryAliasRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_src_id, category_src_id, alias FROM category_aliases
		 WHERE game_src_id = ? ORDER BY category_src_id ASC`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list category aliases: %w", err)
	}
	defer rows.Close()

	var aliases []*secondary.CategoryAliasRecord
	for rows.Next() {
		record := &secondary.CategoryAliasRecord{}
		if err := rows.Scan(&record.ID, &record.GameID, &record.CategoryID, &record.Alias); err != nil {
			return nil, fmt.Errorf("failed to scan category alias: %w", err)
		}
		aliases = append(aliases, record)
	}

	return aliases, rows.Err()
}

// Upsert creates the alias or replaces the existing one for the category.
func (r *CategoryAliasRepository) Upsert(ctx context.Context, alias *secondary.CategoryAliasRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO category_aliases (game_src_id, category_src_id, alias) VALUES (?, ?, ?)
		 ON CONFLICT(game_src_id, category_src_id) DO UPDATE SET alias = excluded.alias`,
		alias.GameID, alias.CategoryID, alias.Alias,
	)
	if err != nil {
		return fmt.Errorf("failed to save alias for category %s: %w", alias.CategoryID, err)
	}
	return nil
}

// Delete removes the alias of a category.
func (r *CategoryAliasRepository) Delete(ctx context.Context, gameID, categoryID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM category_aliases WHERE game_src_id = ? AND category_src_id = ?",
		gameID, categoryID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete category alias: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("no alias for category %s", categoryID)
	}

	return nil
}

// Ensure CategoryAliasRepository implements the interface
var _ secondary.CategoryAliasRepository = (*CategoryAliasRepository)(nil)
