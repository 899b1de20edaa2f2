// Package entries provides the PostgreSQL-backed repository for entry
// persistence and per-user category queries.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"legacyvault/internal/common"
	"legacyvault/internal/dbx"
	"legacyvault/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new entry and returns it with the database-assigned id.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query := `
		INSERT INTO entries (user_id, category, title, description, file_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.UserID, entry.Category, entry.Title, entry.Description,
		nullableString(entry.FileURL), entry.CreatedAt, entry.UpdatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// GetByIDAndUser loads a single entry filtered by id and owner in the same
// statement. Returns common.ErrorNotFound when no row matches both.
func (r *PostgresRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*models.Entry, error) {
	query := `
		SELECT id, user_id, category, title, description, file_url, created_at, updated_at
		FROM entries
		WHERE id = $1 AND user_id = $2
	`
	var item models.Entry
	var fileURL sql.NullString
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&item.ID, &item.UserID, &item.Category, &item.Title, &item.Description,
		&fileURL, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	item.FileURL = fileURL.String
	return &item, nil
}

// SelectByUserAndCategory returns all entries owned by userID in the given
// category, most recently created first.
func (r *PostgresRepository) SelectByUserAndCategory(ctx context.Context, userID string, category models.Category) ([]*models.Entry, error) {
	query := `
		SELECT id, user_id, category, title, description, file_url, created_at, updated_at
		FROM entries
		WHERE user_id = $1 AND category = $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		var item models.Entry
		var fileURL sql.NullString
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Category, &item.Title, &item.Description,
			&fileURL, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.FileURL = fileURL.String
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites the mutable columns of an entry. The WHERE clause carries
// both id and user_id; zero rows affected means the entry is missing or not
// owned, reported as common.ErrorNotFound. user_id and created_at are not in
// the SET list and can never change.
func (r *PostgresRepository) Update(ctx context.Context, entry *models.Entry) error {
	query := `
		UPDATE entries
		SET category = $1, title = $2, description = $3, file_url = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`
	res, err := r.db.ExecContext(ctx, query,
		entry.Category, entry.Title, entry.Description,
		nullableString(entry.FileURL), entry.UpdatedAt,
		entry.ID, entry.UserID,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Delete removes an entry matched by id and owner. Zero rows affected is
// reported as common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `
		DELETE FROM entries
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
