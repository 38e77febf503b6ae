package stories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kopislukatan/storyapp/internal/common"
	"github.com/kopislukatan/storyapp/internal/dbx"
	"github.com/kopislukatan/storyapp/internal/models"
)

// SQLiteRepository implements Repository over the shared local database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// ReplaceAll deletes every cached story and inserts items, all inside one
// transaction, so readers never observe a stale+fresh mix.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, items []models.Story) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM stories`); err != nil {
			return err
		}
		for _, item := range items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO stories (id, name, description, photo_url, lat, lon, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				item.ID, item.Name, item.Description, item.PhotoURL, item.Lat, item.Lon, item.CreatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace stories: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Story, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, photo_url, lat, lon, created_at
		 FROM stories ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to select stories: %w", err)
	}
	defer rows.Close()

	var result []models.Story
	for rows.Next() {
		var item models.Story
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.PhotoURL,
			&item.Lat, &item.Lon, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Story, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, photo_url, lat, lon, created_at
		 FROM stories WHERE id = ?`, id)

	item := &models.Story{}
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.PhotoURL,
		&item.Lat, &item.Lon, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count stories: %w", err)
	}
	return n, nil
}
