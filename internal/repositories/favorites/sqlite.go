package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kopislukatan/storyapp/internal/common"
	"github.com/kopislukatan/storyapp/internal/dbx"
	"github.com/kopislukatan/storyapp/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Add upserts by story id, so favoriting an already-favorited story
// leaves exactly one record.
func (r *SQLiteRepository) Add(ctx context.Context, item *models.Story) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorite_stories (id, name, description, photo_url, lat, lon, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			description = excluded.description,
			photo_url = excluded.photo_url,
			lat = excluded.lat,
			lon = excluded.lon,
			created_at = excluded.created_at`,
		item.ID, item.Name, item.Description, item.PhotoURL, item.Lat, item.Lon, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert favorite: %w", err)
	}
	return nil
}

// Remove deletes the favorite if present. Removing an absent id is a no-op.
func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorite_stories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Story, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, photo_url, lat, lon, created_at
		 FROM favorite_stories WHERE id = ?`, id)

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

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Story, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, photo_url, lat, lon, created_at
		 FROM favorite_stories ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to select favorites: %w", err)
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
