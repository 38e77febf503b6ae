package pending

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kopislukatan/storyapp/internal/dbx"
	"github.com/kopislukatan/storyapp/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX

	// now is a test seam for the enqueue timestamp.
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Add(ctx context.Context, item *models.PendingStory) (int64, error) {
	queuedAt := item.QueuedAt
	if queuedAt.IsZero() {
		queuedAt = r.now()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO pending_stories (description, photo, lat, lon, queued_at)
		 VALUES (?, ?, ?, ?, ?)`,
		item.Description, item.Photo, item.Lat, item.Lon, queuedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue pending story: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get pending story id: %w", err)
	}
	item.ID = id
	item.QueuedAt = queuedAt
	return id, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.PendingStory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, photo, lat, lon, queued_at
		 FROM pending_stories ORDER BY id`)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to select pending stories: %w", err)
	}
	defer rows.Close()

	var result []models.PendingStory
	for rows.Next() {
		var item models.PendingStory
		if err := rows.Scan(&item.ID, &item.Description, &item.Photo,
			&item.Lat, &item.Lon, &item.QueuedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_stories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending story %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_stories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending stories: %w", err)
	}
	return n, nil
}
