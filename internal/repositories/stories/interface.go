package stories

import (
	"context"

	"github.com/kopislukatan/storyapp/internal/models"
)

// Repository holds the local snapshot of the remote story feed.
//
// The collection always reflects exactly the most recent successful full
// fetch: ReplaceAll clears it and inserts the fetched set in one
// transaction, never merging with prior contents.
type Repository interface {
	// ReplaceAll atomically swaps the whole collection for the given set.
	ReplaceAll(ctx context.Context, items []models.Story) error

	// GetAll returns the cached stories ordered by creation time.
	GetAll(ctx context.Context) ([]models.Story, error)

	// GetByID returns a single cached story, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Story, error)

	// Count reports the number of cached stories.
	Count(ctx context.Context) (int, error)
}
