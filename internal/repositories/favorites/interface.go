package favorites

import (
	"context"

	"github.com/kopislukatan/storyapp/internal/models"
)

// Repository stores user-curated bookmarks. A favorite is a full field
// snapshot keyed by the remote story id, independent of the cached-story
// collection's lifecycle: it survives even if the source story is evicted
// from the cache window.
//
// Add and Remove are idempotent (upsert / delete-if-present).
type Repository interface {
	Add(ctx context.Context, item *models.Story) error
	Remove(ctx context.Context, id string) error

	// GetByID returns a favorite, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Story, error)

	// GetAll returns favorites ordered by creation time.
	GetAll(ctx context.Context) ([]models.Story, error)
}
