package pending

import (
	"context"

	"github.com/kopislukatan/storyapp/internal/models"
)

// Repository is the queue of create operations awaiting remote delivery.
//
// The queue is append-only until drained: entries keep their local
// auto-increment id, are listed in enqueue order, and are deleted only
// after the remote service confirms acceptance.
type Repository interface {
	// Add appends a mutation and returns its assigned local id.
	Add(ctx context.Context, item *models.PendingStory) (int64, error)

	// GetAll returns queued mutations in enqueue (id) order.
	GetAll(ctx context.Context) ([]models.PendingStory, error)

	// Delete removes a confirmed mutation by local id.
	Delete(ctx context.Context, id int64) error

	// Count reports the queue length.
	Count(ctx context.Context) (int, error)
}
