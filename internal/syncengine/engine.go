// Package syncengine drains the pending-mutation queue against the remote
// API once connectivity returns.
package syncengine

import (
	"context"
	"sync"

	"github.com/kopislukatan/storyapp/internal/connectivity"
	"github.com/kopislukatan/storyapp/internal/logging"
	"github.com/kopislukatan/storyapp/internal/models"
	"github.com/kopislukatan/storyapp/internal/repositories/pending"
)

// Submitter is the remote-submit capability the engine needs; the API
// client satisfies it.
type Submitter interface {
	AddStory(ctx context.Context, description string, photo []byte, lat, lon *float64) error
}

// Engine replays queued story creations in enqueue order.
//
// Failed entries stay untouched for the next drain; there is no backoff and
// no retry cap, so a permanently failing mutation is retried on every
// future connectivity event.
type Engine struct {
	queue   pending.Repository
	remote  Submitter
	refresh func(ctx context.Context) error
	log     logging.Logger

	mu       sync.Mutex
	inFlight map[int64]bool
}

// New builds an Engine. refresh is called after every drain pass (even a
// partial one) to request a cached-items refresh; it may be nil.
func New(queue pending.Repository, remote Submitter, refresh func(ctx context.Context) error, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop{}
	}
	return &Engine{
		queue:    queue,
		remote:   remote,
		refresh:  refresh,
		log:      log,
		inFlight: make(map[int64]bool),
	}
}

// Bind subscribes the engine to connectivity transitions: every
// offline→online transition starts a drain on its own goroutine.
// The returned cancel func detaches the engine.
func (e *Engine) Bind(m *connectivity.Monitor) (cancel func()) {
	return m.Subscribe(func(online bool) {
		if !online {
			return
		}
		go func() {
			if err := e.Drain(context.Background()); err != nil {
				e.log.Error(context.Background(), "drain after reconnect failed", "error", err)
			}
		}()
	})
}

// Drain walks the queue in enqueue order and attempts each entry exactly
// once. Success deletes the entry; failure leaves it in place, never
// reordered. An entry whose submission is still outstanding from another
// invocation is skipped (single-flight per id).
func (e *Engine) Drain(ctx context.Context) error {
	items, err := e.queue.GetAll(ctx)
	if err != nil {
		return err
	}

	if len(items) > 0 {
		e.log.Info(ctx, "draining pending stories", "count", len(items))
	}

	for _, item := range items {
		if !e.acquire(item.ID) {
			continue
		}
		e.submitOne(ctx, item)
		e.release(item.ID)
	}

	if e.refresh != nil {
		if err := e.refresh(ctx); err != nil {
			e.log.Warn(ctx, "post-drain refresh failed", "error", err)
		}
	}
	return nil
}

func (e *Engine) submitOne(ctx context.Context, item models.PendingStory) {
	err := e.remote.AddStory(ctx, item.Description, item.Photo, item.Lat, item.Lon)
	if err != nil {
		// left untouched for the next drain
		e.log.Warn(ctx, "pending story submission failed", "id", item.ID, "error", err)
		return
	}
	if err := e.queue.Delete(ctx, item.ID); err != nil {
		e.log.Error(ctx, "confirmed story could not be dequeued", "id", item.ID, "error", err)
		return
	}
	e.log.Info(ctx, "pending story delivered", "id", item.ID)
}

func (e *Engine) acquire(id int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[id] {
		return false
	}
	e.inFlight[id] = true
	return true
}

func (e *Engine) release(id int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, id)
}
