package syncengine

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopislukatan/storyapp/internal/connectivity"
	"github.com/kopislukatan/storyapp/internal/models"
	"github.com/kopislukatan/storyapp/internal/repositories/pending"

	_ "modernc.org/sqlite"
)

func setupQueue(t *testing.T) pending.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE pending_stories (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  description TEXT NOT NULL DEFAULT '',
  photo BLOB NOT NULL,
  lat REAL,
  lon REAL,
  queued_at TIMESTAMP NOT NULL
);
`)
	require.NoError(t, err)
	return pending.NewSQLiteRepository(db)
}

// fakeSubmitter records submissions and fails ids listed in failFor.
type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []string
	failFor   map[string]error
	block     chan struct{} // when set, submissions wait here
}

func (f *fakeSubmitter) AddStory(ctx context.Context, description string, photo []byte, lat, lon *float64) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[description]; ok {
		return err
	}
	f.submitted = append(f.submitted, description)
	return nil
}

func (f *fakeSubmitter) order() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.submitted...)
}

func enqueue(t *testing.T, q pending.Repository, descriptions ...string) {
	t.Helper()
	for _, d := range descriptions {
		_, err := q.Add(context.Background(), &models.PendingStory{Description: d, Photo: []byte(d)})
		require.NoError(t, err)
	}
}

func TestDrain_DeliversInEnqueueOrderAndEmptiesQueue(t *testing.T) {
	q := setupQueue(t)
	enqueue(t, q, "a", "b", "c")
	remote := &fakeSubmitter{}

	e := New(q, remote, nil, nil)
	require.NoError(t, e.Drain(context.Background()))

	assert.Equal(t, []string{"a", "b", "c"}, remote.order())
	n, err := q.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDrain_EntryDrainsExactlyOnce(t *testing.T) {
	q := setupQueue(t)
	enqueue(t, q, "once")
	remote := &fakeSubmitter{}

	e := New(q, remote, nil, nil)
	require.NoError(t, e.Drain(context.Background()))
	require.NoError(t, e.Drain(context.Background()))

	assert.Equal(t, []string{"once"}, remote.order(), "drained entry must never reappear")
}

func TestDrain_FailureLeavesEntryUntouched(t *testing.T) {
	q := setupQueue(t)
	enqueue(t, q, "ok1", "bad", "ok2")
	remote := &fakeSubmitter{failFor: map[string]error{"bad": errors.New("rejected")}}

	e := New(q, remote, nil, nil)
	require.NoError(t, e.Drain(context.Background()))

	left, err := q.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "bad", left[0].Description)

	// next drain retries it, same position, no duplicates of the others
	delete(remote.failFor, "bad")
	require.NoError(t, e.Drain(context.Background()))
	assert.Equal(t, []string{"ok1", "ok2", "bad"}, remote.order())

	n, err := q.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDrain_RequestsRefreshEvenWhenPartial(t *testing.T) {
	q := setupQueue(t)
	enqueue(t, q, "bad")
	remote := &fakeSubmitter{failFor: map[string]error{"bad": errors.New("still down")}}

	var refreshed int
	refresh := func(ctx context.Context) error { refreshed++; return nil }

	e := New(q, remote, refresh, nil)
	require.NoError(t, e.Drain(context.Background()))
	assert.Equal(t, 1, refreshed)
}

func TestDrain_SingleFlightPerID(t *testing.T) {
	q := setupQueue(t)
	enqueue(t, q, "slow")

	remote := &fakeSubmitter{block: make(chan struct{})}
	e := New(q, remote, nil, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = e.Drain(context.Background())
	}()

	// wait until the first drain holds the in-flight guard
	require.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return len(e.inFlight) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// a concurrent drain skips the outstanding id entirely
	require.NoError(t, e.Drain(context.Background()))
	assert.Empty(t, remote.order())

	close(remote.block)
	wg.Wait()
	assert.Equal(t, []string{"slow"}, remote.order(), "exactly one submission in total")
}

func TestBind_DrainsOnReconnect(t *testing.T) {
	q := setupQueue(t)
	enqueue(t, q, "queued-offline")
	remote := &fakeSubmitter{}

	m := connectivity.New(false, nil)
	e := New(q, remote, nil, nil)
	cancel := e.Bind(m)
	defer cancel()

	m.Set(true)

	require.Eventually(t, func() bool {
		n, err := q.Count(context.Background())
		return err == nil && n == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"queued-offline"}, remote.order())
}

func TestBind_IgnoresGoingOffline(t *testing.T) {
	q := setupQueue(t)
	enqueue(t, q, "stays")
	remote := &fakeSubmitter{}

	m := connectivity.New(true, nil)
	e := New(q, remote, nil, nil)
	cancel := e.Bind(m)
	defer cancel()

	m.Set(false)
	time.Sleep(50 * time.Millisecond)

	n, err := q.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
