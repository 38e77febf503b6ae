package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kopislukatan/storyapp/internal/dbx"
)

// Entry is one cached HTTP response, keyed by method+URL within its
// namespace.
type Entry struct {
	Key         string
	Status      int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists cache entries in the shared local database. Eviction is
// lazy: age is enforced on read, the entry budget on write; there is no
// background sweep.
type Store struct {
	db dbx.DBTX

	// now is a test seam for age checks.
	now func() time.Time
}

func NewStore(db dbx.DBTX) *Store {
	return &Store{db: db, now: time.Now}
}

// Get returns the entry for key, or nil on a miss. An entry older than the
// namespace's MaxAge is deleted and reported as a miss: the cache never
// serves an expired response.
func (s *Store) Get(ctx context.Context, ns Namespace, key string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT status, content_type, body, created_at
		 FROM cache_entries WHERE namespace = ? AND request_key = ?`,
		ns.Name, key)

	e := &Entry{Key: key}
	var createdAt int64
	err := row.Scan(&e.Status, &e.ContentType, &e.Body, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	e.CreatedAt = time.Unix(0, createdAt)

	if s.now().Sub(e.CreatedAt) > ns.MaxAge {
		_, _ = s.db.ExecContext(ctx,
			`DELETE FROM cache_entries WHERE namespace = ? AND request_key = ?`, ns.Name, key)
		return nil, nil
	}
	return e, nil
}

// Put inserts or overwrites the entry and trims the namespace back to its
// entry budget, oldest entries first.
func (s *Store) Put(ctx context.Context, ns Namespace, e *Entry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (namespace, request_key, status, content_type, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ns.Name, e.Key, e.Status, e.ContentType, e.Body, createdAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE namespace = ?1 AND rowid NOT IN (
			SELECT rowid FROM cache_entries WHERE namespace = ?1
			ORDER BY created_at DESC, rowid DESC LIMIT ?2)`,
		ns.Name, ns.MaxEntries)
	if err != nil {
		return fmt.Errorf("failed to trim cache namespace: %w", err)
	}
	return nil
}

// Purge deletes every namespace whose name is not in keep. Used on version
// cutover so no two versions' caches coexist.
func (s *Store) Purge(ctx context.Context, keep []string) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
	args := make([]any, len(keep))
	for i, name := range keep {
		args[i] = name
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE namespace NOT IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to purge outdated caches: %w", err)
	}
	return nil
}

// Count reports how many entries a namespace holds.
func (s *Store) Count(ctx context.Context, namespace string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cache_entries WHERE namespace = ?`, namespace).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}
