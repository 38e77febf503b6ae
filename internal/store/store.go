// Package store owns the local sqlite database: opening it, running the
// embedded migrations, and handing out per-collection repositories.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/kopislukatan/storyapp/internal/common"
	"github.com/kopislukatan/storyapp/internal/repositories/favorites"
	"github.com/kopislukatan/storyapp/internal/repositories/pending"
	"github.com/kopislukatan/storyapp/internal/repositories/settings"
	"github.com/kopislukatan/storyapp/internal/repositories/stories"
	"github.com/kopislukatan/storyapp/internal/store/migrations"
)

// Store is the shared handle to the local database. Open is idempotent:
// concurrent callers converge on a single underlying connection pool,
// and every later call returns the first call's outcome.
type Store struct {
	dsn string

	once sync.Once
	db   *sql.DB
	err  error

	Stories   stories.Repository
	Pending   pending.Repository
	Favorites favorites.Repository
	Settings  settings.Repository
}

func New(dsn string) *Store {
	return &Store{dsn: dsn}
}

// RunMigrations applies the embedded migrations to db. Safe to call more
// than once; goose tracks applied versions in its own table.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens the database, migrates it, and binds the repositories.
// Failures are wrapped in common.ErrStoreUnavailable so callers can
// degrade to remote-only reads instead of crashing.
func (s *Store) Open(ctx context.Context) error {
	s.once.Do(func() {
		db, err := sql.Open("sqlite", s.dsn)
		if err != nil {
			s.err = fmt.Errorf("%w: opening database: %v", common.ErrStoreUnavailable, err)
			return
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			s.err = fmt.Errorf("%w: connecting to database: %v", common.ErrStoreUnavailable, err)
			return
		}
		if err := RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			s.err = fmt.Errorf("%w: running migrations: %v", common.ErrStoreUnavailable, err)
			return
		}

		s.db = db
		s.Stories = stories.NewSQLiteRepository(db)
		s.Pending = pending.NewSQLiteRepository(db)
		s.Favorites = favorites.NewSQLiteRepository(db)
		s.Settings = settings.NewSQLiteRepository(db)
	})
	return s.err
}

// DB exposes the underlying handle for collaborators that persist their own
// state in the shared database (the request cache). Nil until Open succeeds.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
