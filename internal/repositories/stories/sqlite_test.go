package stories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopislukatan/storyapp/internal/common"
	"github.com/kopislukatan/storyapp/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE stories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  photo_url TEXT NOT NULL DEFAULT '',
  lat REAL,
  lon REAL,
  created_at TIMESTAMP NOT NULL
);
CREATE INDEX idx_stories_created_at ON stories (created_at);
`)
	require.NoError(t, err)
	return db
}

func story(id string, createdAt time.Time) models.Story {
	return models.Story{
		ID:          id,
		Name:        "author-" + id,
		Description: "desc-" + id,
		PhotoURL:    "https://example.com/images/" + id + ".jpg",
		CreatedAt:   createdAt,
	}
}

func TestReplaceAll_ReplacesWholesale(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	first := []models.Story{story("a", base), story("b", base.Add(time.Minute))}
	require.NoError(t, r.ReplaceAll(ctx, first))

	second := []models.Story{story("c", base.Add(2*time.Minute))}
	require.NoError(t, r.ReplaceAll(ctx, second))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1, "no story from a prior fetch may survive")
	assert.Equal(t, "c", got[0].ID)
}

func TestReplaceAll_EmptySetClears(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.ReplaceAll(ctx, []models.Story{story("a", time.Now().UTC())}))
	require.NoError(t, r.ReplaceAll(ctx, nil))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGetAll_OrderedByCreationTime(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	// insert out of order
	set := []models.Story{
		story("newest", base.Add(2*time.Hour)),
		story("oldest", base),
		story("middle", base.Add(time.Hour)),
	}
	require.NoError(t, r.ReplaceAll(ctx, set))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "oldest", got[0].ID)
	assert.Equal(t, "middle", got[1].ID)
	assert.Equal(t, "newest", got[2].ID)
}

func TestGetByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	lat, lon := -7.36, 109.92
	s := story("a", time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))
	s.Lat, s.Lon = &lat, &lon
	require.NoError(t, r.ReplaceAll(ctx, []models.Story{s}))

	got, err := r.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	require.NotNil(t, got.Lat)
	assert.InDelta(t, lat, *got.Lat, 1e-9)

	_, err = r.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}
