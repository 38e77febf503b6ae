package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopislukatan/storyapp/internal/common"
	"github.com/kopislukatan/storyapp/internal/connectivity"
	"github.com/kopislukatan/storyapp/internal/logging"
	"github.com/kopislukatan/storyapp/internal/models"
)

type fakeRemote struct {
	stories []models.Story
	err     error

	added []models.Draft
}

func (f *fakeRemote) ListStories(_ context.Context, page, size int, withLocation bool) ([]models.Story, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stories, nil
}

func (f *fakeRemote) StoryDetail(_ context.Context, id string) (*models.Story, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.stories {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, &common.RemoteRejection{Message: "Story not found"}
}

func (f *fakeRemote) AddStory(_ context.Context, description string, photo []byte, lat, lon *float64) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, models.Draft{Description: description, Photo: photo, Lat: lat, Lon: lon})
	return nil
}

type fakeStoryRepo struct {
	items []models.Story
}

func (f *fakeStoryRepo) ReplaceAll(_ context.Context, items []models.Story) error {
	f.items = append([]models.Story(nil), items...)
	return nil
}

func (f *fakeStoryRepo) GetAll(context.Context) ([]models.Story, error) {
	items := append([]models.Story(nil), f.items...)
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (f *fakeStoryRepo) GetByID(_ context.Context, id string) (*models.Story, error) {
	for _, s := range f.items {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeStoryRepo) Count(context.Context) (int, error) {
	return len(f.items), nil
}

type fakeQueue struct {
	items  []models.PendingStory
	nextID int64
}

func (f *fakeQueue) Add(_ context.Context, item *models.PendingStory) (int64, error) {
	f.nextID++
	item.ID = f.nextID
	item.QueuedAt = time.Now()
	f.items = append(f.items, *item)
	return item.ID, nil
}

func (f *fakeQueue) GetAll(context.Context) ([]models.PendingStory, error) {
	return append([]models.PendingStory(nil), f.items...), nil
}

func (f *fakeQueue) Delete(_ context.Context, id int64) error {
	for i, item := range f.items {
		if item.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeQueue) Count(context.Context) (int, error) {
	return len(f.items), nil
}

type fakeFavorites struct {
	items map[string]models.Story
}

func newFakeFavorites() *fakeFavorites {
	return &fakeFavorites{items: map[string]models.Story{}}
}

func (f *fakeFavorites) Add(_ context.Context, item *models.Story) error {
	f.items[item.ID] = *item
	return nil
}

func (f *fakeFavorites) Remove(_ context.Context, id string) error {
	delete(f.items, id)
	return nil
}

func (f *fakeFavorites) GetByID(_ context.Context, id string) (*models.Story, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &item, nil
}

func (f *fakeFavorites) GetAll(context.Context) ([]models.Story, error) {
	var items []models.Story
	for _, item := range f.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

type fixture struct {
	svc     StoryService
	remote  *fakeRemote
	repo    *fakeStoryRepo
	queue   *fakeQueue
	favs    *fakeFavorites
	monitor *connectivity.Monitor
}

func newFixture(online bool) *fixture {
	f := &fixture{
		remote:  &fakeRemote{},
		repo:    &fakeStoryRepo{},
		queue:   &fakeQueue{},
		favs:    newFakeFavorites(),
		monitor: connectivity.New(online, nil),
	}
	f.svc = NewStoryService(f.remote, f.repo, f.queue, f.favs, f.monitor, logging.Nop{})
	return f
}

func story(id string, createdAt time.Time) models.Story {
	return models.Story{ID: id, Name: "author-" + id, Description: "desc-" + id, CreatedAt: createdAt}
}

func TestList_OnlineReplacesSnapshot(t *testing.T) {
	f := newFixture(true)
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	f.repo.items = []models.Story{story("stale", base)}
	f.remote.stories = []models.Story{story("a", base), story("b", base.Add(time.Minute))}

	items, fromLocal, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.False(t, fromLocal)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)

	// the stale snapshot is fully replaced, not merged
	assert.Len(t, f.repo.items, 2)
}

func TestList_OfflineServesSnapshot(t *testing.T) {
	f := newFixture(false)
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	f.repo.items = []models.Story{story("a", base)}
	f.remote.err = common.ErrUnavailable

	items, fromLocal, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.True(t, fromLocal)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)
}

func TestList_OfflineEmptySnapshot(t *testing.T) {
	f := newFixture(false)
	f.remote.err = common.ErrUnavailable

	_, fromLocal, err := f.svc.List(context.Background())
	require.ErrorIs(t, err, common.ErrLocalDataNotAvailable)
	assert.True(t, fromLocal)
}

func TestList_RejectionPropagates(t *testing.T) {
	f := newFixture(true)
	f.remote.err = &common.RemoteRejection{Message: "Missing authentication"}

	_, _, err := f.svc.List(context.Background())
	require.ErrorIs(t, err, common.ErrRejected)
	assert.EqualError(t, err, "Missing authentication")
}

func TestAdd_OnlineSubmitsDirectly(t *testing.T) {
	f := newFixture(true)

	queued, err := f.svc.Add(context.Background(), models.Draft{Description: "halo", Photo: []byte("jpg")})
	require.NoError(t, err)
	assert.False(t, queued)
	assert.Len(t, f.remote.added, 1)
	assert.Empty(t, f.queue.items)
}

func TestAdd_OfflineQueues(t *testing.T) {
	f := newFixture(false)

	queued, err := f.svc.Add(context.Background(), models.Draft{Description: "halo", Photo: []byte("jpg")})
	require.NoError(t, err)
	assert.True(t, queued)
	assert.Empty(t, f.remote.added)
	require.Len(t, f.queue.items, 1)
	assert.Equal(t, "halo", f.queue.items[0].Description)
}

func TestAdd_TransportFailureQueuesAndFlipsOffline(t *testing.T) {
	f := newFixture(true)
	f.remote.err = common.ErrUnavailable

	queued, err := f.svc.Add(context.Background(), models.Draft{Description: "halo"})
	require.NoError(t, err)
	assert.True(t, queued)
	assert.False(t, f.monitor.Online())
	assert.Len(t, f.queue.items, 1)
}

func TestAdd_RejectionIsNotQueued(t *testing.T) {
	f := newFixture(true)
	f.remote.err = &common.RemoteRejection{Message: `"photo" is required`}

	queued, err := f.svc.Add(context.Background(), models.Draft{Description: "halo"})
	require.ErrorIs(t, err, common.ErrRejected)
	assert.False(t, queued)
	assert.Empty(t, f.queue.items)
}

func TestDetail_FallsBackToSnapshotThenFavorites(t *testing.T) {
	f := newFixture(false)
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	f.remote.err = common.ErrUnavailable
	f.repo.items = []models.Story{story("cached", base)}
	require.NoError(t, f.favs.Add(context.Background(), &models.Story{ID: "fav", Name: "author-fav"}))

	got, err := f.svc.Detail(context.Background(), "cached")
	require.NoError(t, err)
	assert.Equal(t, "cached", got.ID)

	got, err = f.svc.Detail(context.Background(), "fav")
	require.NoError(t, err)
	assert.Equal(t, "fav", got.ID)

	_, err = f.svc.Detail(context.Background(), "unknown")
	require.ErrorIs(t, err, common.ErrLocalDataNotAvailable)
}

func TestFavorite_RoundTrip(t *testing.T) {
	f := newFixture(true)
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	f.remote.stories = []models.Story{story("a", base)}
	ctx := context.Background()

	require.NoError(t, f.svc.Favorite(ctx, "a"))

	ok, err := f.svc.IsFavorite(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	// favoriting again is a no-op
	require.NoError(t, f.svc.Favorite(ctx, "a"))
	items, err := f.svc.Favorites(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, f.svc.Unfavorite(ctx, "a"))
	ok, err = f.svc.IsFavorite(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFavorite_SurvivesSnapshotReplacement(t *testing.T) {
	f := newFixture(true)
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	f.remote.stories = []models.Story{story("a", base)}
	ctx := context.Background()

	require.NoError(t, f.svc.Favorite(ctx, "a"))

	// the story falls out of the feed window
	f.remote.stories = []models.Story{story("b", base.Add(time.Hour))}
	_, _, err := f.svc.List(ctx)
	require.NoError(t, err)

	ok, err := f.svc.IsFavorite(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	// and its snapshot is still readable offline
	f.remote.err = common.ErrUnavailable
	got, err := f.svc.Detail(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
}
