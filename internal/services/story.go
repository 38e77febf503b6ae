// Package services holds the application-level operations the interface
// layer calls: the story feed, story submission with its offline queue,
// and the favorites collection.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kopislukatan/storyapp/internal/common"
	"github.com/kopislukatan/storyapp/internal/connectivity"
	"github.com/kopislukatan/storyapp/internal/logging"
	"github.com/kopislukatan/storyapp/internal/models"
	"github.com/kopislukatan/storyapp/internal/repositories/favorites"
	"github.com/kopislukatan/storyapp/internal/repositories/pending"
	"github.com/kopislukatan/storyapp/internal/repositories/stories"
)

// listPageSize is how many stories one feed refresh asks the server for.
const listPageSize = 30

// Remote is the subset of the API client the story service uses.
type Remote interface {
	ListStories(ctx context.Context, page, size int, withLocation bool) ([]models.Story, error)
	StoryDetail(ctx context.Context, id string) (*models.Story, error)
	AddStory(ctx context.Context, description string, photo []byte, lat, lon *float64) error
}

type StoryService interface {
	// List returns the story feed. The returned flag is true when the
	// result came from the local snapshot instead of the server.
	List(ctx context.Context) ([]models.Story, bool, error)

	// Refresh fetches the feed and replaces the local snapshot.
	Refresh(ctx context.Context) error

	// Detail returns one story, served locally when the server is out of
	// reach.
	Detail(ctx context.Context, id string) (*models.Story, error)

	// Add submits a new story. The returned flag is true when the story
	// was queued for later delivery instead of sent.
	Add(ctx context.Context, draft models.Draft) (queued bool, err error)

	Favorite(ctx context.Context, id string) error
	Unfavorite(ctx context.Context, id string) error
	IsFavorite(ctx context.Context, id string) (bool, error)
	Favorites(ctx context.Context) ([]models.Story, error)
}

type storyService struct {
	remote    Remote
	storyRepo stories.Repository
	queue     pending.Repository
	favRepo   favorites.Repository
	monitor   *connectivity.Monitor
	log       logging.Logger
}

func NewStoryService(remote Remote, storyRepo stories.Repository, queue pending.Repository, favRepo favorites.Repository, monitor *connectivity.Monitor, log logging.Logger) StoryService {
	return &storyService{
		remote:    remote,
		storyRepo: storyRepo,
		queue:     queue,
		favRepo:   favRepo,
		monitor:   monitor,
		log:       log,
	}
}

func (s *storyService) Refresh(ctx context.Context) error {
	items, err := s.remote.ListStories(ctx, 1, listPageSize, true)
	if err != nil {
		return err
	}
	if err := s.storyRepo.ReplaceAll(ctx, items); err != nil {
		return fmt.Errorf("failed to store fetched stories: %w", err)
	}
	return nil
}

func (s *storyService) List(ctx context.Context) ([]models.Story, bool, error) {
	err := s.Refresh(ctx)
	if err == nil {
		items, err := s.storyRepo.GetAll(ctx)
		return items, false, err
	}
	if !errors.Is(err, common.ErrUnavailable) {
		return nil, false, err
	}

	s.log.Info(ctx, "feed fetch failed, serving local snapshot")
	items, repoErr := s.storyRepo.GetAll(ctx)
	if repoErr != nil {
		return nil, false, repoErr
	}
	if len(items) == 0 {
		return nil, true, common.ErrLocalDataNotAvailable
	}
	return items, true, nil
}

func (s *storyService) Detail(ctx context.Context, id string) (*models.Story, error) {
	story, err := s.remote.StoryDetail(ctx, id)
	if err == nil {
		return story, nil
	}
	if !errors.Is(err, common.ErrUnavailable) {
		return nil, err
	}

	story, repoErr := s.storyRepo.GetByID(ctx, id)
	if repoErr == nil {
		return story, nil
	}
	if !errors.Is(repoErr, common.ErrorNotFound) {
		return nil, repoErr
	}
	// a favorited story outlives the feed snapshot
	story, favErr := s.favRepo.GetByID(ctx, id)
	if favErr == nil {
		return story, nil
	}
	if errors.Is(favErr, common.ErrorNotFound) {
		return nil, common.ErrLocalDataNotAvailable
	}
	return nil, favErr
}

func (s *storyService) Add(ctx context.Context, draft models.Draft) (bool, error) {
	if s.monitor.Online() {
		err := s.remote.AddStory(ctx, draft.Description, draft.Photo, draft.Lat, draft.Lon)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, common.ErrUnavailable) {
			return false, err
		}
		s.monitor.Set(false)
	}

	item := &models.PendingStory{
		Description: draft.Description,
		Photo:       draft.Photo,
		Lat:         draft.Lat,
		Lon:         draft.Lon,
	}
	id, err := s.queue.Add(ctx, item)
	if err != nil {
		return false, fmt.Errorf("failed to queue story: %w", err)
	}
	s.log.Info(ctx, "story queued for later delivery", "id", id)
	return true, nil
}

func (s *storyService) Favorite(ctx context.Context, id string) error {
	story, err := s.Detail(ctx, id)
	if err != nil {
		return err
	}
	return s.favRepo.Add(ctx, story)
}

func (s *storyService) Unfavorite(ctx context.Context, id string) error {
	return s.favRepo.Remove(ctx, id)
}

func (s *storyService) IsFavorite(ctx context.Context, id string) (bool, error) {
	_, err := s.favRepo.GetByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return false, err
}

func (s *storyService) Favorites(ctx context.Context) ([]models.Story, error) {
	return s.favRepo.GetAll(ctx)
}
