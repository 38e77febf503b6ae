package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/kopislukatan/storyapp/internal/common"
	"github.com/kopislukatan/storyapp/internal/models"
)

// readFile is a test seam for loading the photo from disk.
var readFile = os.ReadFile

// List prints the story feed, falling back to the local snapshot when the
// server is out of reach.
func (a *App) List(ctx context.Context) error {
	items, fromLocal, err := a.storyService.List(ctx)
	if err != nil {
		if errors.Is(err, common.ErrLocalDataNotAvailable) {
			fmt.Fprintln(a.out, common.MsgOffline)
			return nil
		}
		a.report(ctx, err)
		return err
	}

	if fromLocal {
		fmt.Fprintln(a.out, "(offline, showing saved stories)")
	} else {
		// the server is reachable, so flush anything still queued
		go a.engine.Drain(context.WithoutCancel(ctx))
	}
	for _, s := range items {
		a.printStory(&s)
	}
	return nil
}

// Show prints one story by id.
func (a *App) Show(ctx context.Context, id string) error {
	story, err := a.storyService.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrLocalDataNotAvailable) {
			fmt.Fprintln(a.out, common.MsgOffline)
			return nil
		}
		a.report(ctx, err)
		return err
	}

	a.printStory(story)
	fmt.Fprintln(a.out, story.Description)
	if story.Lat != nil && story.Lon != nil {
		fmt.Fprintf(a.out, "  location: %f, %f\n", *story.Lat, *story.Lon)
	}
	a.fetchPhoto(ctx, story.PhotoURL)
	return nil
}

// fetchPhoto pulls the story photo through the caching transport, so a
// photo seen once while online is still available the next time the
// story is shown offline.
func (a *App) fetchPhoto(ctx context.Context, url string) {
	if url == "" || a.web == nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		a.log.Debug(ctx, "photo request could not be built", "url", url, "error", err)
		return
	}
	resp, err := a.web.Do(req)
	if err != nil {
		a.log.Debug(ctx, "photo fetch failed", "url", url, "error", err)
		return
	}
	defer resp.Body.Close()
	n, _ := io.Copy(io.Discard, resp.Body)
	fmt.Fprintf(a.out, "  photo: %s (%d bytes)\n", url, n)
}

// Add prompts for a new story and either submits it right away or queues
// it for delivery when connectivity returns.
func (a *App) Add(ctx context.Context) error {
	description, err := GetMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}
	photoPath, err := getSimpleText(a.reader, "Enter photo file path", a.out)
	if err != nil {
		return err
	}
	photo, err := readFile(photoPath)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot read photo: %s\n", err.Error())
		return err
	}
	lat, err := GetOptionalCoordinate(a.reader, "Latitude", a.out)
	if err != nil {
		return err
	}
	lon, err := GetOptionalCoordinate(a.reader, "Longitude", a.out)
	if err != nil {
		return err
	}

	queued, err := a.storyService.Add(ctx, models.Draft{
		Description: description,
		Photo:       photo,
		Lat:         lat,
		Lon:         lon,
	})
	if err != nil {
		a.report(ctx, err)
		return err
	}

	if queued {
		fmt.Fprintln(a.out, common.MsgQueuedForSync)
	} else {
		fmt.Fprintln(a.out, "Story shared!")
	}
	return nil
}

// Favorite saves a story snapshot to the bookmarks collection.
func (a *App) Favorite(ctx context.Context, id string) error {
	if err := a.storyService.Favorite(ctx, id); err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Fprintln(a.out, "Saved to favorites.")
	return nil
}

func (a *App) Unfavorite(ctx context.Context, id string) error {
	if err := a.storyService.Unfavorite(ctx, id); err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Fprintln(a.out, "Removed from favorites.")
	return nil
}

func (a *App) Favorites(ctx context.Context) error {
	items, err := a.storyService.Favorites(ctx)
	if err != nil {
		a.report(ctx, err)
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No favorites yet.")
		return nil
	}
	for _, s := range items {
		a.printStory(&s)
	}
	return nil
}

// Pending lists queued stories awaiting delivery.
func (a *App) Pending(ctx context.Context) error {
	items, err := a.store.Pending.GetAll(ctx)
	if err != nil {
		a.report(ctx, err)
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Nothing waiting for sync.")
		return nil
	}
	for _, item := range items {
		fmt.Fprintf(a.out, "[%d] %s (queued %s)\n", item.ID, item.Description, item.QueuedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// Sync drains the pending queue by hand instead of waiting for the
// connectivity watcher.
func (a *App) Sync(ctx context.Context) error {
	if err := a.engine.Drain(ctx); err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Fprintln(a.out, common.MsgSyncDone)
	return nil
}

func (a *App) printStory(s *models.Story) {
	fav, _ := a.storyService.IsFavorite(context.Background(), s.ID)
	marker := " "
	if fav {
		marker = "*"
	}
	fmt.Fprintf(a.out, "%s %s  %s  %s\n", marker, s.ID, s.Name, s.CreatedAt.Format("2006-01-02 15:04"))
}
