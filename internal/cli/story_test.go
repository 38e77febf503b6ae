package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopislukatan/storyapp/internal/logging"
	"github.com/kopislukatan/storyapp/internal/models"
)

type stubStories struct {
	detail *models.Story
}

func (s *stubStories) List(ctx context.Context) ([]models.Story, bool, error) { return nil, false, nil }
func (s *stubStories) Refresh(ctx context.Context) error                      { return nil }
func (s *stubStories) Detail(ctx context.Context, id string) (*models.Story, error) {
	return s.detail, nil
}
func (s *stubStories) Add(ctx context.Context, draft models.Draft) (bool, error) { return false, nil }
func (s *stubStories) Favorite(ctx context.Context, id string) error             { return nil }
func (s *stubStories) Unfavorite(ctx context.Context, id string) error           { return nil }
func (s *stubStories) IsFavorite(ctx context.Context, id string) (bool, error)   { return false, nil }
func (s *stubStories) Favorites(ctx context.Context) ([]models.Story, error)     { return nil, nil }

type recordingTransport struct {
	url atomic.Value
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.url.Store(req.URL.String())
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     http.Header{"Content-Type": []string{"image/jpeg"}},
		Body:       io.NopCloser(bytes.NewReader([]byte{0xFF, 0xD8, 0xFF})),
		Request:    req,
	}, nil
}

func TestShow_FetchesPhotoThroughSharedClient(t *testing.T) {
	photoURL := "https://story-api.example.test/v1/images/stories/p1.jpg"
	transport := &recordingTransport{}
	var out bytes.Buffer

	a := &App{
		log: logging.Nop{},
		web: &http.Client{Transport: transport},
		storyService: &stubStories{detail: &models.Story{
			ID:          "s1",
			Name:        "Ana",
			Description: "Senja di pantai",
			PhotoURL:    photoURL,
		}},
		out: &out,
	}

	require.NoError(t, a.Show(context.Background(), "s1"))

	got, _ := transport.url.Load().(string)
	assert.Equal(t, photoURL, got)
	assert.Contains(t, out.String(), "photo: "+photoURL)
}

func TestShow_NoPhotoURLSkipsFetch(t *testing.T) {
	transport := &recordingTransport{}
	var out bytes.Buffer

	a := &App{
		log: logging.Nop{},
		web: &http.Client{Transport: transport},
		storyService: &stubStories{detail: &models.Story{
			ID:          "s2",
			Name:        "Budi",
			Description: "Tanpa foto",
		}},
		out: &out,
	}

	require.NoError(t, a.Show(context.Background(), "s2"))

	assert.Nil(t, transport.url.Load())
	assert.False(t, strings.Contains(out.String(), "photo:"))
}
