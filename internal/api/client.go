// Package api is the HTTP client for the remote story service.
//
// Every response uses the common envelope {error, message, ...}; error=true
// becomes common.ErrRejected with the server message verbatim, transport
// failures become common.ErrUnavailable. Raw transport errors never leave
// this package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/kopislukatan/storyapp/internal/common"
	"github.com/kopislukatan/storyapp/internal/models"
)

// Client talks to the story API. The zero value is not usable; construct
// with New. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu         sync.Mutex
	token      string
	submitting bool
}

// New returns a Client for the given base URL (e.g.
// "https://story-api.dicoding.dev/v1"). httpClient may carry a caching
// transport; if nil, http.DefaultClient is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// SetToken installs the bearer token used on authenticated calls.
// An empty token switches the client back to the guest path.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// envelope is the common wire format of every API response.
type envelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type listResponse struct {
	envelope
	ListStory []models.Story `json:"listStory"`
}

type detailResponse struct {
	envelope
	Story models.Story `json:"story"`
}

type loginResponse struct {
	envelope
	LoginResult models.LoginResult `json:"loginResult"`
}

func (c *Client) do(req *http.Request, out any) error {
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// a fabricated offline response is unavailability, not a server verdict
	if resp.Header.Get(common.HeaderOfflineFallback) != "" {
		return fmt.Errorf("%w: no connection and no cached response", common.ErrUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", common.ErrUnavailable, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: unexpected response (%s): %v", common.ErrUnavailable, resp.Status, err)
	}
	if env.Error {
		return &common.RemoteRejection{Message: env.Message}
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: decoding response: %v", common.ErrUnavailable, err)
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	payload := map[string]string{"name": name, "email": email, "password": password}
	return c.postJSON(ctx, "/register", payload, nil)
}

// Login authenticates and returns the account snapshot plus token. The
// token is not installed automatically; callers decide when to keep it.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var out loginResponse
	if err := c.postJSON(ctx, "/login", payload, &out); err != nil {
		return nil, err
	}
	return &out.LoginResult, nil
}

// ListStories fetches a page of the feed. withLocation asks the server to
// include coordinates.
func (c *Client) ListStories(ctx context.Context, page, size int, withLocation bool) ([]models.Story, error) {
	location := 0
	if withLocation {
		location = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("location", strconv.Itoa(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stories?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	var out listResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.ListStory, nil
}

// StoryDetail fetches a single story.
func (c *Client) StoryDetail(ctx context.Context, id string) (*models.Story, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stories/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	var out detailResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out.Story, nil
}

// AddStory submits a new story as multipart form data. With a token set it
// posts to the authenticated path, otherwise to the guest path.
//
// A single-flight guard rejects a second concurrent submission from this
// client with common.ErrSubmitInProgress. The guard is advisory and only
// covers this process.
func (c *Client) AddStory(ctx context.Context, description string, photo []byte, lat, lon *float64) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return common.ErrSubmitInProgress
	}
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("description", description); err != nil {
		return fmt.Errorf("building form: %w", err)
	}
	part, err := w.CreateFormFile("photo", uuid.NewString()+".jpg")
	if err != nil {
		return fmt.Errorf("building form: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return fmt.Errorf("building form: %w", err)
	}
	if lat != nil {
		if err := w.WriteField("lat", strconv.FormatFloat(*lat, 'f', -1, 64)); err != nil {
			return fmt.Errorf("building form: %w", err)
		}
	}
	if lon != nil {
		if err := w.WriteField("lon", strconv.FormatFloat(*lon, 'f', -1, 64)); err != nil {
			return fmt.Errorf("building form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("building form: %w", err)
	}

	path := "/stories"
	if c.currentToken() == "" {
		path = "/stories/guest"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, nil)
}

// Subscribe mirrors a push registration on the remote subscriber registry.
// Requires an authenticated session.
func (c *Client) Subscribe(ctx context.Context, sub *models.Subscription) error {
	if c.currentToken() == "" {
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, common.MsgLoginRequired)
	}
	return c.postJSON(ctx, "/notifications/subscribe", sub, nil)
}

// Unsubscribe removes a push registration from the remote registry.
func (c *Client) Unsubscribe(ctx context.Context, endpoint string) error {
	if c.currentToken() == "" {
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, common.MsgLoginRequired)
	}
	payload := map[string]string{"endpoint": endpoint}
	return c.sendJSON(ctx, http.MethodDelete, "/notifications/subscribe", payload, nil)
}

// Ping probes server reachability. Any HTTP answer counts as reachable;
// only transport failures report offline.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/stories", nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	_ = resp.Body.Close()
	return nil
}
