package cache

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kopislukatan/storyapp/internal/common"
	"github.com/kopislukatan/storyapp/internal/logging"
)

//go:embed assets/offline.html
var offlinePage []byte

//go:embed assets/offline-image.png
var offlineImage []byte

const networkTimeout = 3 * time.Second

// Router is an http.RoundTripper that caches GET responses per namespace.
// Each namespace pairs a retrieval strategy with entry and age budgets;
// non-GET requests and unclassified URLs pass through to the base transport
// untouched.
type Router struct {
	base    http.RoundTripper
	store   *Store
	apiHost string
	log     logging.Logger

	routes map[Class]route

	// afterUpdate is a test seam: called when a background revalidation
	// finishes writing to the cache.
	afterUpdate func()
}

type route struct {
	ns       Namespace
	strategy strategy
}

func NewRouter(base http.RoundTripper, store *Store, apiBaseURL string, log logging.Logger) (*Router, error) {
	if base == nil {
		base = http.DefaultTransport
	}
	u, err := url.Parse(apiBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse api base url: %w", err)
	}
	r := &Router{base: base, store: store, apiHost: u.Host, log: log}
	r.routes = map[Class]route{
		ClassStatic:   {staticNamespace, staleWhileRevalidate{}},
		ClassImage:    {imagesNamespace, cacheFirst{fallback: offlineImage, fallbackType: "image/png"}},
		ClassDocument: {pagesNamespace, networkFirst{fallback: offlinePage, fallbackType: "text/html; charset=utf-8"}},
		ClassAPI:      {apiNamespace, networkFirst{}},
	}
	return r, nil
}

func (r *Router) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return r.base.RoundTrip(req)
	}
	rt, ok := r.routes[classify(req, r.apiHost)]
	if !ok {
		return r.base.RoundTrip(req)
	}
	return rt.strategy.fetch(r, rt.ns, req)
}

// Activate deletes every cached entry that does not belong to the current
// cache version, so an upgrade never serves a previous version's content.
func (r *Router) Activate(ctx context.Context) error {
	return r.store.Purge(ctx, currentNamespaces())
}

func requestKey(req *http.Request) string {
	return req.Method + " " + req.URL.String()
}

// cacheable reports whether a response may be stored. Only complete
// successful responses are kept; an error page must never shadow good
// content.
func cacheable(status int) bool {
	return status == 0 || status == http.StatusOK
}

// fetchAndStore performs the request against the base transport with a
// bounded timeout, buffers the body, and caches the response when allowed.
// The returned response is fully buffered and safe to use after the request
// context ends.
func (r *Router) fetchAndStore(ns Namespace, req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), networkTimeout)
	defer cancel()

	resp, err := r.base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	if cacheable(resp.StatusCode) {
		e := &Entry{
			Key:         requestKey(req),
			Status:      resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        body,
		}
		if err := r.store.Put(req.Context(), ns, e); err != nil {
			r.log.Warn(req.Context(), "failed to cache response", "url", req.URL.String(), "error", err)
		}
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}

func (r *Router) lookup(ns Namespace, req *http.Request) *http.Response {
	e, err := r.store.Get(req.Context(), ns, requestKey(req))
	if err != nil {
		r.log.Warn(req.Context(), "cache lookup failed", "url", req.URL.String(), "error", err)
		return nil
	}
	if e == nil {
		return nil
	}
	return entryResponse(req, e)
}

func entryResponse(req *http.Request, e *Entry) *http.Response {
	header := make(http.Header)
	if e.ContentType != "" {
		header.Set("Content-Type", e.ContentType)
	}
	status := e.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

func syntheticResponse(req *http.Request, status int, contentType string, body []byte) *http.Response {
	resp := entryResponse(req, &Entry{Status: status, ContentType: contentType, Body: body})
	resp.Header.Set(common.HeaderOfflineFallback, "1")
	return resp
}

type strategy interface {
	fetch(r *Router, ns Namespace, req *http.Request) (*http.Response, error)
}

// networkFirst tries the network within the timeout and falls back to the
// cache. With neither available it serves the configured fallback body, or
// for the API a synthesized error envelope so callers see a regular
// rejected response instead of a transport failure.
type networkFirst struct {
	fallback     []byte
	fallbackType string
}

func (s networkFirst) fetch(r *Router, ns Namespace, req *http.Request) (*http.Response, error) {
	resp, err := r.fetchAndStore(ns, req)
	if err == nil {
		return resp, nil
	}
	r.log.Debug(req.Context(), "network fetch failed, trying cache", "url", req.URL.String(), "error", err)

	if cached := r.lookup(ns, req); cached != nil {
		return cached, nil
	}
	if s.fallback != nil {
		return syntheticResponse(req, http.StatusOK, s.fallbackType, s.fallback), nil
	}
	body, _ := json.Marshal(map[string]any{
		"error":   true,
		"message": common.MsgOffline,
	})
	return syntheticResponse(req, http.StatusServiceUnavailable, "application/json", body), nil
}

// cacheFirst serves from the cache when possible and reaches for the
// network only on a miss. When both fail it serves the placeholder body.
type cacheFirst struct {
	fallback     []byte
	fallbackType string
}

func (s cacheFirst) fetch(r *Router, ns Namespace, req *http.Request) (*http.Response, error) {
	if cached := r.lookup(ns, req); cached != nil {
		return cached, nil
	}
	resp, err := r.fetchAndStore(ns, req)
	if err == nil {
		return resp, nil
	}
	return syntheticResponse(req, http.StatusOK, s.fallbackType, s.fallback), nil
}

// staleWhileRevalidate serves the cached copy immediately and refreshes it
// in the background; on a miss it waits for the network.
type staleWhileRevalidate struct{}

func (staleWhileRevalidate) fetch(r *Router, ns Namespace, req *http.Request) (*http.Response, error) {
	cached := r.lookup(ns, req)
	if cached == nil {
		return r.fetchAndStore(ns, req)
	}

	bg := req.Clone(context.Background())
	go func() {
		if _, err := r.fetchAndStore(ns, bg); err != nil {
			r.log.Debug(bg.Context(), "background revalidation failed", "url", bg.URL.String(), "error", err)
		}
		if r.afterUpdate != nil {
			r.afterUpdate()
		}
	}()
	return cached, nil
}
