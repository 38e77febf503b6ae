// Package cache is the request-caching layer: an http.RoundTripper that
// classifies every outgoing request into a resource class and applies that
// class's caching strategy, backed by per-namespace persisted caches with
// their own eviction limits.
package cache

import "time"

// Version tags every namespace name. Bumping it and calling
// Router.Activate cuts all prior-version caches over to the new set.
const Version = "v3"

// Namespace is an isolated cache partition: one resource class, its own
// entry budget and maximum entry age.
type Namespace struct {
	Name       string
	MaxEntries int
	MaxAge     time.Duration
}

const day = 24 * time.Hour

var (
	staticNamespace = Namespace{Name: "static-cache-" + Version, MaxEntries: 60, MaxAge: 30 * day}
	imagesNamespace = Namespace{Name: "images-cache-" + Version, MaxEntries: 100, MaxAge: 30 * day}
	pagesNamespace  = Namespace{Name: "pages-cache-" + Version, MaxEntries: 50, MaxAge: 30 * day}
	apiNamespace    = Namespace{Name: "api-cache-" + Version, MaxEntries: 100, MaxAge: day}
)

// currentNamespaces is the set a cutover keeps; everything else is deleted.
func currentNamespaces() []string {
	return []string{
		staticNamespace.Name,
		imagesNamespace.Name,
		pagesNamespace.Name,
		apiNamespace.Name,
	}
}
