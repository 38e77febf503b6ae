package cache

import (
	"net/http"
	"path"
	"strings"
)

// Class is the resource class of an outgoing request. Every request maps to
// exactly one class.
type Class int

const (
	ClassOther Class = iota
	ClassDocument
	ClassStatic
	ClassImage
	ClassAPI
)

func (c Class) String() string {
	switch c {
	case ClassDocument:
		return "document"
	case ClassStatic:
		return "static"
	case ClassImage:
		return "image"
	case ClassAPI:
		return "api"
	default:
		return "other"
	}
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
	".ico":  true,
}

// classify maps a request to its resource class. Requests to the API host
// are api calls, except the media path, which is served as images. For
// everything else the URL extension decides, with an HTML Accept header
// marking navigations.
func classify(req *http.Request, apiHost string) Class {
	if req.URL.Host == apiHost {
		if strings.Contains(req.URL.Path, "/images/") {
			return ClassImage
		}
		return ClassAPI
	}

	ext := strings.ToLower(path.Ext(req.URL.Path))
	switch {
	case ext == ".css" || ext == ".js":
		return ClassStatic
	case imageExtensions[ext]:
		return ClassImage
	case ext == ".html" || ext == "":
		return ClassDocument
	case strings.Contains(req.Header.Get("Accept"), "text/html"):
		return ClassDocument
	default:
		return ClassOther
	}
}
