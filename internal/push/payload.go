package push

import (
	"encoding/json"

	"github.com/kopislukatan/storyapp/internal/notify"
)

// Defaults applied when an incoming push message omits a field or is not
// valid JSON at all.
const (
	defaultTitle = "Kopi Slukatan"
	defaultBody  = "Ada cerita baru untuk Anda."
	defaultIcon  = "/assets/icons/icon-192x192.png"
	defaultBadge = "/assets/icons/badge-72x72.png"
	defaultURL   = "/#stories"
)

func defaultVibrate() []int { return []int{100, 50, 100} }

type payload struct {
	Title   string `json:"title"`
	Options struct {
		Body    string `json:"body"`
		Icon    string `json:"icon"`
		Badge   string `json:"badge"`
		Vibrate []int  `json:"vibrate"`
		Data    struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"options"`
}

// ParsePayload decodes a raw push message into a notification. A malformed
// message never drops the notification: non-JSON input becomes the body of
// a default-titled notification, and every missing field falls back to its
// default.
func ParsePayload(data []byte) notify.Notification {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		body := string(data)
		if body == "" {
			body = defaultBody
		}
		return notify.Notification{
			Title:   defaultTitle,
			Body:    body,
			Icon:    defaultIcon,
			Badge:   defaultBadge,
			Vibrate: defaultVibrate(),
			URL:     defaultURL,
		}
	}

	n := notify.Notification{
		Title:   p.Title,
		Body:    p.Options.Body,
		Icon:    p.Options.Icon,
		Badge:   p.Options.Badge,
		Vibrate: p.Options.Vibrate,
		URL:     p.Options.Data.URL,
	}
	if n.Title == "" {
		n.Title = defaultTitle
	}
	if n.Body == "" {
		n.Body = defaultBody
	}
	if n.Icon == "" {
		n.Icon = defaultIcon
	}
	if n.Badge == "" {
		n.Badge = defaultBadge
	}
	if len(n.Vibrate) == 0 {
		n.Vibrate = defaultVibrate()
	}
	if n.URL == "" {
		n.URL = defaultURL
	}
	return n
}
