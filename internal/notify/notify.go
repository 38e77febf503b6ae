// Package notify delivers user-facing notifications. The push manager and
// sync engine depend on the Notifier interface so the presentation surface
// stays injectable.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Notification is one message to present to the user.
type Notification struct {
	Title   string
	Body    string
	Icon    string
	Badge   string
	Vibrate []int
	URL     string
}

// Notifier presents notifications to the user.
type Notifier interface {
	Show(n Notification) error
}

// WriterNotifier prints notifications to an io.Writer, one per line.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Show(msg Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := fmt.Fprintf(n.w, "[%s] %s\n", msg.Title, msg.Body); err != nil {
		return fmt.Errorf("failed to show notification: %w", err)
	}
	return nil
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Show(Notification) error { return nil }
