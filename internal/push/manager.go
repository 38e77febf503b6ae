// Package push manages the device's push registration: a small state
// machine around subscribe and unsubscribe, a persisted registration
// record, and delivery of incoming push messages as notifications.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/kopislukatan/storyapp/internal/common"
	"github.com/kopislukatan/storyapp/internal/logging"
	"github.com/kopislukatan/storyapp/internal/models"
	"github.com/kopislukatan/storyapp/internal/notify"
	"github.com/kopislukatan/storyapp/internal/repositories/settings"
)

// State is the lifecycle position of the push registration.
type State int

const (
	StateUnsubscribed State = iota
	StateSubscribing
	StateSubscribed
	StateUnsubscribing
)

func (s State) String() string {
	switch s {
	case StateSubscribing:
		return "subscribing"
	case StateSubscribed:
		return "subscribed"
	case StateUnsubscribing:
		return "unsubscribing"
	default:
		return "unsubscribed"
	}
}

// subscriptionKey is the settings key the registration record lives under.
const subscriptionKey = "push_subscription"

// Remote mirrors the registration on the server's subscriber registry.
type Remote interface {
	Subscribe(ctx context.Context, sub *models.Subscription) error
	Unsubscribe(ctx context.Context, endpoint string) error
}

// Manager owns the device's single push registration. Subscribe and
// Unsubscribe are idempotent; calls arriving while a transition is in
// flight fail with ErrSubmitInProgress rather than queueing.
type Manager struct {
	registrar Registrar
	remote    Remote
	store     settings.Repository
	notifier  notify.Notifier
	log       logging.Logger

	vapidPublicKey string

	mu    sync.Mutex
	state State
	sub   *models.Subscription
}

func NewManager(registrar Registrar, remote Remote, store settings.Repository, notifier notify.Notifier, vapidPublicKey string, log logging.Logger) *Manager {
	return &Manager{
		registrar:      registrar,
		remote:         remote,
		store:          store,
		notifier:       notifier,
		vapidPublicKey: vapidPublicKey,
		log:            log,
	}
}

// Restore loads a previously persisted registration, so the subscribed
// state survives restarts.
func (m *Manager) Restore(ctx context.Context) error {
	raw, err := m.store.Get(ctx, subscriptionKey)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	var sub models.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("failed to restore push subscription: %w", err)
	}
	m.mu.Lock()
	m.sub = &sub
	m.state = StateSubscribed
	m.mu.Unlock()
	return nil
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscription returns the active registration, or nil when unsubscribed.
func (m *Manager) Subscription() *models.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sub
}

func (m *Manager) begin(from, transition State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case from:
		m.state = transition
		return nil
	case StateSubscribing, StateUnsubscribing:
		return common.ErrSubmitInProgress
	default:
		// already in the target state: nothing to do
		return errAlreadyDone
	}
}

var errAlreadyDone = errors.New("already in requested state")

// Subscribe registers the device and announces the registration to the
// server. A remote outage does not roll the registration back: the local
// state stays subscribed and the announcement is left for a later
// Subscribe on the same record or a fresh session. A remote rejection does
// roll it back.
func (m *Manager) Subscribe(ctx context.Context) error {
	if err := m.begin(StateUnsubscribed, StateSubscribing); err != nil {
		if errors.Is(err, errAlreadyDone) {
			return nil
		}
		return err
	}

	sub, err := m.registrar.Register(ctx, m.vapidPublicKey)
	if err != nil {
		m.setState(StateUnsubscribed, nil)
		return err
	}

	raw, err := json.Marshal(sub)
	if err != nil {
		m.setState(StateUnsubscribed, nil)
		return fmt.Errorf("failed to encode push subscription: %w", err)
	}
	if err := m.store.Set(ctx, subscriptionKey, raw); err != nil {
		_ = m.registrar.Unregister(ctx, sub.Endpoint)
		m.setState(StateUnsubscribed, nil)
		return err
	}

	if err := m.remote.Subscribe(ctx, sub); err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			m.log.Warn(ctx, "push subscription saved, server announcement deferred", "endpoint", sub.Endpoint)
			m.setState(StateSubscribed, sub)
			return nil
		}
		_ = m.registrar.Unregister(ctx, sub.Endpoint)
		_ = m.store.Delete(ctx, subscriptionKey)
		m.setState(StateUnsubscribed, nil)
		return err
	}

	m.setState(StateSubscribed, sub)
	m.log.Info(ctx, "push subscription active", "endpoint", sub.Endpoint)
	return nil
}

// Unsubscribe withdraws the registration everywhere. The local record is
// removed even when the server cannot be reached; a dangling server-side
// registration points at a dead endpoint and expires on its own.
func (m *Manager) Unsubscribe(ctx context.Context) error {
	if err := m.begin(StateSubscribed, StateUnsubscribing); err != nil {
		if errors.Is(err, errAlreadyDone) {
			return nil
		}
		return err
	}

	m.mu.Lock()
	sub := m.sub
	m.mu.Unlock()

	if err := m.remote.Unsubscribe(ctx, sub.Endpoint); err != nil && !errors.Is(err, common.ErrUnavailable) {
		m.log.Warn(ctx, "server refused push unsubscribe, removing locally anyway", "error", err)
	}
	_ = m.registrar.Unregister(ctx, sub.Endpoint)
	if err := m.store.Delete(ctx, subscriptionKey); err != nil {
		m.setState(StateSubscribed, sub)
		return err
	}

	m.setState(StateUnsubscribed, nil)
	m.log.Info(ctx, "push subscription removed", "endpoint", sub.Endpoint)
	return nil
}

func (m *Manager) setState(s State, sub *models.Subscription) {
	m.mu.Lock()
	m.state = s
	m.sub = sub
	m.mu.Unlock()
}

// HandlePush presents an incoming push message as a notification. Messages
// arriving while unsubscribed are dropped.
func (m *Manager) HandlePush(ctx context.Context, data []byte) error {
	if m.State() != StateSubscribed {
		return nil
	}
	n := ParsePayload(data)
	if err := m.notifier.Show(n); err != nil {
		return fmt.Errorf("failed to present push notification: %w", err)
	}
	return nil
}
