// Package connectivity tracks online/offline transitions.
//
// Consumers never poll an ambient flag: they hold a *Monitor and either ask
// it (Online) or subscribe to transitions. The probe loop is the only writer
// in production; tests drive Set directly.
package connectivity

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kopislukatan/storyapp/internal/logging"
)

// Monitor is the connectivity capability shared by the sync engine, the
// services, and the CLI.
type Monitor struct {
	log logging.Logger

	mu     sync.Mutex
	online bool
	subs   map[int]func(online bool)
	nextID int
}

// New returns a Monitor with the given initial state.
func New(initial bool, log logging.Logger) *Monitor {
	if log == nil {
		log = logging.Nop{}
	}
	return &Monitor{
		log:    log,
		online: initial,
		subs:   make(map[int]func(bool)),
	}
}

// Online reports the current state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers fn to run on every transition. The returned cancel
// func removes the subscription. Callbacks run outside the monitor's lock,
// in subscription order, on the goroutine that triggered the transition.
func (m *Monitor) Subscribe(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Set records the observed state and, on an actual transition, notifies
// subscribers. Setting the current state again is a no-op.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	fns := make([]func(bool), 0, len(m.subs))
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	// map order is random; keep subscription order
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.mu.Unlock()

	m.log.Info(context.Background(), "connectivity changed", "online", online)
	for _, fn := range fns {
		fn(online)
	}
}

// Watch probes reachability on a ticker and feeds the result into Set.
// Each probe gets a short deadline; an error means offline. Blocks until
// ctx is done, so run it on its own goroutine.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration, probe func(ctx context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := probe(probeCtx)
			cancel()
			m.Set(err == nil)

		case <-ctx.Done():
			return
		}
	}
}
