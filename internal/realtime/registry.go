package realtime

import (
	"sync"

	"github.com/samber/lo"
)

// Registry is the set of live connections. It is safe for concurrent use;
// broadcasts iterate a snapshot so registration never blocks on delivery.
type Registry struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[*Client]struct{})}
}

// Add registers c. Adding twice is a no-op.
func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	r.clients[c] = struct{}{}
	r.mu.Unlock()
}

// Remove unregisters c and reports whether it was present.
func (r *Registry) Remove(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c]; !ok {
		return false
	}
	delete(r.clients, c)
	return true
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Snapshot returns the registered clients at this instant.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.clients)
}

// Broadcast queues payload on every registered client and returns how many
// accepted it. A client whose queue is full is evicted and closed.
func (r *Registry) Broadcast(payload []byte) int {
	delivered := 0
	for _, c := range r.Snapshot() {
		if c.enqueue(payload) {
			delivered++
			continue
		}
		if r.Remove(c) {
			c.log.Warn().Msg("send queue full; evicting client")
			chatConnectionsActive.Dec()
			c.close()
		}
	}
	chatBroadcastDeliveries.Add(float64(delivered))
	return delivered
}
