package proxy

import (
	"sync"
	"time"

	"github.com/riptide-dl/riptide/internal/transport"
)

// Registry caches one Client per worker address. Get-or-create is
// single-flight: even under concurrent first access, at most one Client is
// ever constructed per address and every caller receives the same instance.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*Client
	dial    func(addr string) *Client
}

// NewRegistry creates a registry whose clients use websocket transports and
// the given operation timeout.
func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		dial: func(addr string) *Client {
			return NewWithTimeout(addr, transport.NewWSTransport(), timeout)
		},
	}
}

// Get returns the Client for addr, constructing it on first access.
func (r *Registry) Get(addr string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[addr]; ok {
		return c
	}
	c := r.dial(addr)
	r.clients[addr] = c
	return c
}
