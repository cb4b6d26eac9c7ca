package proxy

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/riptide-dl/riptide/internal/transport"
)

// DefaultTimeout bounds every request/response operation and the initial
// settings-snapshot wait.
const DefaultTimeout = 60 * time.Second

// DefaultSearchPageSize is the number of albums requested per search.
const DefaultSearchPageSize = 100

// Notification messages fanned out to listeners registered via Notifications.
type (
	// QueueUpdatedMsg signals that the mirrored queue changed in any way.
	QueueUpdatedMsg struct{}
	// ItemCompletedMsg carries an item that just transitioned to Completed.
	ItemCompletedMsg struct{ Item QueueItem }
	// AuthRequiredMsg signals that the worker demanded a login.
	AuthRequiredMsg struct{}
)

// Client turns the worker's asynchronous named-event channel into synchronous,
// deadline-bounded operations and keeps a locally consistent mirror of the
// remote download queue. One Client owns one connection; the mirror and the
// pending-request table are never shared across clients.
type Client struct {
	addr    string
	tr      transport.Transport
	timeout time.Duration

	// SearchPageSize is the nb parameter of albumSearch requests.
	SearchPageSize int

	acks    ackAllocator
	pending *pendingTable
	mirror  *queueMirror

	mu          sync.RWMutex
	cfg         json.RawMessage
	cfgReady    chan struct{}
	cfgSignaled bool
	fatal       error

	listenerMu sync.Mutex
	listeners  []chan any
}

// New creates a client for the worker at addr using the default timeout.
func New(addr string, tr transport.Transport) *Client {
	return NewWithTimeout(addr, tr, DefaultTimeout)
}

// NewWithTimeout creates a client with an explicit operation deadline.
func NewWithTimeout(addr string, tr transport.Transport, timeout time.Duration) *Client {
	return &Client{
		addr:           addr,
		tr:             tr,
		timeout:        timeout,
		SearchPageSize: DefaultSearchPageSize,
		pending:        newPendingTable(),
		mirror:         newQueueMirror(),
	}
}

// Addr returns the worker address this client is bound to.
func (c *Client) Addr() string {
	return c.addr
}

// Connect opens the event channel, wires all inbound handlers and blocks
// until the worker delivers its initial settings snapshot or the deadline
// elapses. Reconnecting resets the queue mirror and any recorded fatal state,
// so the same client survives a transport-level reconnect without leaking
// prior state.
func (c *Client) Connect() error {
	c.mu.Lock()
	c.cfg = nil
	c.fatal = nil
	c.cfgSignaled = false
	c.cfgReady = make(chan struct{})
	ready := c.cfgReady
	c.mu.Unlock()

	c.mirror.replaceAll(nil)
	c.registerHandlers()

	if err := c.tr.Connect(c.addr); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	select {
	case <-ready:
		return nil
	case <-time.After(c.timeout):
		return fmt.Errorf("%w: no settings snapshot within %s", ErrUnavailable, c.timeout)
	}
}

// Close tears down the connection and all notification listeners.
func (c *Client) Close() error {
	err := c.tr.Disconnect()

	c.listenerMu.Lock()
	for _, ch := range c.listeners {
		close(ch)
	}
	c.listeners = nil
	c.listenerMu.Unlock()

	return err
}

// ready gates every synchronous operation: a recorded fatal condition (auth
// rejection, mirror desync) or a down/unconfigured connection surfaces as the
// operation's error.
func (c *Client) ready() error {
	c.mu.RLock()
	fatal := c.fatal
	configured := c.cfg != nil
	c.mu.RUnlock()

	if fatal != nil {
		return fatal
	}
	if !c.tr.Connected() || !configured {
		return ErrUnavailable
	}
	return nil
}

// Config returns the worker's last settings snapshot.
func (c *Client) Config() (json.RawMessage, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append(json.RawMessage(nil), c.cfg...), nil
}

// Queue returns a consistent snapshot of the mirrored download queue.
func (c *Client) Queue() ([]QueueItem, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.mirror.list(), nil
}

// Remove asks the worker to drop a queue item. Fire-and-forget: no
// acknowledgement is awaited; the removal shows up later as a
// removedFromQueue event.
func (c *Client) Remove(id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.tr.Emit(evRemoveFromQueue, removeFromQueuePayload{ID: id}); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Download submits a URL for download at the given bitrate tier and returns
// the remote id the worker assigned to the new queue item. The pending slot
// is registered before the request is emitted so a fast worker reply can
// never arrive unmatched.
func (c *Client) Download(url string, bitrate int) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}

	ack := c.acks.Next()
	c.pending.register(ack)
	defer c.pending.deregister(ack)

	payload := addToQueuePayload{URL: url, Bitrate: bitrate, Ack: ack}
	if err := c.tr.Emit(evAddToQueue, payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	v, ok := c.pending.wait(ack, c.timeout)
	if !ok {
		return "", &TimeoutError{Op: "add"}
	}
	id, _ := v.(string)
	return id, nil
}

// Search runs an album search on the worker and blocks for the result.
func (c *Client) Search(term string) (SearchResult, error) {
	if err := c.ready(); err != nil {
		return SearchResult{}, err
	}

	ack := c.acks.Next()
	c.pending.register(ack)
	defer c.pending.deregister(ack)

	payload := albumSearchPayload{Term: term, Start: 0, Nb: c.SearchPageSize, Ack: ack}
	if err := c.tr.Emit(evAlbumSearch, payload); err != nil {
		return SearchResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	v, ok := c.pending.wait(ack, c.timeout)
	if !ok {
		return SearchResult{}, &TimeoutError{Op: "search"}
	}
	res, _ := v.(SearchResult)
	return res, nil
}

// RecentReleases fetches the worker's recent-releases feed.
func (c *Client) RecentReleases() (SearchResult, error) {
	if err := c.ready(); err != nil {
		return SearchResult{}, err
	}

	ack := c.acks.Next()
	c.pending.register(ack)
	defer c.pending.deregister(ack)

	if err := c.tr.Emit(evNewReleases, newReleasesPayload{Ack: ack}); err != nil {
		return SearchResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	v, ok := c.pending.wait(ack, c.timeout)
	if !ok {
		return SearchResult{}, &TimeoutError{Op: "releases"}
	}
	res, _ := v.(SearchResult)
	return res, nil
}

// Notifications registers a listener for queue change messages. The returned
// cleanup removes the listener; sends are non-blocking, so a slow consumer
// misses messages rather than stalling the delivery goroutine.
func (c *Client) Notifications() (<-chan any, func()) {
	ch := make(chan any, 64)

	c.listenerMu.Lock()
	c.listeners = append(c.listeners, ch)
	c.listenerMu.Unlock()

	cleanup := func() {
		c.listenerMu.Lock()
		defer c.listenerMu.Unlock()
		for i, listener := range c.listeners {
			if listener == ch {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				close(ch)
				break
			}
		}
	}
	return ch, cleanup
}

func (c *Client) notify(msg any) {
	c.listenerMu.Lock()
	for _, ch := range c.listeners {
		select {
		case ch <- msg:
		default:
		}
	}
	c.listenerMu.Unlock()
}

// recordFatal stores the first fatal condition; later operations return it.
func (c *Client) recordFatal(err error) {
	c.mu.Lock()
	if c.fatal == nil {
		c.fatal = err
	}
	c.mu.Unlock()
}
