package transport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/riptide-dl/riptide/internal/utils"
)

// frame is the wire envelope: one JSON object per websocket message.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WSTransport implements Transport over a websocket connection. A single
// reader goroutine decodes frames and invokes handlers in delivery order.
type WSTransport struct {
	handlerMu sync.RWMutex
	handlers  map[string]Handler

	writeMu sync.Mutex
	conn    *websocket.Conn

	connected atomic.Bool
	session   string
}

func NewWSTransport() *WSTransport {
	return &WSTransport{
		handlers: make(map[string]Handler),
		session:  uuid.New().String(),
	}
}

// Connect dials ws://addr/events and starts the read loop.
func (t *WSTransport) Connect(addr string) error {
	u := url.URL{
		Scheme:   "ws",
		Host:     addr,
		Path:     "/events",
		RawQuery: "session=" + t.session,
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	t.writeMu.Lock()
	t.conn = conn
	t.writeMu.Unlock()
	t.connected.Store(true)

	utils.Debug("transport: connected to %s (session %s)", addr, t.session)

	go t.readLoop(conn)
	return nil
}

// On registers a handler for a named event, replacing any previous one.
func (t *WSTransport) On(event string, h Handler) {
	t.handlerMu.Lock()
	t.handlers[event] = h
	t.handlerMu.Unlock()
}

// Emit sends a named event. Concurrent emits are serialized.
func (t *WSTransport) Emit(event string, payload any) error {
	if !t.connected.Load() {
		return fmt.Errorf("emit %s: not connected", event)
	}

	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("emit %s: %w", event, err)
		}
		data = b
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if t.conn == nil {
		return fmt.Errorf("emit %s: not connected", event)
	}
	return t.conn.WriteJSON(frame{Event: event, Data: data})
}

// Disconnect closes the connection and stops the read loop.
func (t *WSTransport) Disconnect() error {
	t.connected.Store(false)

	t.writeMu.Lock()
	conn := t.conn
	t.conn = nil
	t.writeMu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Connected reports whether the channel is currently up.
func (t *WSTransport) Connected() bool {
	return t.connected.Load()
}

func (t *WSTransport) readLoop(conn *websocket.Conn) {
	defer t.connected.Store(false)

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				utils.Debug("transport: read error: %v", err)
			}
			return
		}
		if f.Event == "" {
			continue
		}

		t.handlerMu.RLock()
		h := t.handlers[f.Event]
		t.handlerMu.RUnlock()

		if h == nil {
			utils.Debug("transport: no handler for event %q", f.Event)
			continue
		}
		h(f.Data)
	}
}
