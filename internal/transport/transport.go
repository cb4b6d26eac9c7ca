package transport

import "encoding/json"

// Handler receives the raw payload of a single named event. Handlers are
// invoked from the transport's delivery goroutine in arrival order and must
// not block.
type Handler func(data json.RawMessage)

// Transport is a duplex named-event channel to the download worker. Both
// sides may push messages at any time; there is no built-in request/response
// framing. Implementations guarantee serialized handler delivery per
// connection but no ordering between concurrent Emit calls and inbound
// deliveries.
type Transport interface {
	// Connect opens the channel to addr (host:port). Handlers registered
	// via On before Connect receive events from the moment the channel is up.
	Connect(addr string) error

	// On registers (or replaces) the handler for a named event.
	On(event string, h Handler)

	// Emit sends a named event with a JSON-encodable payload.
	Emit(event string, payload any) error

	// Disconnect closes the channel. Safe to call when not connected.
	Disconnect() error

	// Connected reports whether the channel is currently up.
	Connected() bool
}
