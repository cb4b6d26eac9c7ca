package proxy

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when the worker connection is down, never became
// ready, or was invalidated by the worker (authentication rejection).
var ErrUnavailable = errors.New("download worker unavailable")

// ErrAuthRequired wraps ErrUnavailable for the worker's login-required signal.
var ErrAuthRequired = fmt.Errorf("%w: authentication required", ErrUnavailable)

// TimeoutError is returned when a request/response operation's deadline
// elapsed with no matching completion from the worker.
type TimeoutError struct {
	Op string // "add", "search", "releases"
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s request timed out waiting for the worker", e.Op)
}

// DesyncError reports an inbound diff referencing a queue item the mirror
// does not know about. The mirror can no longer be trusted; callers should
// reconnect to resync from a fresh queue snapshot.
type DesyncError struct {
	Event string
	ID    string
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("queue mirror out of sync: %s references unknown item %q", e.Event, e.ID)
}
