package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riptide-dl/riptide/internal/transport"
)

// fakeTransport is an in-process Transport whose test half can deliver
// inbound events and inspect outbound emissions.
type fakeTransport struct {
	mu        sync.Mutex
	handlers  map[string]transport.Handler
	emitted   []emittedEvent
	connected bool

	// onConnect runs inside Connect, before it returns; used to deliver the
	// worker's greeting (init_settings) the way a real worker does.
	onConnect func(f *fakeTransport)
}

type emittedEvent struct {
	event string
	data  []byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string]transport.Handler)}
}

func (f *fakeTransport) Connect(string) error {
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	if f.onConnect != nil {
		f.onConnect(f)
	}
	return nil
}

func (f *fakeTransport) On(event string, h transport.Handler) {
	f.mu.Lock()
	f.handlers[event] = h
	f.mu.Unlock()
}

func (f *fakeTransport) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.emitted = append(f.emitted, emittedEvent{event: event, data: data})
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Disconnect() error {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// deliver marshals v and invokes the registered handler for event, the same
// way the websocket read loop would.
func (f *fakeTransport) deliver(t *testing.T, event string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)

	f.mu.Lock()
	h := f.handlers[event]
	f.mu.Unlock()
	require.NotNil(t, h, "no handler registered for %s", event)
	h(data)
}

// waitEmit polls for the next outbound emission of event.
func (f *fakeTransport) waitEmit(t *testing.T, event string) emittedEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		for _, e := range f.emitted {
			if e.event == event {
				f.mu.Unlock()
				return e
			}
		}
		f.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("no %s emission within deadline", event)
	return emittedEvent{}
}

func newTestClient(t *testing.T) (*Client, *fakeTransport) {
	t.Helper()
	tr := newFakeTransport()
	tr.onConnect = func(f *fakeTransport) {
		f.mu.Lock()
		h := f.handlers[evInitSettings]
		f.mu.Unlock()
		h(json.RawMessage(`{"defaultBitrate":3}`))
	}
	c := NewWithTimeout("127.0.0.1:6595", tr, time.Second)
	require.NoError(t, c.Connect())
	return c, tr
}

func TestConnectWaitsForSettingsSnapshot(t *testing.T) {
	c, _ := newTestClient(t)

	cfg, err := c.Config()
	require.NoError(t, err)
	require.JSONEq(t, `{"defaultBitrate":3}`, string(cfg))
}

func TestConnectTimesOutWithoutSettings(t *testing.T) {
	tr := newFakeTransport() // never sends init_settings
	c := NewWithTimeout("127.0.0.1:6595", tr, 50*time.Millisecond)

	err := c.Connect()
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestOperationsUnavailableWhenDisconnected(t *testing.T) {
	c, tr := newTestClient(t)
	require.NoError(t, tr.Disconnect())

	_, err := c.Queue()
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = c.Config()
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestInitQueueStatusDerivation(t *testing.T) {
	c, tr := newTestClient(t)

	tr.deliver(t, evInitQueue, map[string]any{
		"queue": []map[string]any{
			{"id": "a1", "title": "Album One", "size": 1000, "progress": 0, "failed": false},
			{"id": "b2", "title": "Album Two", "size": 2000, "progress": 40, "failed": false},
			{"id": "c3", "title": "Album Three", "size": 500, "progress": 10, "failed": true},
		},
	})

	items, err := c.Queue()
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, StatusQueued, items[0].Status)
	require.Equal(t, StatusDownloading, items[1].Status)
	require.Equal(t, StatusFailed, items[2].Status)
	require.Equal(t, int64(1200), items[1].RemainingSize)
}

func TestStatusTransitionDrivenByFinishEvent(t *testing.T) {
	c, tr := newTestClient(t)

	tr.deliver(t, evInitQueue, map[string]any{
		"queue": []map[string]any{
			{"id": "a1", "title": "Album", "size": 1000, "progress": 0, "failed": false},
		},
	})

	// Progress reaching 100 does not by itself complete the item.
	tr.deliver(t, evUpdateQueue, map[string]any{"id": "a1", "progress": 100})
	items, err := c.Queue()
	require.NoError(t, err)
	require.Equal(t, StatusQueued, items[0].Status)
	require.Equal(t, int64(0), items[0].RemainingSize)

	tr.deliver(t, evFinishDownload, map[string]any{"id": "a1"})
	items, err = c.Queue()
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, items[0].Status)
}

func TestDownloadReturnsRemoteID(t *testing.T) {
	c, tr := newTestClient(t)

	go func() {
		e := tr.waitEmit(t, evAddToQueue)
		var req addToQueuePayload
		if err := json.Unmarshal(e.data, &req); err != nil {
			t.Errorf("decode addToQueue: %v", err)
			return
		}
		tr.deliver(t, evAddedToQueue, map[string]any{
			"id": "dz-77", "title": "New Album", "size": 4096, "progress": 0, "failed": false,
			"ack": req.Ack,
		})
	}()

	id, err := c.Download("https://example.com/album/77", 3)
	require.NoError(t, err)
	require.Equal(t, "dz-77", id)

	// The new item landed in the mirror and the token was retired.
	items, err := c.Queue()
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "dz-77", items[0].ID)
	require.Equal(t, 0, c.pending.size())
}

func TestDownloadTimesOut(t *testing.T) {
	tr := newFakeTransport()
	tr.onConnect = func(f *fakeTransport) {
		f.handlers[evInitSettings](json.RawMessage(`{}`))
	}
	c := NewWithTimeout("127.0.0.1:6595", tr, 50*time.Millisecond)
	require.NoError(t, c.Connect())

	_, err := c.Download("https://example.com/album/1", 3)

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	require.Equal(t, "add", timeout.Op)
	require.Equal(t, 0, c.pending.size())
}

func TestSearchMatchesOnAck(t *testing.T) {
	c, tr := newTestClient(t)

	results := make(chan SearchResult, 1)
	errs := make(chan error, 1)
	go func() {
		res, err := c.Search(`artist:"X"`)
		if err != nil {
			errs <- err
			return
		}
		results <- res
	}()

	e := tr.waitEmit(t, evAlbumSearch)
	var req albumSearchPayload
	require.NoError(t, json.Unmarshal(e.data, &req))
	require.Equal(t, `artist:"X"`, req.Term)
	require.Equal(t, 0, req.Start)
	require.Equal(t, DefaultSearchPageSize, req.Nb)

	// A reply with a foreign ack must leave the call waiting.
	tr.deliver(t, evAlbumSearch, map[string]any{
		"ack": req.Ack + 99, "total": 1,
		"albums": []map[string]any{{"id": 1, "title": "Wrong"}},
	})
	select {
	case <-results:
		t.Fatal("search returned on a foreign ack")
	case err := <-errs:
		t.Fatalf("search failed early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	tr.deliver(t, evAlbumSearch, map[string]any{
		"ack": req.Ack, "total": 2,
		"albums": []map[string]any{
			{"id": 10, "title": "First", "artist": "X", "duration": 2400},
			{"id": 11, "title": "Second", "artist": "X", "duration": 1800},
		},
	})

	select {
	case res := <-results:
		require.Equal(t, 2, res.Total)
		require.Len(t, res.Albums, 2)
		require.Equal(t, "First", res.Albums[0].Title)
	case err := <-errs:
		t.Fatalf("search failed: %v", err)
	case <-time.After(time.Second):
		t.Fatal("search did not return after matching ack")
	}
}

func TestRecentReleases(t *testing.T) {
	c, tr := newTestClient(t)

	go func() {
		e := tr.waitEmit(t, evNewReleases)
		var req newReleasesPayload
		if err := json.Unmarshal(e.data, &req); err != nil {
			t.Errorf("decode newReleases: %v", err)
			return
		}
		tr.deliver(t, evNewReleases, map[string]any{
			"ack": req.Ack, "total": 1,
			"albums": []map[string]any{{"id": 5, "title": "Fresh", "duration": 1200}},
		})
	}()

	res, err := c.RecentReleases()
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	require.Equal(t, "Fresh", res.Albums[0].Title)
}

func TestRemoveIsFireAndForget(t *testing.T) {
	c, tr := newTestClient(t)

	tr.deliver(t, evInitQueue, map[string]any{
		"queue": []map[string]any{{"id": "a1", "size": 10}},
	})

	require.NoError(t, c.Remove("a1"))

	e := tr.waitEmit(t, evRemoveFromQueue)
	var req removeFromQueuePayload
	require.NoError(t, json.Unmarshal(e.data, &req))
	require.Equal(t, "a1", req.ID)

	// The item leaves the mirror only when the worker confirms.
	items, err := c.Queue()
	require.NoError(t, err)
	require.Len(t, items, 1)

	tr.deliver(t, evRemovedFromQueue, map[string]any{"id": "a1"})
	items, err = c.Queue()
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestLoginRequiredSurfacesAsUnavailable(t *testing.T) {
	c, tr := newTestClient(t)

	tr.deliver(t, evLoginNeeded, nil)

	_, err := c.Queue()
	require.ErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "authentication")
}

func TestDesyncSurfacesOnNextOperation(t *testing.T) {
	c, tr := newTestClient(t)

	tr.deliver(t, evRemovedFromQueue, map[string]any{"id": "ghost"})

	_, err := c.Queue()
	var desync *DesyncError
	require.ErrorAs(t, err, &desync)
	require.Equal(t, "ghost", desync.ID)
}

func TestQueueErrorIsSwallowed(t *testing.T) {
	c, tr := newTestClient(t)

	tr.deliver(t, evInitQueue, map[string]any{
		"queue": []map[string]any{{"id": "a1", "size": 10}},
	})
	tr.deliver(t, evQueueError, map[string]any{"id": "a1", "error": "stream glitch"})

	items, err := c.Queue()
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestMalformedPayloadDoesNotPoisonDispatch(t *testing.T) {
	c, tr := newTestClient(t)

	tr.mu.Lock()
	h := tr.handlers[evUpdateQueue]
	tr.mu.Unlock()
	h(json.RawMessage(`{"id": 12`)) // truncated JSON

	_, err := c.Queue()
	require.NoError(t, err)
}

func TestConnectResetsPriorState(t *testing.T) {
	c, tr := newTestClient(t)

	tr.deliver(t, evInitQueue, map[string]any{
		"queue": []map[string]any{{"id": "a1", "size": 10}},
	})
	tr.deliver(t, evLoginNeeded, nil)

	_, err := c.Queue()
	require.Error(t, err)

	// Reconnect clears the mirror and the fatal condition.
	require.NoError(t, c.Connect())
	items, err := c.Queue()
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestNotificationsCarryCompletions(t *testing.T) {
	c, tr := newTestClient(t)

	ch, cleanup := c.Notifications()
	defer cleanup()

	tr.deliver(t, evInitQueue, map[string]any{
		"queue": []map[string]any{{"id": "a1", "title": "Album", "size": 10, "progress": 50}},
	})
	tr.deliver(t, evFinishDownload, map[string]any{"id": "a1"})

	deadline := time.After(time.Second)
	for {
		select {
		case msg := <-ch:
			if m, ok := msg.(ItemCompletedMsg); ok {
				require.Equal(t, "a1", m.Item.ID)
				require.Equal(t, StatusCompleted, m.Item.Status)
				return
			}
		case <-deadline:
			t.Fatal("no ItemCompletedMsg observed")
		}
	}
}

func TestRegistrySingleFlight(t *testing.T) {
	var constructed int32
	r := &Registry{
		clients: make(map[string]*Client),
		dial: func(addr string) *Client {
			constructed++
			return New(addr, newFakeTransport())
		},
	}

	const callers = 16
	var wg sync.WaitGroup
	got := make([]*Client, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = r.Get("10.0.0.1:6595")
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if got[i] != got[0] {
			t.Fatal("registry returned different clients for the same address")
		}
	}

	other := r.Get("10.0.0.2:6595")
	if other == got[0] {
		t.Fatal("distinct addresses must get distinct clients")
	}
}

func TestDownloadTokensAreUniqueAcrossCalls(t *testing.T) {
	c, tr := newTestClient(t)

	// waitNthEmit waits for the n-th (0-based) addToQueue emission.
	waitNthEmit := func(n int) emittedEvent {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			tr.mu.Lock()
			var matches []emittedEvent
			for _, e := range tr.emitted {
				if e.event == evAddToQueue {
					matches = append(matches, e)
				}
			}
			tr.mu.Unlock()
			if len(matches) > n {
				return matches[n]
			}
			time.Sleep(time.Millisecond)
		}
		t.Errorf("addToQueue emission %d never happened", n)
		return emittedEvent{}
	}

	var acks []int64
	for i := 0; i < 3; i++ {
		go func(n int) {
			e := waitNthEmit(n)
			var req addToQueuePayload
			_ = json.Unmarshal(e.data, &req)
			tr.deliver(t, evAddedToQueue, map[string]any{
				"id": fmt.Sprintf("dz-%d", n), "size": 1, "ack": req.Ack,
			})
		}(i)

		id, err := c.Download(fmt.Sprintf("https://example.com/album/%d", i), 3)
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("dz-%d", i), id)

		e := waitNthEmit(i)
		var req addToQueuePayload
		require.NoError(t, json.Unmarshal(e.data, &req))
		acks = append(acks, req.Ack)
	}

	seen := make(map[int64]bool)
	for _, a := range acks {
		require.False(t, seen[a], "ack %d reused", a)
		seen[a] = true
	}
	require.True(t, errors.Is(ErrAuthRequired, ErrUnavailable))
}
