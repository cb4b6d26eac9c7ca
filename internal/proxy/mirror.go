package proxy

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Status is the lifecycle state of a mirrored queue item.
type Status int

const (
	StatusQueued Status = iota
	StatusDownloading
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusDownloading:
		return "downloading"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// QueueItem is the local copy of one entry in the worker's download queue.
// Identity is ID, an opaque stable identifier assigned by the worker.
type QueueItem struct {
	ID            string
	Title         string
	TotalSize     int64
	RemainingSize int64

	// ETA is a linear extrapolation from elapsed wall-clock time and the
	// last reported percent complete. Unstable near 0% and assumes constant
	// throughput; ETAKnown is false until the first nonzero progress report.
	ETA      time.Duration
	ETAKnown bool

	Status Status
	Files  []string

	// StartedAt is recorded locally when the item enters the mirror; the
	// worker does not supply a timestamp.
	StartedAt time.Time

	// OutputDir is the common root of Files, computed on read. Empty while
	// the item has no written files.
	OutputDir string
}

// queueMirror is the local copy of the worker's download queue. It is mutated
// only by the transport's delivery goroutine applying inbound diffs, and read
// by any number of foreground callers; a mutex keeps reads consistent with
// multi-field patches. Any by-id diff for an unknown item is a desync and
// fails loudly rather than being papered over.
type queueMirror struct {
	mu    sync.RWMutex
	order []string
	items map[string]*QueueItem
}

func newQueueMirror() *queueMirror {
	return &queueMirror{items: make(map[string]*QueueItem)}
}

// replaceAll installs a full queue snapshot, discarding all prior state.
func (m *queueMirror) replaceAll(items []QueueItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = m.order[:0]
	m.items = make(map[string]*QueueItem, len(items))
	for i := range items {
		item := items[i]
		m.order = append(m.order, item.ID)
		m.items[item.ID] = &item
	}
}

// clearAll wipes the queue (worker reported "all removed").
func (m *queueMirror) clearAll() {
	m.replaceAll(nil)
}

// pruneCompleted drops every Completed item, preserving the order of the rest.
func (m *queueMirror) pruneCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.order[:0]
	for _, id := range m.order {
		if m.items[id].Status == StatusCompleted {
			delete(m.items, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
}

// appendItem adds a new item to the end of the queue, stamping its local
// start time.
func (m *queueMirror) appendItem(item QueueItem) {
	if item.StartedAt.IsZero() {
		item.StartedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[item.ID]; !exists {
		m.order = append(m.order, item.ID)
	}
	m.items[item.ID] = &item
}

// applyProgress patches one item from an incremental update. progress is nil
// when the update carries only a new file path.
func (m *queueMirror) applyProgress(id string, progress *float64, newFile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return &DesyncError{Event: "updateQueue", ID: id}
	}

	if progress != nil {
		p := *progress
		item.RemainingSize = int64(float64(item.TotalSize) * (1 - p/100))
		if p > 0 {
			elapsed := time.Since(item.StartedAt)
			item.ETA = time.Duration(float64(elapsed) * (100 - p) / p)
			item.ETAKnown = true
		} else {
			// No throughput signal yet; remaining time is unknown.
			item.ETA = 0
			item.ETAKnown = false
		}
	}
	if newFile != "" {
		item.Files = append(item.Files, newFile)
	}
	return nil
}

// setStatus records a download-started or download-finished transition.
func (m *queueMirror) setStatus(id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return &DesyncError{Event: "setStatus", ID: id}
	}
	item.Status = status
	if status == StatusCompleted {
		item.RemainingSize = 0
		item.ETA = 0
		item.ETAKnown = true
	}
	return nil
}

// removeItem drops a single item by id.
func (m *queueMirror) removeItem(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return &DesyncError{Event: "removedFromQueue", ID: id}
	}
	delete(m.items, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// get returns a copy of one item.
func (m *queueMirror) get(id string) (QueueItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return QueueItem{}, false
	}
	return copyItem(item), true
}

// list returns a consistent snapshot of the queue in order, with each item's
// output location computed from its recorded file paths.
func (m *queueMirror) list() []QueueItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]QueueItem, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, copyItem(m.items[id]))
	}
	return out
}

func (m *queueMirror) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

func copyItem(item *QueueItem) QueueItem {
	cp := *item
	cp.Files = append([]string(nil), item.Files...)
	cp.OutputDir = commonDir(item.Files)
	return cp
}

// commonDir computes the deepest directory shared by every path in files.
// Returns "" for an empty file list.
func commonDir(files []string) string {
	if len(files) == 0 {
		return ""
	}

	common := splitPath(filepath.Dir(files[0]))
	for _, f := range files[1:] {
		parts := splitPath(filepath.Dir(f))
		n := len(common)
		if len(parts) < n {
			n = len(parts)
		}
		i := 0
		for i < n && parts[i] == common[i] {
			i++
		}
		common = common[:i]
	}

	if len(common) == 0 {
		return ""
	}
	return filepath.Join(common...)
}

func splitPath(p string) []string {
	p = filepath.Clean(p)
	sep := string(filepath.Separator)
	parts := strings.Split(p, sep)
	if strings.HasPrefix(p, sep) {
		// Keep the leading separator so Join reconstructs an absolute path.
		parts[0] = sep
	}
	return parts
}
