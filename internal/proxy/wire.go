package proxy

import "time"

// Worker event vocabulary. The inbound and outbound catalogues are closed:
// every name the dispatcher handles or the facade emits is listed here, and
// registerHandlers wires each inbound name to exactly one handler.
const (
	// inbound
	evInitSettings     = "init_settings"
	evUpdateSettings   = "updateSettings"
	evInitQueue        = "init_queue"
	evAddedToQueue     = "addedToQueue"
	evUpdateQueue      = "updateQueue"
	evStartDownload    = "startDownload"
	evFinishDownload   = "finishDownload"
	evRemovedFromQueue = "removedFromQueue"
	evRemovedAll       = "removedAllDownloads"
	evRemovedFinished  = "removedFinishedDownloads"
	evLoginNeeded      = "loginNeededToDownload"
	evQueueError       = "queueError"

	// outbound requests; albumSearch and newReleases replies arrive on the
	// same names, matched by ack
	evAddToQueue      = "addToQueue"
	evAlbumSearch     = "albumSearch"
	evNewReleases     = "newReleases"
	evRemoveFromQueue = "removeFromQueue"
)

// wireQueueItem is the worker's representation of a queue entry, used both in
// full snapshots and in addedToQueue notifications (where it may carry the
// submitting caller's ack).
type wireQueueItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Size     int64   `json:"size"`
	Progress float64 `json:"progress"`
	Failed   bool    `json:"failed"`
	Ack      int64   `json:"ack,omitempty"`
}

type wireInitQueue struct {
	Queue []wireQueueItem `json:"queue"`
}

// wireQueueUpdate is an incremental per-item diff. Progress is a pointer so
// an update carrying only a new file path leaves progress untouched.
type wireQueueUpdate struct {
	ID           string   `json:"id"`
	Progress     *float64 `json:"progress,omitempty"`
	DownloadPath string   `json:"downloadPath,omitempty"`
}

type wireItemRef struct {
	ID string `json:"id"`
}

type wireQueueError struct {
	ID      string `json:"id"`
	Message string `json:"error"`
}

// Outbound payloads.

type addToQueuePayload struct {
	URL     string `json:"url"`
	Bitrate int    `json:"bitrate"`
	Ack     int64  `json:"ack"`
}

type albumSearchPayload struct {
	Term  string `json:"term"`
	Start int    `json:"start"`
	Nb    int    `json:"nb"`
	Ack   int64  `json:"ack"`
}

type newReleasesPayload struct {
	Ack int64 `json:"ack"`
}

type removeFromQueuePayload struct {
	ID string `json:"id"`
}

// Album is one entry of a search or recent-releases result.
type Album struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Link            string `json:"link"`
	Cover           string `json:"cover"`
	TrackCount      int    `json:"trackCount"`
	DurationSeconds int    `json:"duration"`
	Explicit        bool   `json:"explicit"`
	ReleaseDate     string `json:"releaseDate"`
}

// SearchResult is the parsed reply to an albumSearch or newReleases request.
type SearchResult struct {
	Total  int     `json:"total"`
	Albums []Album `json:"albums"`
}

type wireSearchResult struct {
	Ack    int64   `json:"ack"`
	Total  int     `json:"total"`
	Albums []Album `json:"albums"`
}

// statusFromWire derives an item's status from the worker's progress/failed
// fields: failed wins, 0 means queued, anything below 100 is downloading.
func statusFromWire(progress float64, failed bool) Status {
	switch {
	case failed:
		return StatusFailed
	case progress <= 0:
		return StatusQueued
	case progress < 100:
		return StatusDownloading
	default:
		return StatusCompleted
	}
}

// itemFromWire maps a worker queue entry onto the mirror's item shape,
// stamping the local start time.
func itemFromWire(w wireQueueItem) QueueItem {
	remaining := w.Size
	if w.Progress > 0 {
		remaining = int64(float64(w.Size) * (1 - w.Progress/100))
	}
	return QueueItem{
		ID:            w.ID,
		Title:         w.Title,
		TotalSize:     w.Size,
		RemainingSize: remaining,
		Status:        statusFromWire(w.Progress, w.Failed),
		StartedAt:     time.Now(),
	}
}
