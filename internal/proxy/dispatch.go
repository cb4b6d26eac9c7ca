package proxy

import (
	"encoding/json"

	"github.com/riptide-dl/riptide/internal/transport"
	"github.com/riptide-dl/riptide/internal/utils"
)

// registerHandlers wires every inbound event name to its handler. All
// handlers run on the transport's delivery goroutine: they decode, mutate
// shared state inside short critical sections and return. They never block
// and never panic out of the delivery context; malformed payloads are logged
// and dropped, worker-side conditions become recorded fatal state inspected
// by the next synchronous operation.
func (c *Client) registerHandlers() {
	handlers := map[string]transport.Handler{
		evInitSettings:     c.onInitSettings,
		evUpdateSettings:   c.onUpdateSettings,
		evInitQueue:        c.onInitQueue,
		evAddedToQueue:     c.onAddedToQueue,
		evUpdateQueue:      c.onUpdateQueue,
		evStartDownload:    c.onStartDownload,
		evFinishDownload:   c.onFinishDownload,
		evRemovedFromQueue: c.onRemovedFromQueue,
		evRemovedAll:       c.onRemovedAll,
		evRemovedFinished:  c.onRemovedFinished,
		evLoginNeeded:      c.onLoginNeeded,
		evQueueError:       c.onQueueError,
		evAlbumSearch:      c.onSearchResult,
		evNewReleases:      c.onSearchResult,
	}
	for name, h := range handlers {
		c.tr.On(name, h)
	}
}

func (c *Client) onInitSettings(data json.RawMessage) {
	c.mu.Lock()
	c.cfg = append(json.RawMessage(nil), data...)
	if !c.cfgSignaled && c.cfgReady != nil {
		close(c.cfgReady)
		c.cfgSignaled = true
	}
	c.mu.Unlock()
}

func (c *Client) onUpdateSettings(data json.RawMessage) {
	c.mu.Lock()
	c.cfg = append(json.RawMessage(nil), data...)
	c.mu.Unlock()
}

func (c *Client) onInitQueue(data json.RawMessage) {
	var msg wireInitQueue
	if err := json.Unmarshal(data, &msg); err != nil {
		utils.Debug("dispatch: bad init_queue payload: %v", err)
		return
	}

	items := make([]QueueItem, 0, len(msg.Queue))
	for _, w := range msg.Queue {
		items = append(items, itemFromWire(w))
	}
	c.mirror.replaceAll(items)
	c.notify(QueueUpdatedMsg{})
}

func (c *Client) onAddedToQueue(data json.RawMessage) {
	var msg wireQueueItem
	if err := json.Unmarshal(data, &msg); err != nil {
		utils.Debug("dispatch: bad addedToQueue payload: %v", err)
		return
	}

	// Complete the submitting caller's pending slot first so its Download
	// call returns as soon as possible; the append below is visible to
	// everyone via the mirror.
	if msg.Ack != 0 {
		c.pending.complete(msg.Ack, msg.ID)
	}
	c.mirror.appendItem(itemFromWire(msg))
	c.notify(QueueUpdatedMsg{})
}

func (c *Client) onUpdateQueue(data json.RawMessage) {
	var msg wireQueueUpdate
	if err := json.Unmarshal(data, &msg); err != nil {
		utils.Debug("dispatch: bad updateQueue payload: %v", err)
		return
	}

	if err := c.mirror.applyProgress(msg.ID, msg.Progress, msg.DownloadPath); err != nil {
		utils.Debug("dispatch: %v", err)
		c.recordFatal(err)
		return
	}
	c.notify(QueueUpdatedMsg{})
}

func (c *Client) onStartDownload(data json.RawMessage) {
	c.applyStatus(data, evStartDownload, StatusDownloading)
}

func (c *Client) onFinishDownload(data json.RawMessage) {
	c.applyStatus(data, evFinishDownload, StatusCompleted)
}

func (c *Client) applyStatus(data json.RawMessage, event string, status Status) {
	var msg wireItemRef
	if err := json.Unmarshal(data, &msg); err != nil {
		utils.Debug("dispatch: bad %s payload: %v", event, err)
		return
	}

	if err := c.mirror.setStatus(msg.ID, status); err != nil {
		utils.Debug("dispatch: %v", err)
		c.recordFatal(err)
		return
	}

	if status == StatusCompleted {
		if item, ok := c.mirror.get(msg.ID); ok {
			c.notify(ItemCompletedMsg{Item: item})
		}
	}
	c.notify(QueueUpdatedMsg{})
}

func (c *Client) onRemovedFromQueue(data json.RawMessage) {
	var msg wireItemRef
	if err := json.Unmarshal(data, &msg); err != nil {
		utils.Debug("dispatch: bad removedFromQueue payload: %v", err)
		return
	}

	if err := c.mirror.removeItem(msg.ID); err != nil {
		utils.Debug("dispatch: %v", err)
		c.recordFatal(err)
		return
	}
	c.notify(QueueUpdatedMsg{})
}

func (c *Client) onRemovedAll(json.RawMessage) {
	c.mirror.clearAll()
	c.notify(QueueUpdatedMsg{})
}

func (c *Client) onRemovedFinished(json.RawMessage) {
	c.mirror.pruneCompleted()
	c.notify(QueueUpdatedMsg{})
}

func (c *Client) onLoginNeeded(json.RawMessage) {
	utils.Debug("dispatch: worker requires authentication")
	c.recordFatal(ErrAuthRequired)
	c.notify(AuthRequiredMsg{})
}

// onQueueError logs worker-side queue errors and otherwise ignores them: no
// caller is blocked on the failed item, so there is nothing to fail.
func (c *Client) onQueueError(data json.RawMessage) {
	var msg wireQueueError
	if err := json.Unmarshal(data, &msg); err != nil {
		utils.Debug("dispatch: bad queueError payload: %v", err)
		return
	}
	utils.Debug("worker queue error for %s: %s", msg.ID, msg.Message)
}

func (c *Client) onSearchResult(data json.RawMessage) {
	var msg wireSearchResult
	if err := json.Unmarshal(data, &msg); err != nil {
		utils.Debug("dispatch: bad search result payload: %v", err)
		return
	}
	if msg.Ack == 0 {
		return
	}
	c.pending.complete(msg.Ack, SearchResult{Total: msg.Total, Albums: msg.Albums})
}
