package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/riptide-dl/riptide/internal/clipboard"
	"github.com/riptide-dl/riptide/internal/proxy"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	// Pushed by the notification pump in cmd/connect.
	case proxy.QueueUpdatedMsg:
		return m, refreshQueue(m.service)

	case proxy.ItemCompletedMsg:
		m.status = fmt.Sprintf("completed: %s", msg.Item.Title)
		return m, refreshQueue(m.service)

	case proxy.AuthRequiredMsg:
		m.err = proxy.ErrAuthRequired
		return m, tea.Quit

	case queueLoadedMsg:
		m.items = msg.items
		if m.cursor >= len(m.items) {
			m.cursor = len(m.items) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case queueErrMsg:
		m.busy = false
		m.err = msg.err
		return m, nil

	case searchDoneMsg:
		m.busy = false
		m.results = msg.result.Albums
		m.resultsCursor = 0
		m.state = SearchResultsState
		m.status = fmt.Sprintf("%d of %d results", len(msg.result.Albums), msg.result.Total)
		return m, nil

	case addDoneMsg:
		m.busy = false
		m.status = fmt.Sprintf("queued %s", msg.id)
		return m, refreshQueue(m.service)

	case statusMsg:
		m.busy = false
		m.status = msg.text
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == SearchInputState {
		return m.handleSearchInputKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.state == SearchResultsState {
			m.state = QueueState
			m.status = ""
		}
		return m, nil

	case "up", "k":
		if m.state == SearchResultsState {
			if m.resultsCursor > 0 {
				m.resultsCursor--
			}
		} else if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.state == SearchResultsState {
			if m.resultsCursor < len(m.results)-1 {
				m.resultsCursor++
			}
		} else if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		if m.state == SearchResultsState && m.resultsCursor < len(m.results) {
			album := m.results[m.resultsCursor]
			m.busy = true
			m.status = fmt.Sprintf("adding %s", album.Title)
			m.state = QueueState
			return m, doAdd(m.service, album.Link, m.bitrate)
		}
		return m, nil

	case "d":
		if m.state == QueueState && m.cursor < len(m.items) {
			item := m.items[m.cursor]
			m.busy = true
			return m, doRemove(m.service, item.ID)
		}
		return m, nil

	case "a":
		if m.state == QueueState {
			url := clipboard.ReadURL()
			if url == "" {
				m.status = "clipboard has no usable link"
				return m, nil
			}
			m.busy = true
			m.status = "adding from clipboard"
			return m, doAdd(m.service, url, m.bitrate)
		}
		return m, nil

	case "/":
		m.state = SearchInputState
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.err = nil
		return m, nil

	case "r":
		return m, refreshQueue(m.service)
	}

	return m, nil
}

func (m Model) handleSearchInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = QueueState
		m.searchInput.Blur()
		return m, nil

	case "enter":
		term := m.searchInput.Value()
		m.searchInput.Blur()
		if term == "" {
			m.state = QueueState
			return m, nil
		}
		m.busy = true
		m.status = "searching"
		m.state = QueueState
		return m, doSearch(m.service, term)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}
