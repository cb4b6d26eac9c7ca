package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/riptide-dl/riptide/internal/proxy"
)

type UIState int

const (
	QueueState UIState = iota
	SearchInputState
	SearchResultsState
)

// QueueService is the slice of the proxy client the TUI needs; narrowed for
// testability.
type QueueService interface {
	Queue() ([]proxy.QueueItem, error)
	Remove(id string) error
	Download(url string, bitrate int) (string, error)
	Search(term string) (proxy.SearchResult, error)
}

type Model struct {
	service QueueService
	addr    string
	version string
	bitrate int

	state  UIState
	items  []proxy.QueueItem
	cursor int

	searchInput   textinput.Model
	results       []proxy.Album
	resultsCursor int

	spin   spinner.Model
	busy   bool
	status string
	err    error

	width  int
	height int
}

// InitialModel builds the root model for a connected session.
func InitialModel(service QueueService, addr, version string, bitrate int) Model {
	input := textinput.New()
	input.Placeholder = `artist:"name" album:"title"`
	input.Width = InputWidth
	input.Prompt = "search> "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return Model{
		service: service,
		addr:    addr,
		version: version,
		bitrate: bitrate,

		state:       QueueState,
		searchInput: input,
		spin:        sp,
	}
}

// Err reports the fatal condition that ended the session, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(refreshQueue(m.service), m.spin.Tick)
}

// Messages produced by background commands.

type queueLoadedMsg struct {
	items []proxy.QueueItem
}

type queueErrMsg struct {
	err error
}

type searchDoneMsg struct {
	result proxy.SearchResult
}

type addDoneMsg struct {
	id string
}

type statusMsg struct {
	text string
}

// refreshQueue reads the mirrored queue off the bubbletea goroutine.
func refreshQueue(s QueueService) tea.Cmd {
	return func() tea.Msg {
		items, err := s.Queue()
		if err != nil {
			return queueErrMsg{err: err}
		}
		return queueLoadedMsg{items: items}
	}
}

func doSearch(s QueueService, term string) tea.Cmd {
	return func() tea.Msg {
		res, err := s.Search(term)
		if err != nil {
			return queueErrMsg{err: err}
		}
		return searchDoneMsg{result: res}
	}
}

func doAdd(s QueueService, url string, bitrate int) tea.Cmd {
	return func() tea.Msg {
		id, err := s.Download(url, bitrate)
		if err != nil {
			return queueErrMsg{err: err}
		}
		return addDoneMsg{id: id}
	}
}

func doRemove(s QueueService, id string) tea.Cmd {
	return func() tea.Msg {
		if err := s.Remove(id); err != nil {
			return queueErrMsg{err: err}
		}
		return statusMsg{text: "removal requested"}
	}
}
