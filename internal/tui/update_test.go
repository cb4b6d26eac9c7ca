package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riptide-dl/riptide/internal/proxy"
)

type fakeService struct {
	items   []proxy.QueueItem
	removed []string
	added   []string
	terms   []string
}

func (f *fakeService) Queue() ([]proxy.QueueItem, error) { return f.items, nil }

func (f *fakeService) Remove(id string) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeService) Download(url string, bitrate int) (string, error) {
	f.added = append(f.added, url)
	return "remote-1", nil
}

func (f *fakeService) Search(term string) (proxy.SearchResult, error) {
	f.terms = append(f.terms, term)
	return proxy.SearchResult{}, nil
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestQueueLoadedClampsCursor(t *testing.T) {
	m := InitialModel(&fakeService{}, "127.0.0.1:6595", "test", 3)
	m.cursor = 5

	next, _ := m.Update(queueLoadedMsg{items: []proxy.QueueItem{
		{ID: "a", Title: "One"},
		{ID: "b", Title: "Two"},
	}})
	m = next.(Model)

	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	next, _ = m.Update(queueLoadedMsg{items: nil})
	m = next.(Model)
	if m.cursor != 0 {
		t.Errorf("cursor after empty load = %d, want 0", m.cursor)
	}
}

func TestDeleteKeyRemovesSelectedItem(t *testing.T) {
	svc := &fakeService{}
	m := InitialModel(svc, "127.0.0.1:6595", "test", 3)

	next, _ := m.Update(queueLoadedMsg{items: []proxy.QueueItem{
		{ID: "a", Title: "One"},
		{ID: "b", Title: "Two"},
	}})
	m = next.(Model)

	next, _ = m.Update(key('j'))
	m = next.(Model)
	next, cmd := m.Update(key('d'))
	m = next.(Model)

	if cmd == nil {
		t.Fatal("expected a removal command")
	}
	cmd()
	if len(svc.removed) != 1 || svc.removed[0] != "b" {
		t.Errorf("removed = %v, want [b]", svc.removed)
	}
}

func TestSearchFlow(t *testing.T) {
	svc := &fakeService{}
	m := InitialModel(svc, "127.0.0.1:6595", "test", 3)

	next, _ := m.Update(key('/'))
	m = next.(Model)
	if m.state != SearchInputState {
		t.Fatalf("state = %v, want SearchInputState", m.state)
	}

	for _, r := range "daft punk" {
		next, _ = m.Update(key(r))
		m = next.(Model)
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if cmd == nil {
		t.Fatal("expected a search command")
	}
	cmd()
	if len(svc.terms) != 1 || svc.terms[0] != "daft punk" {
		t.Errorf("terms = %v, want [daft punk]", svc.terms)
	}

	next, _ = m.Update(searchDoneMsg{result: proxy.SearchResult{
		Total:  1,
		Albums: []proxy.Album{{ID: 1, Title: "Discovery", Artist: "Daft Punk"}},
	}})
	m = next.(Model)
	if m.state != SearchResultsState {
		t.Errorf("state = %v, want SearchResultsState", m.state)
	}

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected an add command")
	}
	cmd()
	if len(svc.added) != 1 {
		t.Errorf("added = %v, want one entry", svc.added)
	}
	if m.state != QueueState {
		t.Errorf("state = %v, want QueueState after add", m.state)
	}
}

func TestViewShowsQueueRows(t *testing.T) {
	m := InitialModel(&fakeService{}, "127.0.0.1:6595", "test", 3)

	next, _ := m.Update(queueLoadedMsg{items: []proxy.QueueItem{
		{
			ID:            "a",
			Title:         "Homework",
			TotalSize:     2000,
			RemainingSize: 1000,
			Status:        proxy.StatusDownloading,
			ETA:           30 * time.Second,
			ETAKnown:      true,
		},
	}})
	m = next.(Model)

	out := m.View()
	if !strings.Contains(out, "Homework") {
		t.Error("view missing item title")
	}
	if !strings.Contains(out, "50%") {
		t.Error("view missing progress percentage")
	}
	if !strings.Contains(out, "30s") {
		t.Error("view missing ETA")
	}
}

func TestAuthRequiredQuits(t *testing.T) {
	m := InitialModel(&fakeService{}, "127.0.0.1:6595", "test", 3)

	next, cmd := m.Update(proxy.AuthRequiredMsg{})
	m = next.(Model)

	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.Err() == nil {
		t.Error("expected recorded error")
	}
}
