package tui

import (
	"fmt"
	"strings"

	"github.com/riptide-dl/riptide/internal/proxy"
	"github.com/riptide-dl/riptide/internal/utils"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("RIPTIDE"))
	b.WriteString(" ")
	b.WriteString(AddrStyle.Render(m.version))
	b.WriteString("  ")
	b.WriteString(AddrStyle.Render(m.addr))
	b.WriteString("\n\n")

	switch m.state {
	case SearchInputState:
		b.WriteString(m.searchInput.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("enter search · esc cancel"))
		b.WriteString("\n")
	case SearchResultsState:
		b.WriteString(m.viewResults())
	default:
		b.WriteString(m.viewQueue())
	}

	b.WriteString("\n")
	b.WriteString(m.viewStatusBar())
	return b.String()
}

func (m Model) viewQueue() string {
	var b strings.Builder

	if len(m.items) == 0 {
		b.WriteString(HelpStyle.Render("queue is empty · press a to add from clipboard, / to search"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("  %-40s %-12s %8s %10s %8s", "TITLE", "STATUS", "DONE", "SIZE", "ETA")))
	b.WriteString("\n")

	for i, item := range m.items {
		row := fmt.Sprintf("  %-40s %-12s %7.0f%% %10s %8s",
			truncate(item.Title, 40),
			item.Status.String(),
			percentDone(item),
			utils.FormatSize(item.TotalSize),
			etaText(item),
		)
		if i == m.cursor {
			row = SelectedRowStyle.Render("▸" + row[1:])
		} else {
			row = statusStyle(item.Status)(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewResults() string {
	var b strings.Builder

	if len(m.results) == 0 {
		b.WriteString(HelpStyle.Render("no results · esc to go back"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("  %-36s %-24s %6s %10s", "ALBUM", "ARTIST", "TRACKS", "RELEASED")))
	b.WriteString("\n")

	for i, album := range m.results {
		row := fmt.Sprintf("  %-36s %-24s %6d %10s",
			truncate(album.Title, 36),
			truncate(album.Artist, 24),
			album.TrackCount,
			album.ReleaseDate,
		)
		if i == m.resultsCursor {
			row = SelectedRowStyle.Render("▸" + row[1:])
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("enter add · esc back"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewStatusBar() string {
	if m.err != nil {
		return ErrorStyle.Render("error: " + m.err.Error())
	}

	var parts []string
	if m.busy {
		parts = append(parts, m.spin.View())
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, HelpStyle.Render("a add · d remove · / search · q quit"))
	return StatusBarStyle.Render(strings.Join(parts, "  "))
}

func statusStyle(s proxy.Status) func(...string) string {
	switch s {
	case proxy.StatusDownloading:
		return DownloadingStyle.Render
	case proxy.StatusCompleted:
		return CompletedStyle.Render
	case proxy.StatusFailed:
		return FailedStyle.Render
	default:
		return QueuedStyle.Render
	}
}

func percentDone(item proxy.QueueItem) float64 {
	if item.TotalSize <= 0 {
		return 0
	}
	return float64(item.TotalSize-item.RemainingSize) / float64(item.TotalSize) * 100
}

func etaText(item proxy.QueueItem) string {
	if item.Status != proxy.StatusDownloading || !item.ETAKnown {
		return "--"
	}
	return utils.FormatETA(int64(item.ETA.Seconds()))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
