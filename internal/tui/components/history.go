package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/scrobblecord/internal/core"
	"github.com/tessro/scrobblecord/internal/tui/styles"
)

// HistoryEntry represents a track seen during this session
type HistoryEntry struct {
	Track    *core.Track
	PlayedAt time.Time
}

// History displays recently mirrored tracks
type History struct{}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Render renders the history panel
func (h *History) Render(entries []HistoryEntry, now time.Time, width, height int, focused bool) string {
	title := styles.PanelTitle("History", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No tracks yet")
	} else {
		content = h.renderHistory(entries, now, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (h *History) renderHistory(entries []HistoryEntry, now time.Time, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	for i, entry := range entries {
		if maxLines > 0 && i >= maxLines {
			break
		}
		track := entry.Track
		if track == nil {
			continue
		}

		timeAgo := humanize.RelTime(entry.PlayedAt, now, "ago", "from now")
		available := width - lipgloss.Width(timeAgo) - 3
		trackInfo := Truncate(fmt.Sprintf("%s — %s", track.Title, track.Artist), available)

		padding := width - 2 - lipgloss.Width(trackInfo) - lipgloss.Width(timeAgo)
		if padding < 1 {
			padding = 1
		}

		lines = append(lines, fmt.Sprintf("%s %s%s%s",
			styles.Dim.Render("♪"),
			trackInfo,
			styles.Repeat(" ", padding),
			styles.Dim.Render(timeAgo)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
