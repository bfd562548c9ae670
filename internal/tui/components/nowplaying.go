package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/scrobblecord/internal/core"
	"github.com/tessro/scrobblecord/internal/tui/styles"
)

// NowPlaying displays the track currently mirrored to Discord
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel. startedAt drives the elapsed clock.
func (n *NowPlaying) Render(track *core.Track, startedAt, now time.Time, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if track == nil {
		content = styles.Muted.Render("Nothing playing")
	} else {
		content = n.renderTrack(track, startedAt, now, width-4)
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

func (n *NowPlaying) renderTrack(track *core.Track, startedAt, now time.Time, width int) string {
	titleStyle := styles.Title.Width(max(width-2, 1))
	lines := []string{
		styles.Playing.Render("▶") + " " + titleStyle.Render(track.Title),
		"  " + styles.Subtitle.Render(track.Artist),
	}
	if track.Album != "" {
		lines = append(lines, "  "+styles.Dim.Render(track.Album))
	}

	lines = append(lines, "")
	if !startedAt.IsZero() {
		lines = append(lines, "  "+styles.Muted.Render(fmt.Sprintf("%s elapsed", FormatElapsed(now.Sub(startedAt)))))
	}
	if track.URL != "" {
		lines = append(lines, "  "+styles.Dim.Render(Truncate(track.URL, width-2)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// FormatElapsed formats a duration as m:ss or h:mm:ss.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Truncate shortens s to n runes, ending in an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
