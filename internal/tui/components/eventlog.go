package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/scrobblecord/internal/tui/styles"
)

// MaxLogLines bounds the number of retained log lines.
const MaxLogLines = 100

// EventLog displays formatted bridge events, newest at the bottom
type EventLog struct {
	lines []string
}

// NewEventLog creates a new EventLog component
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Append adds a line, dropping the oldest past MaxLogLines.
func (l *EventLog) Append(line string) {
	l.lines = append(l.lines, line)
	if len(l.lines) > MaxLogLines {
		l.lines = l.lines[len(l.lines)-MaxLogLines:]
	}
}

// Len returns the number of retained lines.
func (l *EventLog) Len() int {
	return len(l.lines)
}

// Render renders the log panel
func (l *EventLog) Render(width, height int, focused bool) string {
	title := styles.PanelTitle("Events", focused)

	visible := height - 4
	if visible < 1 {
		visible = 1
	}
	start := len(l.lines) - visible
	if start < 0 {
		start = 0
	}

	content := styles.Muted.Render("Waiting for events...")
	if len(l.lines) > 0 {
		shown := make([]string, 0, visible)
		for _, line := range l.lines[start:] {
			shown = append(shown, Truncate(line, width-4))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, shown...)
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
