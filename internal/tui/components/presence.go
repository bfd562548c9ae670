package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/scrobblecord/internal/tui/styles"
)

// PresenceStatus is what the presence panel shows.
type PresenceStatus struct {
	LastFMUser  string
	DiscordUser string
	Connected   bool
	Active      bool
	LastPush    time.Time
	LastError   error
	Refresh     time.Duration
}

// Presence displays the Discord side of the bridge
type Presence struct{}

// NewPresence creates a new Presence component
func NewPresence() *Presence {
	return &Presence{}
}

// Render renders the presence panel
func (p *Presence) Render(s PresenceStatus, now time.Time, width, height int, focused bool) string {
	title := styles.PanelTitle("Presence", focused)

	discord := s.DiscordUser
	if discord == "" {
		discord = "unknown user"
	}

	state := styles.Muted.Render("cleared")
	if s.Active {
		state = styles.Playing.Render("listening")
	}

	pushed := "never"
	if !s.LastPush.IsZero() {
		pushed = humanize.RelTime(s.LastPush, now, "ago", "from now")
	}

	lines := []string{
		styles.StatusIcon(s.Connected) + " " + styles.Discord.Render(discord),
		styles.Label.Render("Last.fm  ") + s.LastFMUser,
		styles.Label.Render("Status   ") + state,
		styles.Label.Render("Updated  ") + pushed,
	}
	if s.Refresh > 0 {
		lines = append(lines, styles.Label.Render("Refresh  ")+"every "+s.Refresh.String())
	}
	if s.LastError != nil {
		lines = append(lines, "", styles.Failure.Render(Truncate(s.LastError.Error(), width-4)))
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		append([]string{title, ""}, lines...)...,
	))
}
