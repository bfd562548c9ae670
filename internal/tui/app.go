// Package tui is the live terminal dashboard for the bridge.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/scrobblecord/internal/bridge"
	"github.com/tessro/scrobblecord/internal/core"
	"github.com/tessro/scrobblecord/internal/tui/components"
	"github.com/tessro/scrobblecord/internal/tui/styles"
)

const maxHistory = 50

// Session is a started bridge ready to run.
type Session struct {
	Driver      *bridge.Driver
	LastFMUser  string
	DiscordUser string
}

// Starter performs the startup checks and returns a session whose driver
// sends its events to events. An error is fatal and ends the dashboard.
type Starter func(ctx context.Context, events chan<- bridge.Event) (*Session, error)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelPresence
	PanelHistory
	PanelEvents
	panelCount
)

// Model is the main TUI model
type Model struct {
	ctx       context.Context
	cancel    context.CancelFunc
	start     Starter
	events    chan bridge.Event
	formatter *bridge.Formatter
	copyFn    func(string) error

	width        int
	height       int
	focusedPanel Panel
	spinner      spinner.Model
	now          time.Time

	// State
	session   *Session
	startErr  error
	runErr    error
	track     *core.Track
	startedAt time.Time
	active    bool
	lastPush  time.Time
	lastError error
	history   []components.HistoryEntry
	flash     string

	// Components
	nowPlaying   *components.NowPlaying
	presenceView *components.Presence
	historyView  *components.History
	eventLog     *components.EventLog

	showHelp bool
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithFormatter sets the formatter for the events panel.
func WithFormatter(f *bridge.Formatter) Option {
	return func(m *Model) {
		if f != nil {
			m.formatter = f
		}
	}
}

// WithClipboard overrides how track links are copied.
func WithClipboard(copyFn func(string) error) Option {
	return func(m *Model) {
		if copyFn != nil {
			m.copyFn = copyFn
		}
	}
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, start Starter, opts ...Option) Model {
	ctx, cancel := context.WithCancel(ctx)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	m := Model{
		ctx:          ctx,
		cancel:       cancel,
		start:        start,
		events:       make(chan bridge.Event, 64),
		formatter:    bridge.NewFormatter(bridge.WithTimestamp(true)),
		copyFn:       clipboard.WriteAll,
		spinner:      s,
		now:          time.Now(),
		nowPlaying:   components.NewNowPlaying(),
		presenceView: components.NewPresence(),
		historyView:  components.NewHistory(),
		eventLog:     components.NewEventLog(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Err returns the startup or run error that ended the dashboard, if any.
func (m Model) Err() error {
	if m.startErr != nil {
		return m.startErr
	}
	return m.runErr
}

// Messages
type tickMsg time.Time
type startedMsg struct{ session *Session }
type startErrMsg struct{ err error }
type eventMsg bridge.Event
type driverDoneMsg struct{ err error }
type copiedMsg struct{ err error }

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) startup() tea.Cmd {
	return func() tea.Msg {
		session, err := m.start(m.ctx, m.events)
		if err != nil {
			return startErrMsg{err}
		}
		return startedMsg{session}
	}
}

func (m Model) runDriver() tea.Cmd {
	driver := m.session.Driver
	return func() tea.Msg {
		return driverDoneMsg{driver.Run(m.ctx)}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-m.events:
			return eventMsg(e)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) copyLink() tea.Cmd {
	if m.track == nil || m.track.URL == "" {
		return nil
	}
	url := m.track.URL
	return func() tea.Msg {
		return copiedMsg{m.copyFn(url)}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.tick(),
		m.startup(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, m.tick()

	case spinner.TickMsg:
		if m.session != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case startedMsg:
		m.session = msg.session
		return m, tea.Batch(m.runDriver(), m.waitForEvent())

	case startErrMsg:
		m.startErr = msg.err
		m.quitting = true
		m.cancel()
		return m, tea.Quit

	case driverDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.runErr = msg.err
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case eventMsg:
		m.applyEvent(bridge.Event(msg))
		return m, m.waitForEvent()

	case copiedMsg:
		if msg.err != nil {
			m.flash = "Copy failed: " + msg.err.Error()
		} else {
			m.flash = "Copied track link"
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) applyEvent(e bridge.Event) {
	if !e.Timestamp.IsZero() {
		m.now = e.Timestamp
	}

	switch e.Type {
	case bridge.EventTrackChange:
		m.track = e.Track
		m.startedAt = e.StartedAt
		m.addToHistory(e.Track, e.Timestamp)
	case bridge.EventTrackStopped:
		m.track = nil
		m.startedAt = time.Time{}
	case bridge.EventPresenceSet:
		m.active = true
		m.lastPush = e.Timestamp
		m.lastError = nil
	case bridge.EventPresenceCleared:
		m.active = false
		m.lastPush = e.Timestamp
		m.lastError = nil
	case bridge.EventFetchError, bridge.EventPushError:
		m.lastError = e.Err
	case bridge.EventIdle:
		return
	}

	m.eventLog.Append(m.formatter.Format(e))
}

func (m *Model) addToHistory(track *core.Track, at time.Time) {
	if track == nil {
		return
	}
	entry := components.HistoryEntry{
		Track:    track,
		PlayedAt: at,
	}

	// Add to front, keep max entries
	m.history = append([]components.HistoryEntry{entry}, m.history...)
	if len(m.history) > maxHistory {
		m.history = m.history[:maxHistory]
	}
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "?":
		m.showHelp = true
	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
	case "c", "y":
		return m, m.copyLink()
	}
	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.session == nil {
		return m.renderConnecting()
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Main layout: two columns
	// Left: Now Playing (top), Events (bottom)
	// Right: Presence (top), History (bottom)

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 40 / 100
	bottomHeight := m.height - topHeight - 2

	nowPlaying := m.nowPlaying.Render(m.track, m.startedAt, m.now, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	eventsView := m.eventLog.Render(leftWidth-2, bottomHeight-2, m.focusedPanel == PanelEvents)
	presenceView := m.presenceView.Render(m.presenceStatus(), m.now, rightWidth-2, topHeight-2, m.focusedPanel == PanelPresence)
	historyView := m.historyView.Render(m.history, m.now, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, eventsView)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, presenceView, historyView)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) presenceStatus() components.PresenceStatus {
	s := components.PresenceStatus{
		Connected: m.lastError == nil,
		Active:    m.active,
		LastPush:  m.lastPush,
		LastError: m.lastError,
	}
	if m.session != nil {
		s.LastFMUser = m.session.LastFMUser
		s.DiscordUser = m.session.DiscordUser
		if m.session.Driver != nil {
			s.Refresh = m.session.Driver.Refresh()
		}
	}
	return s
}

func (m Model) renderConnecting() string {
	line := m.spinner.View() + " Connecting to Last.fm and Discord..."
	if m.width == 0 {
		return line
	}
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(line)
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  c:copy link  tab:switch panel")
	if m.flash != "" {
		status = styles.Muted.Render(m.flash)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "scrobblecord - Keyboard Shortcuts"
	divider := styles.Repeat("═", len(title))

	help := strings.Join([]string{
		"",
		"  " + title,
		"  " + divider,
		"",
		"  q, Ctrl+C    Quit",
		"  ?            Toggle help",
		"  Tab          Next panel",
		"  Shift+Tab    Previous panel",
		"  c, y         Copy track link",
		"",
		"  Press ? or Esc to close",
		"",
	}, "\n")

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

// Run starts the dashboard. It returns the startup error if the bridge could
// not be started.
func Run(ctx context.Context, start Starter, opts ...Option) error {
	model := NewModel(ctx, start, opts...)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if fm, ok := final.(Model); ok {
		fm.cancel()
		return fm.Err()
	}
	return nil
}
