package bridge

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

// Formatter formats events for console output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template. An invalid template is
// ignored; use ParseTemplate to validate one first.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := ParseTemplate(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// ParseTemplate parses a console line template.
func ParseTemplate(tmpl string) (*template.Template, error) {
	return template.New("format").Parse(tmpl)
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}
	parts = append(parts, eventDescription(e))

	return strings.Join(parts, " ")
}

func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if t := e.Track; t != nil {
		data.Title = t.Title
		data.Artist = t.Artist
		data.Album = t.Album
		data.URL = t.URL
	}
	if !e.StartedAt.IsZero() {
		data.Started = humanize.RelTime(e.StartedAt, e.Timestamp, "ago", "from now")
	}
	if e.Err != nil {
		data.Error = e.Err.Error()
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Title     string
	Artist    string
	Album     string
	URL       string
	Started   string
	Error     string
}

func eventDescription(e Event) string {
	switch e.Type {
	case EventTrackChange:
		if e.Track != nil {
			return fmt.Sprintf("Now playing: %s", e.Track)
		}
		return "Track changed"

	case EventTrackStopped:
		if e.Previous != nil {
			return fmt.Sprintf("Stopped: %s", e.Previous)
		}
		return "Nothing playing"

	case EventPresenceSet:
		if e.Track != nil {
			return fmt.Sprintf("Presence set: %s (started %s)",
				e.Track, humanize.RelTime(e.StartedAt, e.Timestamp, "ago", "from now"))
		}
		return "Presence set"

	case EventPresenceCleared:
		return "Presence cleared"

	case EventFetchError:
		return fmt.Sprintf("Last.fm fetch failed: %v", e.Err)

	case EventPushError:
		return fmt.Sprintf("Discord update failed: %v", e.Err)

	case EventIdle:
		return "No change"

	default:
		return "Unknown event"
	}
}

func eventEmoji(t EventType) string {
	switch t {
	case EventTrackChange:
		return "🎵"
	case EventTrackStopped:
		return "⏹️"
	case EventPresenceSet:
		return "✅"
	case EventPresenceCleared:
		return "🧹"
	case EventFetchError:
		return "⚠️"
	case EventPushError:
		return "❌"
	case EventIdle:
		return "💤"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventTrackStopped:
		return "track_stopped"
	case EventPresenceSet:
		return "presence_set"
	case EventPresenceCleared:
		return "presence_cleared"
	case EventFetchError:
		return "fetch_error"
	case EventPushError:
		return "push_error"
	case EventIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// String returns the event type name.
func (t EventType) String() string {
	return eventTypeName(t)
}
