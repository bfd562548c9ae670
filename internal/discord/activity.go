package discord

import (
	"unicode/utf8"

	"github.com/tessro/scrobblecord/internal/core"
)

// Field limits enforced by Discord. Longer values make SET_ACTIVITY fail.
const (
	maxTextLen        = 128
	minTextLen        = 2
	maxButtonLabelLen = 32
	maxButtonURLLen   = 512
	maxButtons        = 2
)

// Activity is the wire form of a rich presence activity.
type Activity struct {
	Type       int         `json:"type"`
	Details    string      `json:"details,omitempty"`
	State      string      `json:"state,omitempty"`
	Timestamps *Timestamps `json:"timestamps,omitempty"`
	Assets     *Assets     `json:"assets,omitempty"`
	Buttons    []Button    `json:"buttons,omitempty"`
}

// Timestamps are epoch milliseconds. Start makes Discord show elapsed time.
type Timestamps struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

// Assets are the images and their hover texts. Images are either uploaded
// application asset keys or external URLs.
type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

// Button is a clickable link under the activity.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// toWireActivity converts a core.Activity, omitting empty sections and
// clamping text to Discord's limits.
func toWireActivity(a core.Activity) *Activity {
	wa := &Activity{
		Type:    int(a.Type),
		Details: clampText(a.Details),
		State:   clampText(a.State),
	}
	if !a.Start.IsZero() {
		wa.Timestamps = &Timestamps{Start: a.Start.UnixMilli()}
	}
	if a.LargeImage != "" || a.LargeText != "" || a.SmallImage != "" || a.SmallText != "" {
		wa.Assets = &Assets{
			LargeImage: a.LargeImage,
			LargeText:  clampText(a.LargeText),
			SmallImage: a.SmallImage,
			SmallText:  clampText(a.SmallText),
		}
	}
	for _, b := range a.Buttons {
		if len(wa.Buttons) == maxButtons {
			break
		}
		if b.URL == "" || len(b.URL) > maxButtonURLLen {
			continue
		}
		wa.Buttons = append(wa.Buttons, Button{
			Label: truncateRunes(b.Label, maxButtonLabelLen),
			URL:   b.URL,
		})
	}
	return wa
}

// clampText fits s into Discord's 2..128 character window. Empty strings
// stay empty so the field is omitted.
func clampText(s string) string {
	if s == "" {
		return s
	}
	s = truncateRunes(s, maxTextLen)
	for utf8.RuneCountInString(s) < minTextLen {
		s += "\u200b"
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
