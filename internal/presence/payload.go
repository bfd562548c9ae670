package presence

import (
	"time"

	"github.com/tessro/scrobblecord/internal/core"
)

// Defaults for the presence payload.
const (
	DefaultFallbackImage = "blank_art"
	DefaultSmallImage    = "lastfm"
	DefaultSmallText     = "Last.fm"
	DefaultButtonLabel   = "Listen on Last.fm"
)

// PayloadOptions controls the assets and labels of the built activity.
type PayloadOptions struct {
	// FallbackImage is the application asset shown when a track has no
	// artwork.
	FallbackImage string
	SmallImage    string
	SmallText     string
	ButtonLabel   string
}

// DefaultPayloadOptions returns the stock assets and labels.
func DefaultPayloadOptions() PayloadOptions {
	return PayloadOptions{
		FallbackImage: DefaultFallbackImage,
		SmallImage:    DefaultSmallImage,
		SmallText:     DefaultSmallText,
		ButtonLabel:   DefaultButtonLabel,
	}
}

func (o PayloadOptions) withDefaults() PayloadOptions {
	d := DefaultPayloadOptions()
	if o.FallbackImage == "" {
		o.FallbackImage = d.FallbackImage
	}
	if o.ButtonLabel == "" {
		o.ButtonLabel = d.ButtonLabel
	}
	// An empty small image is allowed; it hides the badge.
	return o
}

func (o PayloadOptions) build(t *core.Track, startedAt time.Time) core.Activity {
	a := core.Activity{
		Type:       core.ActivityListening,
		Details:    t.Title,
		State:      "by " + t.Artist,
		LargeImage: t.Images.Best(),
		LargeText:  largeText(t),
		SmallImage: o.SmallImage,
		SmallText:  o.SmallText,
		Start:      startedAt,
	}
	if a.LargeImage == "" {
		a.LargeImage = o.FallbackImage
	}
	if a.SmallImage == "" {
		a.SmallText = ""
	}
	if t.URL != "" {
		a.Buttons = []core.Button{{Label: o.ButtonLabel, URL: t.URL}}
	}
	return a
}

func largeText(t *core.Track) string {
	if t.Album != "" {
		return "on " + t.Album
	}
	return t.Title + " by " + t.Artist
}
