package core

import (
	"context"
	"time"
)

// ActivityType is the kind of activity shown on the presence surface.
type ActivityType int

const (
	ActivityPlaying   ActivityType = 0
	ActivityListening ActivityType = 2
	ActivityWatching  ActivityType = 3
)

// Button is a clickable link attached to an activity.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Activity is the presence payload built from the current track.
type Activity struct {
	Type       ActivityType `json:"type"`
	Details    string       `json:"details"`
	State      string       `json:"state"`
	LargeImage string       `json:"large_image"`
	LargeText  string       `json:"large_text"`
	SmallImage string       `json:"small_image,omitempty"`
	SmallText  string       `json:"small_text,omitempty"`
	Start      time.Time    `json:"start"`
	Buttons    []Button     `json:"buttons,omitempty"`
}

// TrackSource reports what a user is listening to right now.
type TrackSource interface {
	// NowPlaying returns the track flagged as currently playing, or nil if
	// the user is not playing anything.
	NowPlaying(ctx context.Context, user string) (*Track, error)
}

// PresenceSink displays or clears an activity.
type PresenceSink interface {
	SetActivity(ctx context.Context, activity Activity) error
	ClearActivity(ctx context.Context) error
	Close() error
}
