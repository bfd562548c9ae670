// Package bridge drives the poll loop that mirrors Last.fm now playing into
// Discord rich presence.
package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/tessro/scrobblecord/internal/core"
	"github.com/tessro/scrobblecord/internal/presence"
)

// DefaultInterval is the pause between ticks.
const DefaultInterval = 2 * time.Second

// EventType represents the outcome of a tick.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackStopped
	EventPresenceSet
	EventPresenceCleared
	EventFetchError
	EventPushError
	EventIdle
)

// Event describes something that happened during a tick.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Track     *core.Track
	Previous  *core.Track
	StartedAt time.Time
	Activity  *core.Activity
	Err       error
}

// Driver runs fetch, reconcile and push on a fixed interval. It owns the
// reconciler and must be used from a single goroutine.
type Driver struct {
	source   core.TrackSource
	sink     core.PresenceSink
	rec      *presence.Reconciler
	user     string
	interval time.Duration
	logger   *slog.Logger
	events   chan<- Event
}

// Option configures a Driver.
type Option func(*Driver)

// WithInterval sets the pause between ticks.
func WithInterval(d time.Duration) Option {
	return func(dr *Driver) {
		if d > 0 {
			dr.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(dr *Driver) {
		if l != nil {
			dr.logger = l
		}
	}
}

// WithEvents sets a channel that receives every event. Sends never block;
// events are dropped when the channel is full.
func WithEvents(ch chan<- Event) Option {
	return func(dr *Driver) {
		dr.events = ch
	}
}

// NewDriver creates a driver that polls source for user and pushes to sink.
func NewDriver(source core.TrackSource, sink core.PresenceSink, rec *presence.Reconciler, user string, opts ...Option) *Driver {
	d := &Driver{
		source:   source,
		sink:     sink,
		rec:      rec,
		user:     user,
		interval: DefaultInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Interval returns the pause between ticks.
func (d *Driver) Interval() time.Duration {
	return d.interval
}

// Refresh returns the minimum interval between unchanged pushes.
func (d *Driver) Refresh() time.Duration {
	return d.rec.MinInterval()
}

// State returns a copy of the display state.
func (d *Driver) State() presence.State {
	return d.rec.Snapshot()
}

// Run ticks until ctx is cancelled and returns ctx.Err(). Fetch and push
// failures are logged and never end the loop.
func (d *Driver) Run(ctx context.Context) error {
	d.logger.Info("bridge started", "user", d.user, "interval", d.interval, "refresh", d.rec.MinInterval())

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("bridge stopped")
			return ctx.Err()
		case <-timer.C:
			d.Tick(ctx)
			timer.Reset(d.interval)
		}
	}
}

// Tick runs one iteration and returns its final event.
func (d *Driver) Tick(ctx context.Context) Event {
	track, err := d.source.NowPlaying(ctx, d.user)
	prev := d.rec.Snapshot().Current
	dirty := d.rec.Reconcile(track, err)
	now := d.rec.Now()

	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return Event{Type: EventIdle, Timestamp: now, Err: err}
		}
		d.logger.Warn("failed to fetch now playing", "user", d.user, "error", err)
		return d.emit(Event{Type: EventFetchError, Timestamp: now, Err: err})
	}

	state := d.rec.Snapshot()
	if dirty {
		if state.Current != nil {
			d.logger.Info("track changed", "track", state.Current.String())
			d.emit(Event{Type: EventTrackChange, Timestamp: now, Track: state.Current, Previous: prev, StartedAt: state.StartedAt})
		} else {
			d.logger.Info("playback stopped")
			d.emit(Event{Type: EventTrackStopped, Timestamp: now, Previous: prev})
		}
	}

	if !d.rec.ShouldPush(dirty, now) {
		return d.emit(Event{Type: EventIdle, Timestamp: now, Track: state.Current, StartedAt: state.StartedAt})
	}

	activity, ok := d.rec.BuildPayload()
	if ok {
		err = d.sink.SetActivity(ctx, activity)
	} else {
		err = d.sink.ClearActivity(ctx)
	}
	if err != nil {
		d.logger.Warn("failed to update presence", "error", err)
		return d.emit(Event{Type: EventPushError, Timestamp: now, Track: state.Current, StartedAt: state.StartedAt, Err: err})
	}
	d.rec.MarkPushed(now)

	if !ok {
		d.logger.Debug("presence cleared")
		return d.emit(Event{Type: EventPresenceCleared, Timestamp: now})
	}
	d.logger.Debug("presence set", "details", activity.Details, "state", activity.State, "image", activity.LargeImage)
	return d.emit(Event{Type: EventPresenceSet, Timestamp: now, Track: state.Current, StartedAt: state.StartedAt, Activity: &activity})
}

func (d *Driver) emit(e Event) Event {
	if d.events != nil {
		select {
		case d.events <- e:
		default:
			// Drop event if channel is full
		}
	}
	return e
}
