// Package presence decides what the presence surface should show for the
// track a user is currently playing, and when it should be refreshed.
package presence

import (
	"time"

	"github.com/tessro/scrobblecord/internal/core"
)

// DefaultMinInterval is the minimum time between pushes of an unchanged track.
const DefaultMinInterval = 20 * time.Second

// Clock provides the current time. time.Now carries a monotonic reading,
// which the throttle relies on.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// State is the displayed track and when it started.
type State struct {
	Current   *core.Track
	StartedAt time.Time

	// LastPushAt is zero until the first successful push.
	LastPushAt time.Time
}

// HasTrack returns true if a track is being displayed.
func (s State) HasTrack() bool {
	return s.Current != nil
}

// Elapsed returns how long the current track has been displayed.
func (s State) Elapsed(now time.Time) time.Duration {
	if s.Current == nil || s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// Reconciler owns the display state. It is not safe for concurrent use; a
// single driver goroutine calls it once per tick.
type Reconciler struct {
	clock       Clock
	minInterval time.Duration
	payload     PayloadOptions

	current     *core.Track
	fingerprint uint64
	startedAt   time.Time

	throttleActive bool
	lastPushAt     time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock sets the clock used for start timestamps.
func WithClock(c Clock) Option {
	return func(r *Reconciler) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithMinInterval sets how often an unchanged track is re-pushed.
func WithMinInterval(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.minInterval = d
		}
	}
}

// WithPayloadOptions sets the presence payload labels and assets.
func WithPayloadOptions(opts PayloadOptions) Option {
	return func(r *Reconciler) {
		r.payload = opts.withDefaults()
	}
}

// New creates a Reconciler with nothing displayed.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		clock:       systemClock{},
		minInterval: DefaultMinInterval,
		payload:     DefaultPayloadOptions(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MinInterval returns the refresh interval for unchanged tracks.
func (r *Reconciler) MinInterval() time.Duration {
	return r.minInterval
}

// Now returns the reconciler's clock reading. Callers pass it to ShouldPush
// and MarkPushed so throttling and start times share one clock.
func (r *Reconciler) Now() time.Time {
	return r.clock.Now()
}

// Reconcile folds the result of one fetch into the display state and
// reports whether the displayed track changed. A fetch error leaves the
// state untouched. A track that is not flagged as now playing counts as no
// track.
func (r *Reconciler) Reconcile(track *core.Track, err error) (dirty bool) {
	if err != nil {
		return false
	}

	if track == nil || !track.NowPlaying {
		if r.current == nil {
			return false
		}
		r.current = nil
		r.fingerprint = 0
		r.startedAt = time.Time{}
		r.throttleActive = false
		return true
	}

	fp := track.Fingerprint()
	if r.current != nil && fp == r.fingerprint {
		return false
	}

	t := *track
	r.current = &t
	r.fingerprint = fp
	r.startedAt = r.clock.Now()
	r.throttleActive = false
	return true
}

// ShouldPush reports whether the presence should be sent on this tick:
// always after a change, otherwise at most once per min interval.
func (r *Reconciler) ShouldPush(dirty bool, now time.Time) bool {
	if dirty || !r.throttleActive {
		return true
	}
	return now.Sub(r.lastPushAt) > r.minInterval
}

// MarkPushed records a successful push. Pushes that fail are not recorded,
// so the next tick tries again.
func (r *Reconciler) MarkPushed(now time.Time) {
	r.throttleActive = true
	r.lastPushAt = now
}

// BuildPayload returns the activity for the current track. ok is false when
// nothing is playing and the presence should be cleared.
func (r *Reconciler) BuildPayload() (activity core.Activity, ok bool) {
	if r.current == nil {
		return core.Activity{}, false
	}
	return r.payload.build(r.current, r.startedAt), true
}

// Snapshot returns a copy of the display state.
func (r *Reconciler) Snapshot() State {
	s := State{
		StartedAt:  r.startedAt,
		LastPushAt: r.lastPushAt,
	}
	if r.current != nil {
		t := *r.current
		s.Current = &t
	}
	return s
}
