package core

import (
	"strings"
	"time"

	"github.com/mitchellh/hashstructure/v2"
)

// PlaceholderArtHash is embedded in Last.fm image URLs that point at the
// generic "no artwork" star image.
const PlaceholderArtHash = "2a96cbd8b46e442fc41c2b86b821562f"

// ImageSet holds the artwork URLs for a track, one per size. Any entry may be
// empty.
type ImageSet struct {
	Small      string `json:"small,omitempty"`
	Medium     string `json:"medium,omitempty"`
	Large      string `json:"large,omitempty"`
	ExtraLarge string `json:"extralarge,omitempty"`
}

// Best returns the largest usable artwork URL, or "" if there is none.
func (s ImageSet) Best() string {
	for _, u := range []string{s.ExtraLarge, s.Large, s.Medium, s.Small} {
		if u != "" && !IsPlaceholderArt(u) {
			return u
		}
	}
	return ""
}

// IsEmpty returns true if no usable artwork is available.
func (s ImageSet) IsEmpty() bool {
	return s.Best() == ""
}

// IsPlaceholderArt reports whether url is the source's "no artwork" image.
func IsPlaceholderArt(url string) bool {
	return strings.Contains(url, PlaceholderArtHash)
}

// Track is a single listening event as reported by a TrackSource.
type Track struct {
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
	Album      string   `json:"album,omitempty"`
	Images     ImageSet `json:"images"`
	URL        string   `json:"url"`
	NowPlaying bool     `json:"now_playing" hash:"ignore"`

	// PlayedAt is when a past track was scrobbled; zero while playing.
	PlayedAt time.Time `json:"played_at,omitempty" hash:"ignore"`
}

// Equal reports whether two tracks would be displayed identically.
// NowPlaying and PlayedAt are not part of a track's identity.
func (t *Track) Equal(other *Track) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Fingerprint() == other.Fingerprint()
}

// Fingerprint returns a stable hash over the displayed fields of the track.
// Fields tagged hash:"ignore" do not contribute.
func (t *Track) Fingerprint() uint64 {
	if t == nil {
		return 0
	}
	h, err := hashstructure.Hash(t, hashstructure.FormatV2, nil)
	if err != nil {
		// Track only holds strings and a bool, which always hash.
		return 0
	}
	return h
}

// String returns "Artist - Title".
func (t *Track) String() string {
	if t == nil {
		return ""
	}
	return t.Artist + " - " + t.Title
}
