package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const placeholderURL = "https://lastfm.freetls.fastly.net/i/u/300x300/2a96cbd8b46e442fc41c2b86b821562f.png"

func TestImageSetBest(t *testing.T) {
	tests := []struct {
		name string
		set  ImageSet
		want string
	}{
		{
			name: "prefers extralarge",
			set:  ImageSet{Small: "s", Medium: "m", Large: "l", ExtraLarge: "xl"},
			want: "xl",
		},
		{
			name: "falls back to smaller sizes",
			set:  ImageSet{Small: "s", Medium: "m"},
			want: "m",
		},
		{
			name: "skips placeholder",
			set:  ImageSet{Small: "s", ExtraLarge: placeholderURL},
			want: "s",
		},
		{
			name: "only placeholders",
			set:  ImageSet{Small: placeholderURL, Large: placeholderURL},
			want: "",
		},
		{
			name: "empty",
			set:  ImageSet{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.set.Best())
			assert.Equal(t, tt.want == "", tt.set.IsEmpty())
		})
	}
}

func TestTrackEqualIgnoresNowPlaying(t *testing.T) {
	a := &Track{Title: "Song", Artist: "Band", URL: "l1", NowPlaying: true}
	b := &Track{Title: "Song", Artist: "Band", URL: "l1", NowPlaying: false}

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestTrackEqualDisplayFields(t *testing.T) {
	base := Track{Title: "Song", Artist: "Band", Album: "LP", URL: "l1", Images: ImageSet{Large: "img"}}

	changes := map[string]func(*Track){
		"title":  func(t *Track) { t.Title = "Other" },
		"artist": func(t *Track) { t.Artist = "Other" },
		"album":  func(t *Track) { t.Album = "Other" },
		"art":    func(t *Track) { t.Images.Large = "other" },
		"link":   func(t *Track) { t.URL = "l2" },
	}

	for field, change := range changes {
		t.Run(field, func(t *testing.T) {
			other := base
			change(&other)
			assert.False(t, base.Equal(&other))
			assert.NotEqual(t, base.Fingerprint(), other.Fingerprint())
		})
	}
}

func TestTrackEqualNil(t *testing.T) {
	var a, b *Track
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(&Track{}))
	assert.False(t, (&Track{}).Equal(nil))
	assert.Equal(t, uint64(0), a.Fingerprint())
}

func TestTrackString(t *testing.T) {
	tr := &Track{Title: "Song", Artist: "Band"}
	assert.Equal(t, "Band - Song", tr.String())
}
