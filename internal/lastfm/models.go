package lastfm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RecentTracksResponse is the response from user.getRecentTracks.
type RecentTracksResponse struct {
	RecentTracks struct {
		Tracks TrackList `json:"track"`
		Attr   struct {
			User       string  `json:"user"`
			Page       FlexInt `json:"page"`
			PerPage    FlexInt `json:"perPage"`
			TotalPages FlexInt `json:"totalPages"`
			Total      FlexInt `json:"total"`
		} `json:"@attr"`
	} `json:"recenttracks"`
}

// Track is a single entry of a recent tracks listing.
type Track struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	MBID       string    `json:"mbid"`
	Artist     Artist    `json:"artist"`
	Album      Album     `json:"album"`
	Images     ImageList `json:"image"`
	Streamable FlexBool  `json:"streamable"`
	Loved      FlexBool  `json:"loved"`
	Date       *Date     `json:"date"`
	Attr       TrackAttr `json:"@attr"`
}

// TrackAttr carries the now-playing flag, which only appears on the entry
// currently being listened to.
type TrackAttr struct {
	NowPlaying FlexBool `json:"nowplaying"`
}

// Artist is the artist of a track. Extended responses use "name"; plain
// responses put the name in "#text".
type Artist struct {
	Name   string    `json:"name"`
	URL    string    `json:"url"`
	MBID   string    `json:"mbid"`
	Images ImageList `json:"image"`
}

// UnmarshalJSON accepts both the extended and the plain artist shape.
func (a *Artist) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name   string    `json:"name"`
		Text   string    `json:"#text"`
		URL    string    `json:"url"`
		MBID   string    `json:"mbid"`
		Images ImageList `json:"image"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Name = raw.Name
	if a.Name == "" {
		a.Name = raw.Text
	}
	a.URL = raw.URL
	a.MBID = raw.MBID
	a.Images = raw.Images
	return nil
}

// Album is the album of a track.
type Album struct {
	Name string `json:"#text"`
	MBID string `json:"mbid"`
}

// Image is one artwork size.
type Image struct {
	Size string `json:"size"`
	URL  string `json:"#text"`
}

// ImageList is the list of artwork sizes for a track or artist.
type ImageList []Image

// Date is the scrobble time of a past track.
type Date struct {
	UTS  UnixTime `json:"uts"`
	Text string   `json:"#text"`
}

// TrackList decodes "track", which is an array normally but a bare object
// when the listing holds a single entry.
type TrackList []Track

// UnmarshalJSON accepts an array, a single object, or null.
func (l *TrackList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	switch data[0] {
	case '[':
		var tracks []Track
		if err := json.Unmarshal(data, &tracks); err != nil {
			return err
		}
		*l = tracks
		return nil
	case '{':
		var t Track
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		*l = TrackList{t}
		return nil
	default:
		return fmt.Errorf("unexpected track list: %s", truncate(string(data), 32))
	}
}

// FlexBool decodes booleans sent as JSON booleans, numbers, or strings such
// as "1", "0", "true" and "false".
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "1", "true":
		*b = true
	default:
		*b = false
	}
	return nil
}

// FlexInt decodes integers sent either as numbers or numeric strings.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", s, err)
	}
	*n = FlexInt(v)
	return nil
}

// UnixTime decodes a Unix timestamp in seconds, sent as a string or number.
type UnixTime time.Time

// UnmarshalJSON implements json.Unmarshaler.
func (u *UnixTime) UnmarshalJSON(data []byte) error {
	var n FlexInt
	if err := n.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}
	if n == 0 {
		*u = UnixTime{}
		return nil
	}
	*u = UnixTime(time.Unix(int64(n), 0).UTC())
	return nil
}

// Time returns the timestamp as a time.Time.
func (u UnixTime) Time() time.Time {
	return time.Time(u)
}

// UserInfoResponse is the response from user.getInfo.
type UserInfoResponse struct {
	User struct {
		Name       string    `json:"name"`
		RealName   string    `json:"realname"`
		URL        string    `json:"url"`
		Country    string    `json:"country"`
		PlayCount  FlexInt   `json:"playcount"`
		Images     ImageList `json:"image"`
		Registered struct {
			UnixTime UnixTime `json:"unixtime"`
		} `json:"registered"`
	} `json:"user"`
}

// User is a Last.fm user profile.
type User struct {
	Name       string
	RealName   string
	URL        string
	Country    string
	PlayCount  int64
	Registered time.Time
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
