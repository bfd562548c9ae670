package lastfm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/tessro/scrobblecord/internal/errors"
)

const nowPlayingBody = `{
  "recenttracks": {
    "track": [
      {
        "artist": {"url": "https://www.last.fm/music/Boards+of+Canada", "name": "Boards of Canada", "image": [], "mbid": ""},
        "streamable": "0",
        "image": [
          {"size": "small", "#text": "https://img/34s/roygbiv.png"},
          {"size": "medium", "#text": "https://img/64s/roygbiv.png"},
          {"size": "large", "#text": "https://img/174s/roygbiv.png"},
          {"size": "extralarge", "#text": "https://img/300x300/roygbiv.png"}
        ],
        "mbid": "",
        "album": {"mbid": "", "#text": "Music Has the Right to Children"},
        "name": "Roygbiv",
        "@attr": {"nowplaying": "true"},
        "url": "https://www.last.fm/music/Boards+of+Canada/_/Roygbiv",
        "loved": "1"
      },
      {
        "artist": {"url": "https://www.last.fm/music/Autechre", "name": "Autechre", "image": [], "mbid": ""},
        "streamable": "0",
        "image": [
          {"size": "extralarge", "#text": "https://img/300x300/2a96cbd8b46e442fc41c2b86b821562f.png"}
        ],
        "mbid": "",
        "album": {"mbid": "", "#text": "Amber"},
        "name": "Foil",
        "url": "https://www.last.fm/music/Autechre/_/Foil",
        "date": {"uts": "1700000000", "#text": "14 Nov 2023, 22:13"},
        "loved": "0"
      }
    ],
    "@attr": {"user": "rj", "totalPages": "9000", "page": "1", "perPage": "1", "total": "9000"}
  }
}`

const historyOnlyBody = `{
  "recenttracks": {
    "track": {
      "artist": {"mbid": "", "#text": "Autechre"},
      "streamable": "0",
      "image": [],
      "mbid": "",
      "album": {"mbid": "", "#text": "Amber"},
      "name": "Foil",
      "url": "https://www.last.fm/music/Autechre/_/Foil",
      "date": {"uts": "1700000000", "#text": "14 Nov 2023, 22:13"}
    },
    "@attr": {"user": "rj", "totalPages": "1", "page": "1", "perPage": "1", "total": "1"}
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-key", WithBaseURL(srv.URL+"/2.0/"), WithHTTPClient(srv.Client()))
}

func TestNowPlaying(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(nowPlayingBody))
	})

	track, err := c.NowPlaying(context.Background(), "rj")
	require.NoError(t, err)
	require.NotNil(t, track)

	assert.Equal(t, "Roygbiv", track.Title)
	assert.Equal(t, "Boards of Canada", track.Artist)
	assert.Equal(t, "Music Has the Right to Children", track.Album)
	assert.Equal(t, "https://www.last.fm/music/Boards+of+Canada/_/Roygbiv", track.URL)
	assert.Equal(t, "https://img/300x300/roygbiv.png", track.Images.Best())
	assert.True(t, track.NowPlaying)
	assert.True(t, track.PlayedAt.IsZero())

	q := got.URL.Query()
	assert.Equal(t, "user.getrecenttracks", q.Get("method"))
	assert.Equal(t, "rj", q.Get("user"))
	assert.Equal(t, "test-key", q.Get("api_key"))
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "1", q.Get("extended"))
	assert.Equal(t, "1", q.Get("limit"))
}

func TestNowPlayingNoneFlagged(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(historyOnlyBody))
	})

	track, err := c.NowPlaying(context.Background(), "rj")
	require.NoError(t, err)
	assert.Nil(t, track, "past scrobbles are not now playing")
}

func TestNowPlayingEmptyListing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"recenttracks": {"track": [], "@attr": {"user": "rj"}}}`))
	})

	track, err := c.NowPlaying(context.Background(), "rj")
	require.NoError(t, err)
	assert.Nil(t, track)
}

func TestRecentTracks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(nowPlayingBody))
	})

	tracks, err := c.RecentTracks(context.Background(), "rj", 5)
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	past := tracks[1]
	assert.Equal(t, "Foil", past.Title)
	assert.False(t, past.NowPlaying)
	assert.True(t, past.Images.IsEmpty(), "placeholder art is dropped")
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), past.PlayedAt)
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		target error
	}{
		{"invalid key", http.StatusForbidden, `{"error": 10, "message": "Invalid API key"}`, errs.ErrInvalidAPIKey},
		{"suspended key", http.StatusOK, `{"error": 26, "message": "Suspended API key"}`, errs.ErrInvalidAPIKey},
		{"unknown user", http.StatusNotFound, `{"error": 6, "message": "User not found"}`, errs.ErrUserNotFound},
		{"rate limited", http.StatusTooManyRequests, `{"error": 29, "message": "Rate limit exceeded"}`, errs.ErrRateLimited},
		{"offline", http.StatusServiceUnavailable, `{"error": 11, "message": "Service Offline"}`, errs.ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.NowPlaying(context.Background(), "rj")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.NotZero(t, apiErr.Code)
		})
	}
}

func TestIsCredentialError(t *testing.T) {
	assert.True(t, IsCredentialError(&APIError{Code: 10}))
	assert.True(t, IsCredentialError(&APIError{Code: 6}))
	assert.False(t, IsCredentialError(&APIError{Code: 29}))
	assert.False(t, IsCredentialError(errs.ErrNetworkError))
}

func TestServerErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := c.NowPlaying(context.Background(), "rj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"recenttracks": {"track": "nope"}}`))
	})

	_, err := c.NowPlaying(context.Background(), "rj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New("test-key", WithBaseURL(srv.URL))
	_, err := c.NowPlaying(context.Background(), "rj")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNetworkError)
}

func TestMissingAPIKey(t *testing.T) {
	c := New("")
	_, err := c.NowPlaying(context.Background(), "rj")
	assert.ErrorIs(t, err, errs.ErrMissingAPIKey)
}

func TestUserInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "user.getinfo", r.URL.Query().Get("method"))
		_, _ = w.Write([]byte(`{"user": {
			"name": "rj", "realname": "Richard Jones", "url": "https://www.last.fm/user/RJ",
			"country": "United Kingdom", "playcount": "150316",
			"registered": {"unixtime": "1037793040", "#text": 1037793040}
		}}`))
	})

	user, err := c.UserInfo(context.Background(), "rj")
	require.NoError(t, err)
	assert.Equal(t, "rj", user.Name)
	assert.Equal(t, "Richard Jones", user.RealName)
	assert.Equal(t, int64(150316), user.PlayCount)
	assert.Equal(t, time.Unix(1037793040, 0).UTC(), user.Registered)
}

func TestVerboseLogRedactsKey(t *testing.T) {
	var lines []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(historyOnlyBody))
	})
	c.SetVerbose(true, func(format string, args ...interface{}) {
		lines = append(lines, format)
		for _, a := range args {
			if s, ok := a.(string); ok {
				lines = append(lines, s)
			}
		}
	})

	_, err := c.NowPlaying(context.Background(), "rj")
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	for _, l := range lines {
		assert.NotContains(t, l, "test-key")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Code: 10, Message: "Invalid API key"}
	assert.Equal(t, "Last.fm API error 10: Invalid API key", err.Error())
}
