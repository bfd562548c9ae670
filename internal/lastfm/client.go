// Package lastfm reads listening history from the Last.fm web API.
package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/tessro/scrobblecord/internal/core"
	errs "github.com/tessro/scrobblecord/internal/errors"
)

const (
	// BaseURL is the Last.fm API endpoint.
	BaseURL = "https://ws.audioscrobbler.com/2.0/"

	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 10 * time.Second

	userAgent = "scrobblecord (+https://github.com/tessro/scrobblecord)"
)

// Last.fm API error codes.
const (
	codeInvalidService    = 2
	codeInvalidMethod     = 3
	codeAuthFailed        = 4
	codeInvalidParameters = 6
	codeOperationFailed   = 8
	codeInvalidAPIKey     = 10
	codeServiceOffline    = 11
	codeTemporaryError    = 16
	codeSuspendedAPIKey   = 26
	codeRateLimited       = 29
)

// Client is a read-only Last.fm API client.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	verbose    bool
	logFunc    func(format string, args ...interface{})
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New creates a new Last.fm client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: newHTTPClient(DefaultTimeout),
		apiKey:     apiKey,
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newHTTPClient returns a client whose transport negotiates HTTP/2 with the
// API when the server offers it.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		return &http.Client{Timeout: timeout}
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// SetVerbose enables verbose logging.
func (c *Client) SetVerbose(verbose bool, logFunc func(format string, args ...interface{})) {
	c.verbose = verbose
	c.logFunc = logFunc
}

func (c *Client) log(format string, args ...interface{}) {
	if c.verbose && c.logFunc != nil {
		c.logFunc(format, args...)
	}
}

// NowPlaying returns the track the user is currently listening to, or nil
// if no entry of the listing is flagged as now playing. The most recent
// past scrobble is never returned.
func (c *Client) NowPlaying(ctx context.Context, user string) (*core.Track, error) {
	tracks, err := c.recentTracks(ctx, user, 1)
	if err != nil {
		return nil, err
	}
	for i := range tracks {
		if tracks[i].Attr.NowPlaying {
			return convertTrack(&tracks[i]), nil
		}
	}
	return nil, nil
}

// RecentTracks returns up to limit of the user's most recent tracks, newest
// first. A track being played right now is included at the top.
func (c *Client) RecentTracks(ctx context.Context, user string, limit int) ([]core.Track, error) {
	if limit <= 0 {
		limit = 10
	}
	tracks, err := c.recentTracks(ctx, user, limit)
	if err != nil {
		return nil, err
	}
	result := make([]core.Track, 0, len(tracks))
	for i := range tracks {
		result = append(result, *convertTrack(&tracks[i]))
	}
	return result, nil
}

func (c *Client) recentTracks(ctx context.Context, user string, limit int) (TrackList, error) {
	var resp RecentTracksResponse
	err := c.call(ctx, "user.getrecenttracks", map[string]string{
		"user":     user,
		"limit":    strconv.Itoa(limit),
		"extended": "1",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.RecentTracks.Tracks, nil
}

// UserInfo returns the user's profile. It doubles as a credentials check:
// an invalid API key or unknown user fails here.
func (c *Client) UserInfo(ctx context.Context, user string) (*User, error) {
	var resp UserInfoResponse
	if err := c.call(ctx, "user.getinfo", map[string]string{"user": user}, &resp); err != nil {
		return nil, err
	}
	u := resp.User
	return &User{
		Name:       u.Name,
		RealName:   u.RealName,
		URL:        u.URL,
		Country:    u.Country,
		PlayCount:  int64(u.PlayCount),
		Registered: u.Registered.UnixTime.Time(),
	}, nil
}

func (c *Client) call(ctx context.Context, method string, params map[string]string, result interface{}) error {
	if c.apiKey == "" {
		return errs.ErrMissingAPIKey
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("method", method)
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")

	fullURL := c.baseURL + "?" + q.Encode()
	c.log("[lastfm] GET %s", redactKey(fullURL, c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", errs.ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", errs.ErrNetworkError, err)
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log("[lastfm] response: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))

	// Errors come back as {"error": N, "message": "..."}, with either a 4xx
	// status or a plain 200.
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
		return &apiErr
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// APIError is an error reported by the Last.fm API.
type APIError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Last.fm API error %d: %s", e.Code, e.Message)
}

// Unwrap maps well-known error codes to sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case codeInvalidAPIKey, codeSuspendedAPIKey, codeAuthFailed:
		return errs.ErrInvalidAPIKey
	case codeInvalidParameters:
		return errs.ErrUserNotFound
	case codeRateLimited:
		return errs.ErrRateLimited
	case codeServiceOffline, codeTemporaryError, codeOperationFailed:
		return errs.ErrServiceUnavailable
	}
	return nil
}

// IsCredentialError reports whether err means the API key or user name is
// wrong, as opposed to a transient failure.
func IsCredentialError(err error) bool {
	return errors.Is(err, errs.ErrInvalidAPIKey) || errors.Is(err, errs.ErrUserNotFound)
}

func redactKey(s, key string) string {
	if key == "" {
		return s
	}
	return strings.ReplaceAll(s, key, "REDACTED")
}
