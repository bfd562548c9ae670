package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrMissingAPIKey      = errors.New("missing Last.fm API key")
	ErrMissingUsername    = errors.New("missing Last.fm username")
	ErrMissingClientID    = errors.New("missing Discord client ID")
	ErrInvalidAPIKey      = errors.New("invalid Last.fm API key")
	ErrUserNotFound       = errors.New("Last.fm user not found")
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrNetworkError       = errors.New("network error")
	ErrTimeout            = errors.New("request timeout")
	ErrDiscordUnavailable = errors.New("discord is not running")
	ErrNotConnected       = errors.New("not connected to discord")
	ErrConfigNotFound     = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// AppError wraps an error with a user-friendly suggestion.
type AppError struct {
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &AppError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// IsFatal reports whether err is one of the startup failures that should
// stop the process rather than be retried on the next tick.
func IsFatal(err error) bool {
	for _, target := range []error{
		ErrMissingAPIKey,
		ErrMissingUsername,
		ErrMissingClientID,
		ErrInvalidAPIKey,
		ErrUserNotFound,
		ErrDiscordUnavailable,
		ErrInvalidConfig,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Suggestion != "" {
		return appErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// Missing settings
	if errors.Is(err, ErrMissingAPIKey) {
		return "Set lastfm.api_key in the config file or LASTFM_API_KEY in the environment"
	}
	if errors.Is(err, ErrMissingUsername) {
		return "Set lastfm.username in the config file or LASTFM_USERNAME in the environment"
	}
	if errors.Is(err, ErrMissingClientID) {
		return "Set discord.client_id in the config file or DISCORD_CLIENT_ID in the environment"
	}

	// Last.fm credentials
	if errors.Is(err, ErrInvalidAPIKey) || strings.Contains(errStr, "invalid api key") {
		return "Check your API key at https://www.last.fm/api/accounts"
	}
	if errors.Is(err, ErrUserNotFound) {
		return "Check the Last.fm username; it must match your profile URL"
	}

	// Discord
	if errors.Is(err, ErrDiscordUnavailable) || errors.Is(err, ErrNotConnected) ||
		strings.Contains(errStr, "discord-ipc") {
		return "Start the Discord desktop app and try again"
	}

	// Rate limiting
	if errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") {
		return "Too many requests. Increase sync.poll_interval"
	}

	// Network errors
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "timeout") || strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	if errors.Is(err, ErrServiceUnavailable) || strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "server error") {
		return "Last.fm is having issues. Try again in a moment"
	}

	// Config errors
	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) {
		return "Run 'scrobblecord config init' to create a configuration file"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
