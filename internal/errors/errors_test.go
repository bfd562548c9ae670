package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"missing key", ErrMissingAPIKey, "LASTFM_API_KEY"},
		{"missing user", fmt.Errorf("config: %w", ErrMissingUsername), "LASTFM_USERNAME"},
		{"missing client id", ErrMissingClientID, "DISCORD_CLIENT_ID"},
		{"invalid key", ErrInvalidAPIKey, "last.fm/api/accounts"},
		{"user not found", ErrUserNotFound, "username"},
		{"discord", fmt.Errorf("connect: %w", ErrDiscordUnavailable), "Start the Discord"},
		{"rate limited", errors.New("status 429"), "poll_interval"},
		{"network", fmt.Errorf("%w: dial tcp", ErrNetworkError), "internet connection"},
		{"config", ErrInvalidConfig, "config init"},
		{"unknown", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetSuggestion(tt.err)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestWithSuggestion(t *testing.T) {
	base := errors.New("socket closed")
	err := WithSuggestion(base, "restart Discord")

	assert.Equal(t, "restart Discord", GetSuggestion(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "socket closed", err.Error())
}

func TestFormat(t *testing.T) {
	assert.Empty(t, Format(nil))
	assert.Equal(t, "Error: boom", Format(errors.New("boom")))
	assert.Contains(t, Format(ErrMissingClientID), "Suggestion:")
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(fmt.Errorf("startup: %w", ErrInvalidAPIKey)))
	assert.True(t, IsFatal(ErrDiscordUnavailable))
	assert.False(t, IsFatal(ErrNetworkError))
	assert.False(t, IsFatal(ErrRateLimited))
	assert.False(t, IsFatal(nil))
}
