package config

import (
	"errors"
	"fmt"
	"text/template"

	errs "github.com/tessro/scrobblecord/internal/errors"
)

// MinPollInterval is the shortest allowed poll interval in milliseconds.
const MinPollInterval = 500

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var all []error

	if err := c.LastFM.Validate(); err != nil {
		all = append(all, fmt.Errorf("lastfm: %w", err))
	}
	if err := c.Discord.Validate(); err != nil {
		all = append(all, fmt.Errorf("discord: %w", err))
	}
	if err := c.Sync.Validate(); err != nil {
		all = append(all, fmt.Errorf("sync: %w", err))
	}
	if err := c.Output.Validate(); err != nil {
		all = append(all, fmt.Errorf("output: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		all = append(all, fmt.Errorf("log: %w", err))
	}

	if len(all) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, errors.Join(all...))
}

// RequireCredentials returns an error for the first missing value needed to
// run the bridge.
func (c *Config) RequireCredentials() error {
	switch {
	case c.LastFM.APIKey == "":
		return errs.ErrMissingAPIKey
	case c.LastFM.Username == "":
		return errs.ErrMissingUsername
	case c.Discord.ClientID == "":
		return errs.ErrMissingClientID
	}
	return nil
}

// Validate checks LastFMConfig for errors.
func (c *LastFMConfig) Validate() error {
	if c.Timeout < 0 {
		return errors.New("timeout must be non-negative")
	}
	return nil
}

// Validate checks DiscordConfig for errors.
func (c *DiscordConfig) Validate() error {
	for _, r := range c.ClientID {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid client_id: %s (must be the numeric application ID)", c.ClientID)
		}
	}
	return nil
}

// Validate checks SyncConfig for errors.
func (c *SyncConfig) Validate() error {
	if c.PollInterval < MinPollInterval {
		return fmt.Errorf("poll_interval must be at least %d", MinPollInterval)
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must be non-negative")
	}
	return nil
}

// Validate checks OutputConfig for errors.
func (c *OutputConfig) Validate() error {
	if c.Format != "" {
		if _, err := template.New("format").Parse(c.Format); err != nil {
			return fmt.Errorf("invalid format: %w", err)
		}
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
