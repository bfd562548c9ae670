package config

import "time"

// Config is the root configuration structure.
type Config struct {
	LastFM  LastFMConfig  `toml:"lastfm" json:"lastfm"`
	Discord DiscordConfig `toml:"discord" json:"discord"`
	Sync    SyncConfig    `toml:"sync" json:"sync"`
	Output  OutputConfig  `toml:"output" json:"output"`
	Log     LogConfig     `toml:"log" json:"log"`
}

// LastFMConfig holds Last.fm API settings.
type LastFMConfig struct {
	APIKey   string `toml:"api_key" json:"api_key"`
	Username string `toml:"username" json:"username"`
	// Timeout is the per-request HTTP timeout in milliseconds.
	Timeout int `toml:"timeout" json:"timeout"`
}

// DiscordConfig holds the Discord application and presence assets.
type DiscordConfig struct {
	ClientID      string `toml:"client_id" json:"client_id"`
	FallbackImage string `toml:"fallback_image" json:"fallback_image"`
	SmallImage    string `toml:"small_image" json:"small_image"`
	SmallText     string `toml:"small_text" json:"small_text"`
	ButtonLabel   string `toml:"button_label" json:"button_label"`
}

// SyncConfig holds polling and refresh intervals in milliseconds.
type SyncConfig struct {
	PollInterval    int `toml:"poll_interval" json:"poll_interval"`
	RefreshInterval int `toml:"refresh_interval" json:"refresh_interval"`
}

// OutputConfig holds console output settings.
type OutputConfig struct {
	Emoji     bool   `toml:"emoji" json:"emoji"`
	Timestamp bool   `toml:"timestamp" json:"timestamp"`
	Format    string `toml:"format" json:"format"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

// TimeoutDuration returns the Last.fm request timeout.
func (c LastFMConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// Poll returns the pause between ticks.
func (c SyncConfig) Poll() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// Refresh returns the minimum interval between unchanged pushes.
func (c SyncConfig) Refresh() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Millisecond
}
