package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		LastFM: LastFMConfig{
			Timeout: 10000,
		},
		Discord: DiscordConfig{
			FallbackImage: "blank_art",
			SmallImage:    "lastfm",
			SmallText:     "Last.fm",
			ButtonLabel:   "Listen on Last.fm",
		},
		Sync: SyncConfig{
			PollInterval:    2000,
			RefreshInterval: 20000,
		},
		Output: OutputConfig{
			Emoji: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults. Booleans and
// the small image are left alone since their zero values are meaningful.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Last.fm
	if c.LastFM.Timeout == 0 {
		c.LastFM.Timeout = d.LastFM.Timeout
	}

	// Discord
	if c.Discord.FallbackImage == "" {
		c.Discord.FallbackImage = d.Discord.FallbackImage
	}
	if c.Discord.ButtonLabel == "" {
		c.Discord.ButtonLabel = d.Discord.ButtonLabel
	}

	// Sync
	if c.Sync.PollInterval == 0 {
		c.Sync.PollInterval = d.Sync.PollInterval
	}
	if c.Sync.RefreshInterval == 0 {
		c.Sync.RefreshInterval = d.Sync.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
