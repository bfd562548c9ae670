// Package config loads scrobblecord settings from a TOML file, an optional
// .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	errs "github.com/tessro/scrobblecord/internal/errors"
)

// DotEnvFile is loaded from the working directory before the environment is
// read.
const DotEnvFile = ".env"

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.scrobblecordrc, $XDG_CONFIG_HOME/scrobblecord/config.toml,
// ~/.config/scrobblecord/config.toml
func Load() (*Config, error) {
	cfg := Default()

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidConfig, path, err)
		}
	}

	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidConfig, path, err)
	}
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Path returns the config file that Load would read, or the default location
// for a new file if none exists.
func Path() string {
	if p := findConfigFile(); p != "" {
		return p
	}
	paths := searchPaths()
	if len(paths) == 0 {
		return filepath.Join(".", "config.toml")
	}
	return paths[len(paths)-1]
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func searchPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	paths := []string{
		filepath.Join(home, ".scrobblecordrc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return append(paths, filepath.Join(xdgConfig, "scrobblecord", "config.toml"))
}

// loadDotEnv sets variables from a .env file without overriding ones that
// are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", errs.ErrInvalidConfig, path, err)
}

// applyEnvOverrides applies environment variable overrides to the config.
// Unprefixed names are accepted for compatibility and lose to the
// SCROBBLECORD_ ones.
func applyEnvOverrides(cfg *Config) {
	// Last.fm
	if v := getenv("SCROBBLECORD_LASTFM_API_KEY", "LASTFM_API_KEY"); v != "" {
		cfg.LastFM.APIKey = v
	}
	if v := getenv("SCROBBLECORD_LASTFM_USERNAME", "LASTFM_USERNAME"); v != "" {
		cfg.LastFM.Username = v
	}

	// Discord
	if v := getenv("SCROBBLECORD_DISCORD_CLIENT_ID", "DISCORD_CLIENT_ID"); v != "" {
		cfg.Discord.ClientID = v
	}

	// Sync
	if v := os.Getenv("SCROBBLECORD_POLL_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Sync.PollInterval = i
		}
	}
	if v := os.Getenv("SCROBBLECORD_REFRESH_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Sync.RefreshInterval = i
		}
	}

	// Log
	if v := os.Getenv("SCROBBLECORD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SCROBBLECORD_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

// getenv returns the first non-empty variable among names.
func getenv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// Redacted returns a copy with the API key masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.LastFM.APIKey = mask(c.LastFM.APIKey)
	return &out
}

func mask(s string) string {
	if len(s) <= 4 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return s[:4] + "****"
}
