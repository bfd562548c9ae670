package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/tessro/scrobblecord/internal/errors"
)

var envVars = []string{
	"SCROBBLECORD_LASTFM_API_KEY",
	"SCROBBLECORD_LASTFM_USERNAME",
	"SCROBBLECORD_DISCORD_CLIENT_ID",
	"SCROBBLECORD_POLL_INTERVAL",
	"SCROBBLECORD_REFRESH_INTERVAL",
	"SCROBBLECORD_LOG_LEVEL",
	"SCROBBLECORD_LOG_FILE",
	"LASTFM_API_KEY",
	"LASTFM_USERNAME",
	"DISCORD_CLIENT_ID",
}

// isolate points HOME and XDG_CONFIG_HOME at a temp dir, moves into it so no
// .env is picked up, and blanks every override variable.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, v := range envVars {
		t.Setenv(v, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Sync.PollInterval != 2000 {
		t.Errorf("PollInterval = %d, want 2000", cfg.Sync.PollInterval)
	}
	if cfg.Sync.RefreshInterval != 20000 {
		t.Errorf("RefreshInterval = %d, want 20000", cfg.Sync.RefreshInterval)
	}
	if cfg.Discord.FallbackImage != "blank_art" {
		t.Errorf("FallbackImage = %q, want %q", cfg.Discord.FallbackImage, "blank_art")
	}
	if !cfg.Output.Emoji {
		t.Error("Emoji = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFrom(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, `
[lastfm]
api_key = "key"
username = "rj"

[sync]
poll_interval = 5000

[output]
emoji = false
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.LastFM.Username != "rj" {
		t.Errorf("Username = %q, want %q", cfg.LastFM.Username, "rj")
	}
	if cfg.Sync.PollInterval != 5000 {
		t.Errorf("PollInterval = %d, want 5000", cfg.Sync.PollInterval)
	}
	if cfg.Sync.RefreshInterval != 20000 {
		t.Errorf("RefreshInterval = %d, want default 20000", cfg.Sync.RefreshInterval)
	}
	if cfg.Output.Emoji {
		t.Error("Emoji = true, want false from file")
	}
	if cfg.Discord.SmallImage != "lastfm" {
		t.Errorf("SmallImage = %q, want default %q", cfg.Discord.SmallImage, "lastfm")
	}
}

func TestLoadFromMissing(t *testing.T) {
	dir := isolate(t)

	_, err := LoadFrom(filepath.Join(dir, "nope.toml"))
	if !errors.Is(err, errs.ErrConfigNotFound) {
		t.Errorf("LoadFrom() error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.toml")
	writeFile(t, path, "[lastfm\napi_key = ")

	_, err := LoadFrom(path)
	if !errors.Is(err, errs.ErrInvalidConfig) {
		t.Errorf("LoadFrom() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadSearchOrder(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LastFM.Username != "" {
		t.Errorf("Username = %q with no config file", cfg.LastFM.Username)
	}
	wantDefault := filepath.Join(dir, ".config", "scrobblecord", "config.toml")
	if got := Path(); got != wantDefault {
		t.Errorf("Path() = %q, want %q", got, wantDefault)
	}

	writeFile(t, wantDefault, "[lastfm]\nusername = \"xdg\"\n")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LastFM.Username != "xdg" {
		t.Errorf("Username = %q, want %q", cfg.LastFM.Username, "xdg")
	}

	rc := filepath.Join(dir, ".scrobblecordrc")
	writeFile(t, rc, "[lastfm]\nusername = \"rc\"\n")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LastFM.Username != "rc" {
		t.Errorf("Username = %q, want %q", cfg.LastFM.Username, "rc")
	}
	if got := Path(); got != rc {
		t.Errorf("Path() = %q, want %q", got, rc)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "[lastfm]\napi_key = \"file\"\nusername = \"file\"\n")

	t.Setenv("LASTFM_API_KEY", "legacy")
	t.Setenv("LASTFM_USERNAME", "legacy")
	t.Setenv("SCROBBLECORD_LASTFM_USERNAME", "prefixed")
	t.Setenv("DISCORD_CLIENT_ID", "1234")
	t.Setenv("SCROBBLECORD_POLL_INTERVAL", "3000")
	t.Setenv("SCROBBLECORD_REFRESH_INTERVAL", "not a number")
	t.Setenv("SCROBBLECORD_LOG_LEVEL", "debug")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.LastFM.APIKey != "legacy" {
		t.Errorf("APIKey = %q, want %q", cfg.LastFM.APIKey, "legacy")
	}
	if cfg.LastFM.Username != "prefixed" {
		t.Errorf("Username = %q, want %q", cfg.LastFM.Username, "prefixed")
	}
	if cfg.Discord.ClientID != "1234" {
		t.Errorf("ClientID = %q, want %q", cfg.Discord.ClientID, "1234")
	}
	if cfg.Sync.PollInterval != 3000 {
		t.Errorf("PollInterval = %d, want 3000", cfg.Sync.PollInterval)
	}
	if cfg.Sync.RefreshInterval != 20000 {
		t.Errorf("RefreshInterval = %d, want 20000 when env is invalid", cfg.Sync.RefreshInterval)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestDotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DotEnvFile), "LASTFM_USERNAME=fromdotenv\nDISCORD_CLIENT_ID=999\n")

	// godotenv never overrides a set variable, even an empty one.
	_ = os.Unsetenv("LASTFM_USERNAME")
	_ = os.Unsetenv("DISCORD_CLIENT_ID")
	t.Setenv("SCROBBLECORD_DISCORD_CLIENT_ID", "111")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LastFM.Username != "fromdotenv" {
		t.Errorf("Username = %q, want %q", cfg.LastFM.Username, "fromdotenv")
	}
	if cfg.Discord.ClientID != "111" {
		t.Errorf("ClientID = %q, want environment to win over .env", cfg.Discord.ClientID)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"poll too fast", func(c *Config) { c.Sync.PollInterval = 100 }, "poll_interval"},
		{"negative refresh", func(c *Config) { c.Sync.RefreshInterval = -1 }, "refresh_interval"},
		{"negative timeout", func(c *Config) { c.LastFM.Timeout = -5 }, "timeout"},
		{"non-numeric client id", func(c *Config) { c.Discord.ClientID = "abc" }, "client_id"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.Output.Format = "{{.Title" }, "format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !errors.Is(err, errs.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireCredentials(); !errors.Is(err, errs.ErrMissingAPIKey) {
		t.Errorf("RequireCredentials() = %v, want ErrMissingAPIKey", err)
	}
	cfg.LastFM.APIKey = "key"
	if err := cfg.RequireCredentials(); !errors.Is(err, errs.ErrMissingUsername) {
		t.Errorf("RequireCredentials() = %v, want ErrMissingUsername", err)
	}
	cfg.LastFM.Username = "rj"
	if err := cfg.RequireCredentials(); !errors.Is(err, errs.ErrMissingClientID) {
		t.Errorf("RequireCredentials() = %v, want ErrMissingClientID", err)
	}
	cfg.Discord.ClientID = "1234"
	if err := cfg.RequireCredentials(); err != nil {
		t.Errorf("RequireCredentials() = %v, want nil", err)
	}
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.LastFM.APIKey = "abcdef123456"

	r := cfg.Redacted()
	if r.LastFM.APIKey != "abcd****" {
		t.Errorf("APIKey = %q, want %q", r.LastFM.APIKey, "abcd****")
	}
	if cfg.LastFM.APIKey != "abcdef123456" {
		t.Error("Redacted() modified the original")
	}
}
