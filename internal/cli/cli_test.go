package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tessro/scrobblecord/internal/bridge"
	"github.com/tessro/scrobblecord/internal/config"
	"github.com/tessro/scrobblecord/internal/core"
	errs "github.com/tessro/scrobblecord/internal/errors"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"a longer title", 8, "a lon..."},
		{"abcdef", 2, "ab"},
		{"Sigur Rós – Hoppípolla", 12, "Sigur Rós..."},
	}

	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestParseValue(t *testing.T) {
	if v, err := parseValue(kindInt, "5000"); err != nil || v != 5000 {
		t.Errorf("parseValue(int) = %v, %v", v, err)
	}
	if _, err := parseValue(kindInt, "fast"); err == nil {
		t.Error("parseValue(int, \"fast\") = nil error")
	}
	if v, err := parseValue(kindBool, "false"); err != nil || v != false {
		t.Errorf("parseValue(bool) = %v, %v", v, err)
	}
	if _, err := parseValue(kindBool, "maybe"); err == nil {
		t.Error("parseValue(bool, \"maybe\") = nil error")
	}
	if v, err := parseValue(kindString, "rj"); err != nil || v != "rj" {
		t.Errorf("parseValue(string) = %v, %v", v, err)
	}
}

func TestConfigKeysMatchSchema(t *testing.T) {
	// Every settable key must decode into the schema.
	for key, kind := range configKeys {
		section, field, ok := strings.Cut(key, ".")
		if !ok {
			t.Errorf("key %q has no section", key)
			continue
		}
		var value interface{} = "x"
		switch kind {
		case kindInt:
			value = 1000
		case kindBool:
			value = true
		}
		raw := map[string]interface{}{section: map[string]interface{}{field: value}}

		var cfg config.Config
		md, err := toml.Decode(encodeTOML(raw), &cfg)
		if err != nil {
			t.Errorf("%s: decode error = %v", key, err)
			continue
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			t.Errorf("%s: not part of the config schema", key)
		}
	}
}

func TestWriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	c := config.Default()
	c.LastFM.Username = "rj"

	if err := writeConfig(path, c); err != nil {
		t.Fatalf("writeConfig() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("mode = %v, want owner-only", perm)
	}

	loaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.LastFM.Username != "rj" {
		t.Errorf("Username = %q, want %q", loaded.LastFM.Username, "rj")
	}
}

func TestPrintEventJSON(t *testing.T) {
	jsonOut = true
	t.Cleanup(func() { jsonOut = false })

	ts := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := printEvent(&buf, bridge.NewFormatter(), bridge.Event{
		Type:      bridge.EventTrackStopped,
		Timestamp: ts,
		Previous:  &core.Track{Title: "Roygbiv", Artist: "Boards of Canada"},
	})
	if err != nil {
		t.Fatalf("printEvent() error = %v", err)
	}

	var got eventJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Type != "track_stopped" {
		t.Errorf("Type = %q, want %q", got.Type, "track_stopped")
	}
	if got.Title != "Roygbiv" {
		t.Errorf("Title = %q, want previous track title", got.Title)
	}
	if got.StartedAt != nil {
		t.Errorf("StartedAt = %v, want nil", got.StartedAt)
	}
}

func TestNewFormatterRejectsBadTemplate(t *testing.T) {
	cfg = config.Default()
	runFormat = "{{.Title"
	t.Cleanup(func() {
		cfg = nil
		runFormat = ""
	})

	_, err := newFormatter(false)
	if !errors.Is(err, errs.ErrInvalidConfig) {
		t.Errorf("newFormatter() error = %v, want ErrInvalidConfig", err)
	}
}

func TestCurrentVersion(t *testing.T) {
	info := currentVersion()
	if info.IPCVersion != 1 {
		t.Errorf("IPCVersion = %d, want 1", info.IPCVersion)
	}
	if info.LastFMAPI != "https://ws.audioscrobbler.com/2.0/" {
		t.Errorf("LastFMAPI = %q", info.LastFMAPI)
	}
	if info.Version == "" {
		t.Error("Version is empty")
	}
}
