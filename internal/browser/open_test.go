package browser

import (
	"testing"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs int
	}{
		{"darwin", "open", 1},
		{"linux", "xdg-open", 1},
		{"windows", "rundll32", 2},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, err := command(tt.goos, "https://www.last.fm/user/rj")
			if err != nil {
				t.Fatalf("command() error = %v", err)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args = %v, want %d args", args, tt.wantArgs)
			}
			if args[len(args)-1] != "https://www.last.fm/user/rj" {
				t.Errorf("last arg = %q, want the url", args[len(args)-1])
			}
		})
	}
}

func TestCommandUnsupported(t *testing.T) {
	if _, _, err := command("plan9", "https://example.com"); err == nil {
		t.Error("command() = nil error, want unsupported platform")
	}
}
