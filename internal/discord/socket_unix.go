//go:build !windows

package discord

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
)

// socketDirs are the subdirectories Discord builds may place their socket
// in, relative to the runtime or temp directory.
var socketDirs = []string{
	"",
	"app/com.discordapp.Discord",
	"snap.discord",
	".flatpak/dev.vencord.Vesktop/xdg-run",
}

// SocketPaths returns the candidate IPC socket paths in search order.
func SocketPaths() []string {
	var bases []string
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if v := os.Getenv(env); v != "" {
			bases = append(bases, v)
		}
	}
	bases = append(bases, "/tmp")

	seen := make(map[string]bool)
	var paths []string
	for _, base := range bases {
		for _, sub := range socketDirs {
			for i := 0; i < 10; i++ {
				p := filepath.Join(base, sub, fmt.Sprintf("discord-ipc-%d", i))
				if seen[p] {
					continue
				}
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	return paths
}

// dialSocket connects to the first IPC socket that accepts a connection.
func dialSocket(ctx context.Context) (io.ReadWriteCloser, error) {
	var d net.Dialer
	var lastErr error
	for _, p := range SocketPaths() {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		conn, err := d.DialContext(ctx, "unix", p)
		if err != nil {
			lastErr = err
			continue
		}
		return conn, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("no discord-ipc socket found")
}
