//go:build windows

package discord

import (
	"context"
	"fmt"
	"io"
	"os"
)

// SocketPaths returns the candidate IPC named pipes in search order.
func SocketPaths() []string {
	paths := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		paths = append(paths, fmt.Sprintf(`\\.\pipe\discord-ipc-%d`, i))
	}
	return paths
}

// dialSocket opens the first IPC pipe that exists.
func dialSocket(ctx context.Context) (io.ReadWriteCloser, error) {
	var lastErr error
	for _, p := range SocketPaths() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(p, os.O_RDWR, 0)
		if err != nil {
			lastErr = err
			continue
		}
		return f, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("no discord-ipc pipe found")
}
