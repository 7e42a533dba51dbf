package mpv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/user/video-trim-cli/deps"
)

// Launch starts mpv paused on videoPath with an IPC server on socketPath. mpv keeps
// the last frame open at the end of the file so the trimmer can seek back.
// The returned command is running; the caller owns cleanup.
func Launch(ctx context.Context, videoPath, socketPath string) (*exec.Cmd, error) {
	if err := deps.CheckMpv(); err != nil {
		return nil, err
	}
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	// a stale socket from a crashed session would make Dial succeed too early
	_ = os.Remove(socketPath)

	cmd := exec.CommandContext(ctx, "mpv",
		"--pause",
		"--keep-open=yes",
		"--no-terminal",
		"--force-window=yes",
		"--input-ipc-server="+socketPath,
		videoPath,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting mpv: %w", err)
	}
	return cmd, nil
}

// Dial connects a client to socketPath, retrying while mpv creates the socket.
func Dial(ctx context.Context, socketPath string, attempts int, delay time.Duration) (*Client, error) {
	if attempts <= 0 {
		attempts = 1
	}
	client := NewClient(socketPath)

	var err error
	for i := 0; i < attempts; i++ {
		if err = client.Connect(); err == nil {
			return client, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, err
}
