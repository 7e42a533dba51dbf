package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMpv answers IPC requests from a property table and records every command.
type fakeMpv struct {
	t        *testing.T
	listener net.Listener
	path     string

	mu       sync.Mutex
	props    map[string]any
	commands [][]any
	// events are written before the next reply
	events []string
}

func newFakeMpv(t *testing.T) *fakeMpv {
	t.Helper()
	// unix socket paths are length limited, so avoid the long t.TempDir
	dir, err := os.MkdirTemp("", "mpv")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "ipc.sock")
	l, err := net.Listen("unix", path)
	require.NoError(t, err)

	f := &fakeMpv{t: t, listener: l, path: path, props: map[string]any{
		"time-pos": 1.5,
		"duration": 12.0,
		"pause":    true,
	}}
	t.Cleanup(func() { l.Close() })
	go f.serve()
	return f
}

func (f *fakeMpv) serve() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeMpv) handle(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req struct {
			Command   []any  `json:"command"`
			RequestID uint64 `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		events := f.events
		f.events = nil
		resp := map[string]any{"request_id": req.RequestID, "error": "success"}
		switch req.Command[0] {
		case "get_property":
			v, ok := f.props[req.Command[1].(string)]
			if ok {
				resp["data"] = v
			} else {
				resp["error"] = "property unavailable"
			}
		case "set_property":
			f.props[req.Command[1].(string)] = req.Command[2]
		case "seek":
			f.props["time-pos"] = req.Command[1]
		case "loadfile":
			f.props["path"] = req.Command[1]
			f.props["time-pos"] = 0.0
		}
		f.mu.Unlock()

		for _, ev := range events {
			conn.Write([]byte(ev + "\n"))
		}
		data, _ := json.Marshal(resp)
		conn.Write(append(data, '\n'))
	}
}

func (f *fakeMpv) lastCommand() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commands[len(f.commands)-1]
}

func connectedClient(t *testing.T, f *fakeMpv) *Client {
	t.Helper()
	c := NewClient(f.path)
	require.NoError(t, c.Connect())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientNotConnected(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultSocketPath, c.SocketPath())
	assert.False(t, c.IsConnected())
	_, err := c.GetTimePos()
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestClientConnectMissingSocket(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	assert.ErrorIs(t, c.Connect(), ErrSocketNotFound)
}

func TestClientProperties(t *testing.T) {
	f := newFakeMpv(t)
	c := connectedClient(t, f)

	pos, err := c.GetTimePos()
	require.NoError(t, err)
	assert.Equal(t, 1.5, pos)

	d, err := c.GetDuration()
	require.NoError(t, err)
	assert.Equal(t, 12.0, d)

	paused, err := c.GetPaused()
	require.NoError(t, err)
	assert.True(t, paused)
}

func TestClientPlaybackCommands(t *testing.T) {
	f := newFakeMpv(t)
	c := connectedClient(t, f)

	require.NoError(t, c.Seek(4.25))
	assert.Equal(t, []any{"seek", 4.25, "absolute+exact"}, f.lastCommand())

	require.NoError(t, c.Play())
	assert.Equal(t, []any{"set_property", "pause", false}, f.lastCommand())
	paused, err := c.GetPaused()
	require.NoError(t, err)
	assert.False(t, paused)

	require.NoError(t, c.Pause())
	assert.Equal(t, []any{"set_property", "pause", true}, f.lastCommand())

	pos, err := c.GetTimePos()
	require.NoError(t, err)
	assert.Equal(t, 4.25, pos)
}

func TestClientLoadFile(t *testing.T) {
	f := newFakeMpv(t)
	c := connectedClient(t, f)

	require.NoError(t, c.LoadFile("/tmp/out.mp4"))
	assert.Equal(t, []any{"loadfile", "/tmp/out.mp4", "replace"}, f.lastCommand())

	path, err := c.GetProperty("path")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out.mp4", path)
}

func TestClientSkipsEventsAndTracksEOF(t *testing.T) {
	f := newFakeMpv(t)
	c := connectedClient(t, f)

	eof, err := c.GetEOF()
	require.NoError(t, err)
	assert.False(t, eof, "missing eof-reached counts as not reached")

	f.mu.Lock()
	f.events = []string{`{"event":"end-file","reason":"eof"}`, `not json`}
	f.mu.Unlock()

	pos, err := c.GetTimePos()
	require.NoError(t, err)
	assert.Equal(t, 1.5, pos)

	eof, err = c.GetEOF()
	require.NoError(t, err)
	assert.True(t, eof)

	eof, err = c.GetEOF()
	require.NoError(t, err)
	assert.False(t, eof, "the end-file event is consumed once")
}

func TestClientPropertyUnavailable(t *testing.T) {
	f := newFakeMpv(t)
	c := connectedClient(t, f)
	_, err := c.GetProperty("chapter")
	assert.ErrorIs(t, err, ErrPropertyUnavailable)
}

func TestDialRetriesUntilSocketExists(t *testing.T) {
	f := newFakeMpv(t)
	c, err := Dial(context.Background(), f.path, 3, 10*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()
	assert.True(t, c.IsConnected())
}

func TestDialGivesUp(t *testing.T) {
	_, err := Dial(context.Background(), filepath.Join(t.TempDir(), "never.sock"), 2, time.Millisecond)
	assert.ErrorIs(t, err, ErrSocketNotFound)
}

func TestDialHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Dial(ctx, filepath.Join(t.TempDir(), "never.sock"), 5, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
