// Package mpv drives an mpv process over its JSON IPC socket. The client is the
// playback clock of the trimmer.
package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSocketPath is the default Unix socket path for mpv IPC.
const DefaultSocketPath = "/tmp/video-trim-cli-mpv.sock"

var (
	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("mpv: not connected")
	// ErrSocketNotFound is returned when the socket cannot be dialled.
	ErrSocketNotFound = errors.New("mpv: socket not found - is mpv running with --input-ipc-server?")
	// ErrPropertyUnavailable is mpv's answer for a property with no value yet,
	// such as time-pos before the file is loaded.
	ErrPropertyUnavailable = errors.New("mpv: property unavailable")

	requestID uint64
)

type ipcRequest struct {
	Command   []any  `json:"command"`
	RequestID uint64 `json:"request_id"`
}

type ipcResponse struct {
	Data      any    `json:"data"`
	RequestID uint64 `json:"request_id"`
	Error     string `json:"error"`
	Event     string `json:"event"`
}

// Client is an mpv IPC client. It is safe for concurrent use; commands are
// serialized on the connection.
type Client struct {
	socketPath string
	timeout    time.Duration

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	eof    bool
}

// NewClient creates a client for socketPath, or DefaultSocketPath when empty.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Client{
		socketPath: socketPath,
		timeout:    2 * time.Second,
	}
}

// Connect dials the IPC socket. It is a no-op when already connected.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSocketNotFound, err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Close closes the connection to mpv.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// IsConnected reports whether the client holds a connection.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// SocketPath returns the socket path this client is configured to use.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// GetProperty retrieves the value of an mpv property such as "time-pos".
func (c *Client) GetProperty(name string) (any, error) {
	return c.Command("get_property", name)
}

// SetProperty sets the value of an mpv property.
func (c *Client) SetProperty(name string, value any) error {
	_, err := c.Command("set_property", name, value)
	return err
}

// GetTimePos returns the current playback position in seconds.
func (c *Client) GetTimePos() (float64, error) {
	result, err := c.GetProperty("time-pos")
	if err != nil {
		return 0, err
	}
	return toFloat64(result)
}

// GetDuration returns the total duration of the file in seconds.
func (c *Client) GetDuration() (float64, error) {
	result, err := c.GetProperty("duration")
	if err != nil {
		return 0, err
	}
	return toFloat64(result)
}

// GetPaused returns true if playback is paused.
func (c *Client) GetPaused() (bool, error) {
	return c.getBool("pause")
}

// GetEOF reports whether playback has reached the end of the file. With
// --keep-open mpv stays on the last frame and sets eof-reached instead of quitting.
// An end-file event seen while reading responses also counts.
func (c *Client) GetEOF() (bool, error) {
	reached, err := c.getBool("eof-reached")
	if errors.Is(err, ErrPropertyUnavailable) {
		reached, err = false, nil
	}
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	sawEvent := c.eof
	c.eof = false
	c.mu.Unlock()
	return reached || sawEvent, nil
}

// Seek jumps to an absolute position with frame accuracy.
func (c *Client) Seek(seconds float64) error {
	_, err := c.Command("seek", seconds, "absolute+exact")
	return err
}

// Play resumes playback.
func (c *Client) Play() error {
	return c.SetProperty("pause", false)
}

// Pause pauses playback.
func (c *Client) Pause() error {
	return c.SetProperty("pause", true)
}

// LoadFile replaces the playing file with path.
func (c *Client) LoadFile(path string) error {
	_, err := c.Command("loadfile", path, "replace")
	return err
}

// Quit asks mpv to exit.
func (c *Client) Quit() error {
	_, err := c.Command("quit")
	return err
}

func (c *Client) getBool(name string) (bool, error) {
	result, err := c.GetProperty(name)
	if err != nil {
		return false, err
	}
	v, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("mpv: unexpected %s value type: %T", name, result)
	}
	return v, nil
}

// toFloat64 converts a decoded JSON number.
func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("mpv: unexpected numeric value type: %T", v)
	}
}

// Command sends {"command": [name, args...], "request_id": N} and waits for the
// matching reply. Event lines read in between are skipped.
func (c *Client) Command(name string, args ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	req := ipcRequest{
		Command:   append([]any{name}, args...),
		RequestID: atomic.AddUint64(&requestID, 1),
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("mpv: failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	if c.timeout > 0 {
		_ = c.conn.SetDeadline(time.Now().Add(c.timeout))
		defer c.conn.SetDeadline(time.Time{})
	}
	if _, err := c.conn.Write(data); err != nil {
		return nil, fmt.Errorf("mpv: failed to send command: %w", err)
	}

	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("mpv: failed to read response: %w", err)
		}

		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if resp.Event != "" {
			if resp.Event == "end-file" || resp.Event == "eof-reached" {
				c.eof = true
			}
			continue
		}
		if resp.RequestID != req.RequestID {
			continue
		}
		switch resp.Error {
		case "", "success":
			return resp.Data, nil
		case "property unavailable":
			return nil, ErrPropertyUnavailable
		default:
			return nil, fmt.Errorf("mpv: %s", resp.Error)
		}
	}
}
