// Package discord sets rich presence through the Discord desktop client's
// local IPC socket.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tessro/scrobblecord/internal/core"
	errs "github.com/tessro/scrobblecord/internal/errors"
)

const (
	// DefaultTimeout bounds a single request/response exchange.
	DefaultTimeout = 5 * time.Second

	// RPCVersion is the Discord IPC protocol version sent in the handshake.
	RPCVersion = 1

	cmdDispatch    = "DISPATCH"
	cmdSetActivity = "SET_ACTIVITY"
	evtReady       = "READY"
	evtError       = "ERROR"
)

// Dialer opens a raw connection to the IPC endpoint.
type Dialer func(ctx context.Context) (io.ReadWriteCloser, error)

// User is the Discord account the client is connected as.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
}

// DisplayName returns the global name, or the username if none is set.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Client is a Discord IPC client. It implements core.PresenceSink and is
// safe for concurrent use. A connection that fails is dropped and
// re-established on the next call.
type Client struct {
	mu       sync.Mutex
	clientID string
	dial     Dialer
	timeout  time.Duration
	pid      int
	logger   *slog.Logger

	conn io.ReadWriteCloser
	user *User
}

// Option configures a Client.
type Option func(*Client)

// WithDialer overrides how the IPC endpoint is reached.
func WithDialer(d Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dial = d
		}
	}
}

// WithTimeout sets the timeout of each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for connection events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPID sets the process ID reported with activities.
func WithPID(pid int) Option {
	return func(c *Client) {
		c.pid = pid
	}
}

// NewClient creates a client for the given Discord application ID. It does
// not connect until Connect or the first activity call.
func NewClient(clientID string, opts ...Option) *Client {
	c := &Client{
		clientID: clientID,
		dial:     dialSocket,
		timeout:  DefaultTimeout,
		pid:      os.Getpid(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens the IPC connection and performs the handshake.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

// Connected returns true if a handshake has completed on a live connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// User returns the account from the READY event, or nil before connecting.
func (c *Client) User() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// SetActivity displays activity as the user's presence.
func (c *Client) SetActivity(ctx context.Context, activity core.Activity) error {
	return c.setActivity(ctx, toWireActivity(activity))
}

// ClearActivity removes the user's presence.
func (c *Client) ClearActivity(ctx context.Context) error {
	return c.setActivity(ctx, nil)
}

// Close sends a close frame and closes the connection. Calling Close on a
// client that is not connected is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	_ = writeFrame(c.conn, OpClose, map[string]interface{}{})
	err := c.conn.Close()
	c.conn = nil
	c.user = nil
	return err
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	if c.clientID == "" {
		return errs.ErrMissingClientID
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDiscordUnavailable, err)
	}
	c.setDeadline(ctx, conn)

	handshake := map[string]interface{}{
		"v":         RPCVersion,
		"client_id": c.clientID,
	}
	if err := writeFrame(conn, OpHandshake, handshake); err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: %v", errs.ErrDiscordUnavailable, err)
	}

	for {
		op, body, err := readFrame(conn)
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("%w: handshake: %v", errs.ErrDiscordUnavailable, err)
		}

		switch op {
		case OpPing:
			if err := writeFrame(conn, OpPong, pongPayload(body)); err != nil {
				_ = conn.Close()
				return fmt.Errorf("%w: %v", errs.ErrDiscordUnavailable, err)
			}
			continue
		case OpClose:
			_ = conn.Close()
			return closeError(body)
		case OpFrame:
		default:
			continue
		}

		var resp response
		if err := json.Unmarshal(body, &resp); err != nil {
			_ = conn.Close()
			return fmt.Errorf("invalid handshake response: %w", err)
		}
		if resp.Evt == evtError {
			_ = conn.Close()
			return resp.rpcError()
		}
		if resp.Cmd != cmdDispatch || resp.Evt != evtReady {
			continue
		}

		var ready struct {
			User *User `json:"user"`
		}
		_ = json.Unmarshal(resp.Data, &ready)

		c.conn = conn
		c.user = ready.User
		c.logger.Debug("connected to discord", "user", c.user.DisplayName())
		return nil
	}
}

func (c *Client) setActivity(ctx context.Context, activity *Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(ctx); err != nil {
		return err
	}

	nonce := uuid.NewString()
	cmd := command{
		Cmd: cmdSetActivity,
		Args: setActivityArgs{
			PID:      c.pid,
			Activity: activity,
		},
		Nonce: nonce,
	}

	resp, err := c.roundTrip(ctx, cmd)
	if err != nil {
		c.dropLocked(err)
		return err
	}
	if resp.Evt == evtError {
		return resp.rpcError()
	}
	return nil
}

// roundTrip sends cmd and waits for the response carrying its nonce.
func (c *Client) roundTrip(ctx context.Context, cmd command) (*response, error) {
	c.setDeadline(ctx, c.conn)

	if err := writeFrame(c.conn, OpFrame, cmd); err != nil {
		return nil, err
	}

	for {
		op, body, err := readFrame(c.conn)
		if err != nil {
			return nil, err
		}

		switch op {
		case OpPing:
			if err := writeFrame(c.conn, OpPong, pongPayload(body)); err != nil {
				return nil, err
			}
			continue
		case OpClose:
			return nil, closeError(body)
		case OpFrame:
		default:
			continue
		}

		var resp response
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("invalid response: %w", err)
		}
		if resp.Nonce != cmd.Nonce {
			// Unrelated dispatch; keep waiting for ours.
			continue
		}
		return &resp, nil
	}
}

func (c *Client) dropLocked(cause error) {
	if c.conn == nil {
		return
	}
	c.logger.Debug("dropping discord connection", "error", cause)
	_ = c.conn.Close()
	c.conn = nil
	c.user = nil
}

func (c *Client) setDeadline(ctx context.Context, conn io.ReadWriteCloser) {
	dl, ok := conn.(interface{ SetDeadline(time.Time) error })
	if !ok {
		return
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = dl.SetDeadline(deadline)
}

type command struct {
	Cmd   string      `json:"cmd"`
	Args  interface{} `json:"args"`
	Nonce string      `json:"nonce"`
}

type setActivityArgs struct {
	PID int `json:"pid"`
	// Activity is nil to clear the presence; it must still be sent as null.
	Activity *Activity `json:"activity"`
}

type response struct {
	Cmd   string          `json:"cmd"`
	Evt   string          `json:"evt"`
	Nonce string          `json:"nonce"`
	Data  json.RawMessage `json:"data"`
}

func (r *response) rpcError() error {
	var data struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(r.Data, &data)
	return &RPCError{Code: data.Code, Message: data.Message}
}

// RPCError is an error returned by Discord for a command or sent in a close
// frame.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("discord RPC error %d: %s", e.Code, e.Message)
}

// IsInvalidClientID returns true if Discord rejected the application ID.
func IsInvalidClientID(err error) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == 4000
}

func closeError(body []byte) error {
	var data struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &data); err != nil || data.Code == 0 {
		return fmt.Errorf("%w: connection closed by discord", errs.ErrNotConnected)
	}
	return &RPCError{Code: data.Code, Message: data.Message}
}
