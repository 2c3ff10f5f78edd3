// Package discord speaks Discord's local RPC protocol over IPC to publish
// and clear a Rich Presence activity.
//
// The [Client] owns one connection at a time. Endpoint discovery is
// in sockets.go with per-platform dialing.
package discord

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ///////////////////////////////////////////////
// Sentinel Errors
// ///////////////////////////////////////////////

// ErrNotConnected is returned when an operation requires an active connection.
var ErrNotConnected = errors.New("not connected")

// ErrRejected is returned when Discord answers a command with an ERROR event.
var ErrRejected = errors.New("discord rejected command")

// writeTimeout bounds a single frame write so a stalled Discord client
// cannot hold up the caller.
const writeTimeout = 5 * time.Second

// replyTimeout bounds the wait for a command's response.
const replyTimeout = 3 * time.Second

// ///////////////////////////////////////////////
// Data Types
// ///////////////////////////////////////////////

// ActivityType is the verb Discord shows in front of the application name.
type ActivityType int

const (
	ActivityPlaying   ActivityType = 0
	ActivityListening ActivityType = 2
	ActivityWatching  ActivityType = 3
)

// Button is a clickable link on the activity card.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Timestamps drive the elapsed/remaining bar, in Unix milliseconds.
type Timestamps struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

// Assets holds image keys or URLs and their hover text.
type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

// Activity is a Rich Presence payload.
type Activity struct {
	Type       ActivityType `json:"type,omitempty"`
	Details    string       `json:"details,omitempty"`
	State      string       `json:"state,omitempty"`
	Timestamps *Timestamps  `json:"timestamps,omitempty"`
	Assets     *Assets      `json:"assets,omitempty"`
	Buttons    []Button     `json:"buttons,omitempty"`
}

// ///////////////////////////////////////////////
// Client
// ///////////////////////////////////////////////

// Client manages a connection to Discord's IPC socket.
type Client struct {
	appID string
	// dial opens the raw IPC connection.
	dial func() (net.Conn, error)

	// replyTimeout bounds the wait for a command response.
	replyTimeout time.Duration

	// mu serializes frame writes and guards conn.
	mu   sync.Mutex
	conn net.Conn

	// pendingMu guards pending, which routes responses to waiting
	// commands by nonce.
	pendingMu sync.Mutex
	pending   map[string]chan rpcMessage
}

// NewClient creates a Discord IPC client for the given application ID.
func NewClient(appID string) *Client {
	return &Client{
		appID:        appID,
		dial:         connectToDiscord,
		replyTimeout: replyTimeout,
		pending:      make(map[string]chan rpcMessage),
	}
}

// Connect dials Discord, performs the handshake and starts draining
// inbound frames. An existing connection is dropped first.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.failPending()
	}

	conn, err := c.dial()
	if err != nil {
		return err
	}
	return c.attach(conn)
}

// attach handshakes over conn and makes it the active connection.
// The caller must hold c.mu.
func (c *Client) attach(conn net.Conn) error {
	if err := handshake(conn, c.appID); err != nil {
		conn.Close()
		return err
	}
	c.conn = conn
	go c.readLoop(conn)
	return nil
}

// SetActivity publishes activity and waits for Discord to accept it.
// A rejection is reported as [ErrRejected].
func (c *Client) SetActivity(activity *Activity) error {
	return c.setActivity(activity)
}

// ClearActivity removes the published activity.
func (c *Client) ClearActivity() error {
	return c.setActivity(nil)
}

// Close clears the activity and closes the connection.
func (c *Client) Close() error {
	if !c.Connected() {
		return nil
	}
	_ = c.setActivity(nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.failPending()
	return err
}

// Connected reports whether the client has an active connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// setActivity sends SET_ACTIVITY; a nil activity clears it.
func (c *Client) setActivity(activity *Activity) error {
	return c.sendCommand("SET_ACTIVITY", map[string]any{
		"pid":      os.Getpid(),
		"activity": activity,
	})
}

// sendCommand writes a command frame and waits for the response carrying
// its nonce. A failed write drops the connection so [Client.Connected]
// reports false and the caller reconnects.
func (c *Client) sendCommand(cmd string, args map[string]any) error {
	nonce := uuid.NewString()
	payload, err := json.Marshal(map[string]any{
		"cmd":   cmd,
		"args":  args,
		"nonce": nonce,
	})
	if err != nil {
		return fmt.Errorf("marshaling command: %w", err)
	}

	reply := make(chan rpcMessage, 1)
	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.expect(nonce, reply)
	if err := c.writeFrame(OpFrame, payload); err != nil {
		c.conn.Close()
		c.conn = nil
		c.failPending()
		c.mu.Unlock()
		return fmt.Errorf("writing command: %w", err)
	}
	c.mu.Unlock()

	timer := time.NewTimer(c.replyTimeout)
	defer timer.Stop()
	select {
	case msg, ok := <-reply:
		if !ok {
			return fmt.Errorf("%s: %w", cmd, ErrNotConnected)
		}
		if msg.Evt == "ERROR" {
			return fmt.Errorf("%s: %w: %s (code %d)", cmd, ErrRejected, msg.Data.Message, msg.Data.Code)
		}
		return nil
	case <-timer.C:
		c.forget(nonce)
		return fmt.Errorf("%s: no response within %s", cmd, c.replyTimeout)
	}
}

// ///////////////////////////////////////////////
// Pending Responses
// ///////////////////////////////////////////////

func (c *Client) expect(nonce string, reply chan rpcMessage) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	c.pending[nonce] = reply
}

func (c *Client) forget(nonce string) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	delete(c.pending, nonce)
}

// deliver hands msg to the command waiting on its nonce. It reports false
// when nobody is waiting.
func (c *Client) deliver(msg rpcMessage) bool {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	reply, ok := c.pending[msg.Nonce]
	if !ok || msg.Nonce == "" {
		return false
	}
	delete(c.pending, msg.Nonce)
	reply <- msg
	return true
}

// failPending wakes every waiting command with a closed channel.
func (c *Client) failPending() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for nonce, reply := range c.pending {
		close(reply)
		delete(c.pending, nonce)
	}
}

// writeFrame encodes and writes one frame with a deadline.
// The caller must hold c.mu.
func (c *Client) writeFrame(op Opcode, payload []byte) error {
	frame, err := EncodeFrame(op, payload)
	if err != nil {
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err = c.conn.Write(frame)
	return err
}

// readLoop drains frames from conn until it fails or is replaced. Command
// responses go to their waiting caller. PING is answered with PONG and
// CLOSE ends the connection.
func (c *Client) readLoop(conn net.Conn) {
	for {
		op, payload, err := DecodeFrame(conn)
		if err != nil {
			c.drop(conn, "read failed", err)
			return
		}

		switch op {
		case OpPing:
			c.mu.Lock()
			if c.conn == conn {
				if err := c.writeFrame(OpPong, payload); err != nil {
					slog.Debug("discord pong failed", "error", err)
				}
			}
			c.mu.Unlock()
		case OpClose:
			c.drop(conn, "closed by discord", errors.New(closeReason(payload)))
			return
		case OpFrame:
			c.route(payload)
		}
	}
}

// drop forgets conn if it is still the active connection.
func (c *Client) drop(conn net.Conn, reason string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return
	}
	slog.Info("discord connection lost", "reason", reason, "error", err)
	conn.Close()
	c.conn = nil
	c.failPending()
}

// ///////////////////////////////////////////////
// Protocol Helpers
// ///////////////////////////////////////////////

// rpcMessage is the subset of an inbound RPC frame the client inspects.
type rpcMessage struct {
	Cmd   string `json:"cmd"`
	Evt   string `json:"evt"`
	Nonce string `json:"nonce"`
	Data  struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"data"`
}

// handshake sends the HANDSHAKE frame on conn and waits for READY.
func handshake(conn net.Conn, appID string) error {
	payload, err := json.Marshal(map[string]any{
		"v":         1,
		"client_id": appID,
	})
	if err != nil {
		return fmt.Errorf("marshaling handshake: %w", err)
	}
	frame, err := EncodeFrame(OpHandshake, payload)
	if err != nil {
		return fmt.Errorf("encoding handshake: %w", err)
	}

	_ = conn.SetDeadline(time.Now().Add(writeTimeout))
	defer conn.SetDeadline(time.Time{})

	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("writing handshake: %w", err)
	}

	op, data, err := DecodeFrame(conn)
	if err != nil {
		return fmt.Errorf("reading handshake response: %w", err)
	}
	if op == OpClose {
		return fmt.Errorf("handshake rejected: %s", closeReason(data))
	}
	if op != OpFrame {
		return fmt.Errorf("unexpected handshake response opcode: %d", op)
	}

	var msg rpcMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("parsing handshake response: %w", err)
	}
	if msg.Evt == "ERROR" {
		return fmt.Errorf("handshake rejected: %s", msg.Data.Message)
	}
	return nil
}

// closeReason extracts the message from a CLOSE payload.
func closeReason(payload []byte) string {
	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(payload, &body) != nil || body.Message == "" {
		return "connection closed"
	}
	return fmt.Sprintf("%s (code %d)", body.Message, body.Code)
}

// route hands a response to its waiting command, or logs it when nobody
// is waiting (late replies after a timeout, unsolicited events).
func (c *Client) route(payload []byte) {
	var msg rpcMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		slog.Debug("discord sent unparseable frame", "error", err)
		return
	}
	if c.deliver(msg) {
		return
	}
	if msg.Evt == "ERROR" {
		slog.Warn("discord rejected command", "cmd", msg.Cmd, "code", msg.Data.Code, "message", msg.Data.Message)
	}
}
