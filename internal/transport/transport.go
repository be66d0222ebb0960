// Package transport abstracts the underlying multiplexed socket connection.
// The wire protocol is a JSON envelope of {event, data} with optional
// correlation id and room extensions; framing and handshake belong to the
// underlying socket implementation.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Wire event names understood by the server.
const (
	EventAuth        = "auth"
	EventPing        = "ping"
	EventPong        = "pong"
	EventError       = "error"
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventRoomJoined  = "room_joined"
	EventRoomLeft    = "room_left"
	EventRoomMessage = "room_message"
)

var (
	// ErrNotConnected is returned when sending on a closed transport.
	ErrNotConnected = errors.New("transport not connected")

	// ErrAlreadyClosed is returned when connecting a closed transport.
	ErrAlreadyClosed = errors.New("transport already closed")
)

// Envelope is the wire format for every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	ID    string          `json:"id,omitempty"`
	Room  string          `json:"room,omitempty"`
}

// Inbound is a received envelope with its raw size and arrival time.
type Inbound struct {
	Envelope   Envelope
	Size       int
	ReceivedAt time.Time
}

// Transport is a single bidirectional connection to the server. A transport
// is single-use: once its error channel fires or Close is called it cannot
// be reconnected; the connection manager dials a fresh one.
type Transport interface {
	// Connect establishes the connection, bounded by ctx.
	Connect(ctx context.Context) error

	// Send writes one envelope and returns the number of bytes written.
	Send(ctx context.Context, env Envelope) (int, error)

	// Messages returns the channel of inbound envelopes. Closed when the
	// connection ends.
	Messages() <-chan Inbound

	// Errors returns a channel carrying at most one fatal connection error.
	Errors() <-chan error

	// Close tears the connection down. Idempotent.
	Close() error
}

// Options configures a transport dial.
type Options struct {
	URL              string
	HandshakeTimeout time.Duration
	AuthToken        string
	Query            map[string]string
	BufferSize       int
	Logger           *slog.Logger
}

// Dialer constructs a transport for one connection attempt. Injected so
// tests can substitute fakes for the websocket implementation.
type Dialer func(opts Options) Transport
