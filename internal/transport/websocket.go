package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
)

type authPayload struct {
	Token string `json:"token,omitempty"`
}

// wsTransport implements Transport over a WebSocket connection.
type wsTransport struct {
	opts Options
	log  *slog.Logger

	conn *websocket.Conn

	messages chan Inbound
	errs     chan error
	done     chan struct{}

	mu        sync.Mutex
	connected bool
	closed    bool
}

// NewWebSocket creates a WebSocket-backed transport. It satisfies Dialer.
func NewWebSocket(opts Options) Transport {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 64
	}
	return &wsTransport{
		opts:     opts,
		log:      opts.Logger,
		messages: make(chan Inbound, opts.BufferSize),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}
}

// Connect dials the server, sends the auth hello, and starts the read loop.
func (t *wsTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrAlreadyClosed
	}
	t.mu.Unlock()

	u, err := url.Parse(t.opts.URL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if len(t.opts.Query) > 0 {
		q := u.Query()
		for k, v := range t.opts.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	dialCtx := ctx
	if t.opts.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, t.opts.HandshakeTimeout)
		defer cancel()
	}

	conn, _, err := websocket.Dial(dialCtx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	t.mu.Lock()
	t.conn = conn
	t.connected = true
	t.mu.Unlock()

	if t.opts.AuthToken != "" {
		data, _ := json.Marshal(authPayload{Token: t.opts.AuthToken})
		if _, err := t.Send(dialCtx, Envelope{Event: EventAuth, Data: data}); err != nil {
			_ = conn.Close(websocket.StatusInternalError, "auth failed")
			t.mu.Lock()
			t.connected = false
			t.mu.Unlock()
			return fmt.Errorf("send auth: %w", err)
		}
	}

	go t.readLoop()

	t.log.Debug("websocket connected", "url", u.Host)
	return nil
}

// Send marshals and writes one envelope.
func (t *wsTransport) Send(ctx context.Context, env Envelope) (int, error) {
	t.mu.Lock()
	conn := t.conn
	connected := t.connected
	t.mu.Unlock()

	if !connected || conn == nil {
		return 0, ErrNotConnected
	}

	data, err := json.Marshal(env)
	if err != nil {
		return 0, fmt.Errorf("marshal envelope: %w", err)
	}

	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// Messages returns the inbound channel.
func (t *wsTransport) Messages() <-chan Inbound {
	return t.messages
}

// Errors returns the fatal-error channel.
func (t *wsTransport) Errors() <-chan error {
	return t.errs
}

// Close tears down the connection.
func (t *wsTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.connected = false
	conn := t.conn
	t.mu.Unlock()

	close(t.done)

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client close")
	}
	return nil
}

func (t *wsTransport) readLoop() {
	defer close(t.messages)
	defer func() {
		t.mu.Lock()
		t.connected = false
		t.mu.Unlock()
	}()

	for {
		_, data, err := t.conn.Read(context.Background())
		receivedAt := time.Now()

		if err != nil {
			select {
			case <-t.done:
				// Close() was called; not a failure.
			default:
				if !isExpectedClose(err) {
					select {
					case t.errs <- err:
					default:
					}
				} else {
					select {
					case t.errs <- io.EOF:
					default:
					}
				}
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.log.Warn("dropping malformed frame", "error", err)
			continue
		}

		msg := Inbound{Envelope: env, Size: len(data), ReceivedAt: receivedAt}
		select {
		case t.messages <- msg:
		case <-t.done:
			return
		default:
			t.log.Warn("inbound buffer full, dropping message", "event", env.Event)
		}
	}
}

// isExpectedClose reports whether the read error is a clean shutdown rather
// than a transport failure.
func isExpectedClose(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
