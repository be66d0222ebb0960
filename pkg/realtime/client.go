// Package realtime is a resilient client for the admin realtime gateway. It
// maintains a single multiplexed connection with automatic reconnection,
// offline buffering, room membership tracking, and request/response
// correlation on top of the event stream.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/adminsuite/realtime-client/internal/config"
	"github.com/adminsuite/realtime-client/internal/correlator"
	"github.com/adminsuite/realtime-client/internal/heartbeat"
	"github.com/adminsuite/realtime-client/internal/metrics"
	"github.com/adminsuite/realtime-client/internal/queue"
	"github.com/adminsuite/realtime-client/internal/rooms"
	"github.com/adminsuite/realtime-client/internal/scheduler"
	"github.com/adminsuite/realtime-client/internal/state"
	"github.com/adminsuite/realtime-client/internal/store"
	"github.com/adminsuite/realtime-client/internal/transport"
)

const (
	eventBufferSize  = 256
	heartbeatTimeout = 5 * time.Second
)

type handlerEntry struct {
	fn   Handler
	once bool
}

// Client is the connection manager. All methods are safe for concurrent use.
type Client struct {
	cfg  *config.Config
	log  *slog.Logger
	dial transport.Dialer
	diag *store.DiagnosticsStore

	machine *state.Machine
	sched   *scheduler.Scheduler
	hb      *heartbeat.Monitor
	outbox  *queue.Queue
	rooms   *rooms.Registry
	corr    *correlator.Correlator
	stats   *metrics.Collector

	// mu serializes lifecycle changes and guards the active transport.
	mu     sync.Mutex
	tr     transport.Transport
	gen    int
	closed bool

	events       chan Event
	eventsMu     sync.Mutex
	eventsClosed bool
	wg           sync.WaitGroup

	handlersMu sync.Mutex
	nextID     int
	lifecycle  map[EventType]map[int]*handlerEntry
	messages   map[string]map[int]*handlerEntry
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client from the given configuration. When
// cfg.AutoConnect is set the first connection attempt starts immediately in
// the background; otherwise the client stays disconnected until Connect.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	c := &Client{
		cfg:       cfg,
		log:       slog.Default(),
		dial:      transport.NewWebSocket,
		machine:   state.NewMachine(),
		outbox:    queue.New(cfg.QueueLimit),
		rooms:     rooms.NewRegistry(),
		corr:      correlator.New(),
		stats:     metrics.NewCollector(),
		events:    make(chan Event, eventBufferSize),
		lifecycle: make(map[EventType]map[int]*handlerEntry),
		messages:  make(map[string]map[int]*handlerEntry),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.sched = scheduler.New(cfg.ReconnectionDelay, cfg.ReconnectionDelayMax, cfg.ReconnectionAttempts, c.log)
	c.hb = heartbeat.NewMonitor(cfg.HeartbeatInterval, c.log)
	c.stats.SetQueuedFunc(c.outbox.Len)

	if cfg.DiagnosticsPath != "" {
		diag, err := store.NewDiagnosticsStore(cfg.DiagnosticsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open diagnostics store: %w", err)
		}
		c.diag = diag
	}

	c.machine.OnTransition(func(ctx context.Context, from, to state.State, trigger state.Trigger) {
		c.log.Debug("state transition", "from", from, "to", to, "trigger", trigger)
		if c.diag != nil {
			if err := c.diag.LogTransition(context.Background(), from, to, string(trigger)); err != nil {
				c.log.Warn("failed to record transition", "error", err)
			}
		}
		c.emitEvent(Event{Type: EventStateChange, From: State(from), To: State(to)})
	})

	c.wg.Add(1)
	go c.processEvents()

	if cfg.AutoConnect {
		go func() {
			if err := c.Connect(context.Background()); err != nil {
				c.log.Warn("auto-connect failed", "error", err)
			}
		}()
	}

	return c, nil
}

// Connect establishes the connection. A failed attempt starts the reconnect
// cycle (when reconnection is enabled) and still returns the dial error so
// callers see the immediate outcome. Calling Connect while already connecting
// or connected is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.machine.MustState() != state.StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	if err := c.machine.Fire(ctx, state.TriggerConnect); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	// A fresh connect starts a fresh retry cycle.
	c.sched.Reset()

	tr, err := c.dialOnce(ctx)
	if err != nil {
		c.mu.Lock()
		_ = c.machine.Fire(ctx, state.TriggerConnectFailed)
		c.mu.Unlock()

		terr := &TransportError{Op: "connect", Err: err}
		c.log.Warn("connection failed", "error", err)
		c.emitEvent(Event{Type: EventConnectionError, Err: terr})

		if c.cfg.Reconnection {
			c.scheduleReconnect()
		} else {
			c.mu.Lock()
			_ = c.machine.Fire(ctx, state.TriggerDisconnect)
			c.mu.Unlock()
		}
		return terr
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = tr.Close()
		return ErrClosed
	}
	if err := c.machine.Fire(ctx, state.TriggerHandshakeOK); err != nil {
		// Disconnect won the race while the dial was in flight; the fresh
		// transport must not outlive it.
		c.mu.Unlock()
		_ = tr.Close()
		return ErrNotConnected
	}
	c.attachLocked(tr)
	c.mu.Unlock()

	c.afterConnect(tr, 0)
	return nil
}

// Disconnect tears the connection down deliberately: any scheduled reconnect
// is canceled, pending requests are rejected, and the offline buffer and room
// registry are cleared. Safe to call in any state.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.machine.MustState() == state.StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	tr := c.tr
	c.tr = nil
	c.gen++
	_ = c.machine.Fire(context.Background(), state.TriggerDisconnect)
	c.mu.Unlock()

	c.sched.Reset()
	c.hb.Stop()
	if tr != nil {
		_ = tr.Close()
	}
	c.corr.RejectAll(ErrNotConnected)
	c.outbox.Clear()
	c.rooms.Clear()
	c.stats.MarkDisconnected()

	c.log.Info("disconnected")
	c.emitEvent(Event{Type: EventDisconnected})
	return nil
}

// Close disconnects and releases all client resources. The client cannot be
// reused afterwards.
func (c *Client) Close() error {
	_ = c.Disconnect()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.eventsMu.Lock()
	c.eventsClosed = true
	close(c.events)
	c.eventsMu.Unlock()

	c.wg.Wait()

	if c.diag != nil {
		return c.diag.Close()
	}
	return nil
}

// State returns the current connection state.
func (c *Client) State() State {
	return State(c.machine.MustState())
}

// Metrics returns a snapshot of the connection metrics.
func (c *Client) Metrics() metrics.Snapshot {
	return c.stats.Snapshot()
}

// Rooms returns the names of all tracked rooms, sorted.
func (c *Client) Rooms() []string {
	return c.rooms.List()
}

// Emit sends a domain event to the server. While disconnected the message is
// buffered and flushed in order on the next successful connect; sent reports
// whether the message went out immediately.
func (c *Client) Emit(ctx context.Context, event string, payload any) (sent bool, err error) {
	data, err := marshalPayload(payload)
	if err != nil {
		return false, err
	}
	return c.send(ctx, transport.Envelope{Event: event, Data: data})
}

// SendToRoom sends a domain event scoped to a room. Buffering behaves as in
// Emit.
func (c *Client) SendToRoom(ctx context.Context, room, event string, payload any) (sent bool, err error) {
	data, err := marshalPayload(payload)
	if err != nil {
		return false, err
	}
	return c.send(ctx, transport.Envelope{Event: event, Room: room, Data: data})
}

// Request sends a correlated request and blocks until the response, the
// timeout, or ctx expires. A timeout of zero uses the handshake timeout.
func (c *Client) Request(ctx context.Context, event string, payload any, timeout time.Duration) (json.RawMessage, error) {
	data, err := marshalPayload(payload)
	if err != nil {
		return nil, err
	}
	tr, err := c.connectedTransport()
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = c.cfg.HandshakeTimeout
	}

	id, ch := c.corr.Create(timeout, &TimeoutError{Op: event, Timeout: timeout})

	n, err := tr.Send(ctx, transport.Envelope{Event: event, Data: data, ID: id})
	if err != nil {
		terr := &TransportError{Op: "request", Err: err}
		c.corr.Reject(id, terr)
		return nil, terr
	}
	c.stats.RecordSent(n)

	select {
	case res := <-ch:
		return res.Data, res.Err
	case <-ctx.Done():
		c.corr.Reject(id, ctx.Err())
		return nil, ctx.Err()
	}
}

// JoinRoom subscribes to a room. Requires a live connection; membership is
// tracked and transparently restored after a reconnect. Joining a room twice
// is a no-op.
func (c *Client) JoinRoom(ctx context.Context, room string) error {
	if room == "" {
		return fmt.Errorf("room name must not be empty")
	}
	tr, err := c.connectedTransport()
	if err != nil {
		return err
	}
	if !c.rooms.MarkJoined(room) {
		return nil
	}
	if _, err := tr.Send(ctx, transport.Envelope{Event: transport.EventJoinRoom, Room: room}); err != nil {
		c.rooms.Remove(room)
		return &TransportError{Op: "join_room", Err: err}
	}
	c.log.Info("joined room", "room", room)
	c.emitEvent(Event{Type: EventRoomJoined, Room: room})
	return nil
}

// LeaveRoom unsubscribes from a room. Leaving an untracked room is a no-op.
func (c *Client) LeaveRoom(ctx context.Context, room string) error {
	tr, err := c.connectedTransport()
	if err != nil {
		return err
	}
	if !c.rooms.Contains(room) {
		return nil
	}
	if _, err := tr.Send(ctx, transport.Envelope{Event: transport.EventLeaveRoom, Room: room}); err != nil {
		return &TransportError{Op: "leave_room", Err: err}
	}
	c.rooms.Remove(room)
	c.log.Info("left room", "room", room)
	c.emitEvent(Event{Type: EventRoomLeft, Room: room})
	return nil
}

// On registers a handler for a lifecycle event type and returns its
// subscription id.
func (c *Client) On(t EventType, h Handler) int {
	return c.register(c.lifecycleBucket(t), h, false)
}

// Once registers a handler that is removed after its first invocation.
func (c *Client) Once(t EventType, h Handler) int {
	return c.register(c.lifecycleBucket(t), h, true)
}

// Off removes a lifecycle handler. Returns false if the id is unknown.
func (c *Client) Off(t EventType, id int) bool {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	bucket, ok := c.lifecycle[t]
	if !ok {
		return false
	}
	if _, ok := bucket[id]; !ok {
		return false
	}
	delete(bucket, id)
	return true
}

// OnMessage registers a handler for inbound domain messages with the given
// wire event name.
func (c *Client) OnMessage(event string, h Handler) int {
	return c.register(c.messageBucket(event), h, false)
}

// OffMessage removes a message handler. Returns false if the id is unknown.
func (c *Client) OffMessage(event string, id int) bool {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	bucket, ok := c.messages[event]
	if !ok {
		return false
	}
	if _, ok := bucket[id]; !ok {
		return false
	}
	delete(bucket, id)
	return true
}

func (c *Client) lifecycleBucket(t EventType) map[int]*handlerEntry {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	bucket, ok := c.lifecycle[t]
	if !ok {
		bucket = make(map[int]*handlerEntry)
		c.lifecycle[t] = bucket
	}
	return bucket
}

func (c *Client) messageBucket(event string) map[int]*handlerEntry {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	bucket, ok := c.messages[event]
	if !ok {
		bucket = make(map[int]*handlerEntry)
		c.messages[event] = bucket
	}
	return bucket
}

func (c *Client) register(bucket map[int]*handlerEntry, h Handler, once bool) int {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.nextID++
	bucket[c.nextID] = &handlerEntry{fn: h, once: once}
	return c.nextID
}

func (c *Client) send(ctx context.Context, env transport.Envelope) (bool, error) {
	c.mu.Lock()
	closed := c.closed
	tr := c.tr
	connected := c.machine.MustState() == state.StateConnected
	c.mu.Unlock()

	if closed {
		return false, ErrClosed
	}
	if !connected || tr == nil {
		if err := c.outbox.Enqueue(queue.Pending{Event: env.Event, Room: env.Room, Data: env.Data}); err != nil {
			return false, err
		}
		c.log.Debug("message queued", "event", env.Event, "queued", c.outbox.Len())
		return false, nil
	}

	n, err := tr.Send(ctx, env)
	if err != nil {
		return false, &TransportError{Op: "send", Err: err}
	}
	c.stats.RecordSent(n)
	c.emitEvent(Event{Type: EventMessageSent, Name: env.Event, Room: env.Room})
	return true, nil
}

func (c *Client) connectedTransport() (transport.Transport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.tr == nil || c.machine.MustState() != state.StateConnected {
		return nil, ErrNotConnected
	}
	return c.tr, nil
}

func (c *Client) dialOnce(ctx context.Context) (transport.Transport, error) {
	tr := c.dial(transport.Options{
		URL:              c.cfg.URL,
		HandshakeTimeout: c.cfg.HandshakeTimeout,
		AuthToken:        c.cfg.AuthToken,
		Query:            c.cfg.Query,
		Logger:           c.log,
	})
	if err := tr.Connect(ctx); err != nil {
		_ = tr.Close()
		return nil, err
	}
	return tr, nil
}

// attachLocked installs the new transport and starts its read loop. Caller
// holds c.mu.
func (c *Client) attachLocked(tr transport.Transport) {
	c.tr = tr
	c.gen++
	gen := c.gen
	c.wg.Add(1)
	go c.readLoop(tr, gen)
}

// afterConnect runs the post-connect sequence shared by fresh connects and
// reconnects: reset backoff, start the heartbeat, restore room memberships,
// then flush the offline buffer in order.
func (c *Client) afterConnect(tr transport.Transport, attempt int) {
	c.sched.Reset()
	c.stats.MarkConnected()
	c.hb.Start(func() { c.sendHeartbeat(tr) })

	c.rejoinRooms(tr)
	c.flushOutbox(tr)

	if attempt > 0 {
		c.log.Info("reconnected", "url", c.cfg.URL, "attempt", attempt)
		c.emitEvent(Event{Type: EventReconnected, Attempt: attempt})
	} else {
		c.log.Info("connected", "url", c.cfg.URL)
		c.emitEvent(Event{Type: EventConnected})
	}
}

func (c *Client) rejoinRooms(tr transport.Transport) {
	for _, room := range c.rooms.PendingRejoin() {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandshakeTimeout)
		_, err := tr.Send(ctx, transport.Envelope{Event: transport.EventJoinRoom, Room: room})
		cancel()
		if err != nil {
			c.log.Warn("room rejoin failed", "room", room, "error", err)
			return
		}
		c.rooms.MarkJoined(room)
		c.log.Info("rejoined room", "room", room)
		c.emitEvent(Event{Type: EventRoomJoined, Room: room})
	}
}

func (c *Client) flushOutbox(tr transport.Transport) {
	pending := c.outbox.Drain()
	for i, p := range pending {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandshakeTimeout)
		n, err := tr.Send(ctx, transport.Envelope{Event: p.Event, Room: p.Room, Data: p.Data})
		cancel()
		if err != nil {
			// Put the unsent tail back so nothing is lost; the transport
			// failure will surface through the read loop.
			c.log.Warn("outbox flush interrupted", "error", err, "remaining", len(pending)-i)
			for _, rest := range pending[i:] {
				if qerr := c.outbox.Enqueue(rest); qerr != nil {
					c.log.Warn("dropping queued message", "event", rest.Event, "error", qerr)
				}
			}
			return
		}
		c.stats.RecordSent(n)
		c.emitEvent(Event{Type: EventMessageSent, Name: p.Event, Room: p.Room})
	}
	if len(pending) > 0 {
		c.log.Info("flushed offline buffer", "messages", len(pending))
	}
}

func (c *Client) sendHeartbeat(tr transport.Transport) {
	ctx, cancel := context.WithTimeout(context.Background(), heartbeatTimeout)
	defer cancel()
	if _, err := tr.Send(ctx, transport.Envelope{Event: transport.EventPing}); err != nil {
		c.log.Debug("heartbeat send failed", "error", err)
	}
}

// readLoop consumes inbound messages until the transport ends, then reports
// any fatal error. gen guards against a stale loop acting after the client
// has already moved to a newer transport.
func (c *Client) readLoop(tr transport.Transport, gen int) {
	defer c.wg.Done()

	for in := range tr.Messages() {
		c.handleInbound(tr, in)
	}

	var err error
	select {
	case err = <-tr.Errors():
	default:
	}
	if err != nil {
		c.handleTransportFailure(gen, err)
	}
}

func (c *Client) handleInbound(tr transport.Transport, in transport.Inbound) {
	c.hb.Touch()
	c.stats.RecordReceived(in.Size)

	env := in.Envelope
	if env.ID != "" {
		if env.Event == transport.EventError {
			if c.corr.Reject(env.ID, parseServerError(env.Data)) {
				return
			}
		} else if c.corr.Resolve(env.ID, env.Data) {
			return
		}
		// Unknown correlation id: the request already timed out or was
		// rejected. Fall through so the message is not silently lost.
	}

	switch env.Event {
	case transport.EventPong:
		// Liveness already recorded above.
	case transport.EventPing:
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), heartbeatTimeout)
			defer cancel()
			_, _ = tr.Send(ctx, transport.Envelope{Event: transport.EventPong})
		}()
	case transport.EventError:
		serr := parseServerError(env.Data)
		c.log.Warn("server error", "code", serr.Code, "message", serr.Message)
		c.emitEvent(Event{Type: EventServerError, Err: serr})
	case transport.EventRoomJoined:
		if c.rooms.MarkJoined(env.Room) {
			c.emitEvent(Event{Type: EventRoomJoined, Room: env.Room})
		}
	case transport.EventRoomLeft:
		if c.rooms.Remove(env.Room) {
			c.emitEvent(Event{Type: EventRoomLeft, Room: env.Room})
		}
	case transport.EventRoomMessage:
		c.emitEvent(Event{Type: EventRoomMessage, Room: env.Room, Data: env.Data})
	default:
		c.emitEvent(Event{Type: EventMessageReceived, Name: env.Event, Room: env.Room, Data: env.Data})
	}
}

func (c *Client) handleTransportFailure(gen int, err error) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	tr := c.tr
	c.tr = nil
	c.gen++
	c.mu.Unlock()

	if tr != nil {
		_ = tr.Close()
	}
	c.hb.Stop()
	c.stats.MarkDisconnected()
	c.rooms.MarkAllPending()
	c.corr.RejectAll(&TransportError{Op: "read", Err: err})

	c.log.Warn("connection lost", "error", err)

	c.mu.Lock()
	_ = c.machine.Fire(context.Background(), state.TriggerConnectionLost)
	c.mu.Unlock()
	c.emitEvent(Event{Type: EventDisconnected, Err: err})

	if !c.cfg.Reconnection {
		c.mu.Lock()
		_ = c.machine.Fire(context.Background(), state.TriggerDisconnect)
		c.mu.Unlock()
		return
	}
	c.scheduleReconnect()
}

func (c *Client) scheduleReconnect() {
	attempt, delay, ok := c.sched.Schedule(c.attemptReconnect)
	if !ok {
		c.log.Error("reconnection attempts exhausted", "attempts", attempt)
		c.mu.Lock()
		_ = c.machine.Fire(context.Background(), state.TriggerAttemptsExhausted)
		c.mu.Unlock()
		c.emitEvent(Event{Type: EventReconnectFailed, Attempt: attempt})
		return
	}

	c.stats.SetReconnectAttempts(attempt)
	if c.diag != nil {
		if err := c.diag.LogAttempt(context.Background(), attempt, delay, nil); err != nil {
			c.log.Warn("failed to record reconnect attempt", "error", err)
		}
	}
	c.log.Info("reconnecting", "attempt", attempt, "delay", delay)
	c.emitEvent(Event{Type: EventReconnecting, Attempt: attempt, Delay: delay})
}

func (c *Client) attemptReconnect(attempt int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	switch c.machine.MustState() {
	case state.StateError, state.StateReconnecting:
		_ = c.machine.Fire(context.Background(), state.TriggerRetry)
	default:
		// A disconnect or a successful connect won the race.
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandshakeTimeout)
	defer cancel()

	tr, err := c.dialOnce(ctx)
	if err != nil {
		c.mu.Lock()
		_ = c.machine.Fire(context.Background(), state.TriggerConnectFailed)
		c.mu.Unlock()

		terr := &TransportError{Op: "reconnect", Err: err}
		c.log.Warn("reconnect attempt failed", "attempt", attempt, "error", err)
		if c.diag != nil {
			if derr := c.diag.LogAttempt(context.Background(), attempt, 0, err); derr != nil {
				c.log.Warn("failed to record reconnect attempt", "error", derr)
			}
		}
		c.emitEvent(Event{Type: EventConnectionError, Err: terr, Attempt: attempt})
		c.scheduleReconnect()
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = tr.Close()
		return
	}
	if err := c.machine.Fire(context.Background(), state.TriggerReconnected); err != nil {
		// Disconnect won the race while the dial was in flight.
		c.mu.Unlock()
		_ = tr.Close()
		return
	}
	c.attachLocked(tr)
	c.mu.Unlock()

	c.afterConnect(tr, attempt)
}

func (c *Client) emitEvent(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	c.eventsMu.Lock()
	defer c.eventsMu.Unlock()
	if c.eventsClosed {
		return
	}
	select {
	case c.events <- ev:
	default:
		c.log.Warn("event buffer full, dropping event", "type", ev.Type)
	}
}

func (c *Client) processEvents() {
	defer c.wg.Done()
	for ev := range c.events {
		c.dispatch(ev)
	}
}

func (c *Client) dispatch(ev Event) {
	c.handlersMu.Lock()
	var bucket map[int]*handlerEntry
	if ev.Type == EventMessageReceived {
		bucket = c.messages[ev.Name]
	} else {
		bucket = c.lifecycle[ev.Type]
	}

	ids := make([]int, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		entry := bucket[id]
		handlers = append(handlers, entry.fn)
		if entry.once {
			delete(bucket, id)
		}
	}
	c.handlersMu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func marshalPayload(payload any) (json.RawMessage, error) {
	if payload == nil {
		return nil, nil
	}
	if raw, ok := payload.(json.RawMessage); ok {
		return raw, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return data, nil
}

func parseServerError(data json.RawMessage) *ServerError {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || (payload.Code == "" && payload.Message == "") {
		return &ServerError{Code: "unknown", Message: string(data)}
	}
	return &ServerError{Code: payload.Code, Message: payload.Message}
}
