package realtime

import (
	"encoding/json"
	"time"
)

// State is the externally visible connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateError        State = "error"
)

// EventType identifies a lifecycle event emitted by the client.
type EventType string

const (
	// EventConnected fires after a fresh connection is established.
	EventConnected EventType = "connected"

	// EventDisconnected fires when the connection ends, whether by an
	// explicit Disconnect (Err is nil) or a transport failure (Err set).
	EventDisconnected EventType = "disconnected"

	// EventConnectionError fires on every failed connection attempt.
	EventConnectionError EventType = "connection_error"

	// EventReconnecting fires when a reconnection attempt is scheduled.
	EventReconnecting EventType = "reconnecting"

	// EventReconnected fires after a connection is re-established.
	EventReconnected EventType = "reconnected"

	// EventReconnectFailed fires when all reconnection attempts are exhausted.
	EventReconnectFailed EventType = "reconnect_failed"

	// EventStateChange fires on every state machine transition.
	EventStateChange EventType = "state_change"

	// EventRoomJoined and EventRoomLeft fire on room membership changes.
	EventRoomJoined EventType = "room_joined"
	EventRoomLeft   EventType = "room_left"

	// EventRoomMessage fires for messages addressed to a joined room.
	EventRoomMessage EventType = "room_message"

	// EventMessageSent fires after an outbound message is written.
	EventMessageSent EventType = "message_sent"

	// EventMessageReceived carries inbound domain messages; handlers are
	// registered per wire event name via OnMessage.
	EventMessageReceived EventType = "message"

	// EventServerError fires on uncorrelated server-reported errors.
	EventServerError EventType = "server_error"
)

// Event is delivered to registered handlers. Only the fields relevant to the
// event type are populated.
type Event struct {
	Type      EventType
	Name      string // wire event name, for EventMessageReceived and EventMessageSent
	Room      string
	Data      json.RawMessage
	Err       error
	Attempt   int
	Delay     time.Duration
	From      State
	To        State
	Timestamp time.Time
}

// Handler receives dispatched events. Handlers run on the client's dispatch
// goroutine and must not block.
type Handler func(Event)
