// Package state provides the finite state machine for the realtime connection lifecycle.
package state

// State represents a connection state in the client lifecycle.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateError        State = "error"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsActive returns true if the client holds or is establishing a transport.
func (s State) IsActive() bool {
	switch s {
	case StateConnecting, StateConnected, StateReconnecting:
		return true
	default:
		return false
	}
}

// IsOperational returns true if messages can be sent immediately.
func (s State) IsOperational() bool {
	return s == StateConnected
}
