package state

// Trigger represents an event that causes a state transition.
type Trigger string

const (
	TriggerConnect           Trigger = "connect"
	TriggerHandshakeOK       Trigger = "handshake_ok"
	TriggerConnectFailed     Trigger = "connect_failed"
	TriggerConnectionLost    Trigger = "connection_lost"
	TriggerRetry             Trigger = "retry"
	TriggerReconnected       Trigger = "reconnected"
	TriggerAttemptsExhausted Trigger = "attempts_exhausted"
	TriggerDisconnect        Trigger = "disconnect"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
