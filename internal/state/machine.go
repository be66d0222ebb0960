package state

import (
	"context"
	"sync"

	"github.com/qmuntal/stateless"
)

// TransitionCallback is called when a state transition occurs.
type TransitionCallback func(ctx context.Context, from, to State, trigger Trigger)

// Machine wraps the stateless state machine with connection-lifecycle behavior.
// The connection manager is the only component allowed to fire triggers.
type Machine struct {
	sm          *stateless.StateMachine
	callbacks   []TransitionCallback
	callbacksMu sync.RWMutex
}

// NewMachine creates a new state machine starting in Disconnected state.
func NewMachine() *Machine {
	m := &Machine{
		callbacks: make([]TransitionCallback, 0),
	}

	sm := stateless.NewStateMachine(StateDisconnected)

	sm.Configure(StateDisconnected).
		Permit(TriggerConnect, StateConnecting)

	sm.Configure(StateConnecting).
		Permit(TriggerHandshakeOK, StateConnected).
		Permit(TriggerConnectFailed, StateError).
		Permit(TriggerDisconnect, StateDisconnected)

	sm.Configure(StateConnected).
		Permit(TriggerConnectionLost, StateReconnecting).
		Permit(TriggerDisconnect, StateDisconnected)

	// Error is transient: a retry moves to Reconnecting once the backoff
	// timer fires; exhausted attempts or an explicit disconnect end the cycle.
	sm.Configure(StateError).
		Permit(TriggerRetry, StateReconnecting).
		Permit(TriggerAttemptsExhausted, StateDisconnected).
		Permit(TriggerDisconnect, StateDisconnected)

	sm.Configure(StateReconnecting).
		Permit(TriggerReconnected, StateConnected).
		PermitReentry(TriggerConnectFailed).
		PermitReentry(TriggerRetry).
		Permit(TriggerAttemptsExhausted, StateDisconnected).
		Permit(TriggerDisconnect, StateDisconnected)

	sm.OnTransitioned(func(ctx context.Context, t stateless.Transition) {
		m.callbacksMu.RLock()
		callbacks := make([]TransitionCallback, len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.callbacksMu.RUnlock()

		from := t.Source.(State)
		to := t.Destination.(State)
		trigger := t.Trigger.(Trigger)

		for _, cb := range callbacks {
			cb(ctx, from, to, trigger)
		}
	})

	m.sm = sm
	return m
}

// State returns the current state.
func (m *Machine) State(ctx context.Context) (State, error) {
	state, err := m.sm.State(ctx)
	if err != nil {
		return "", err
	}
	return state.(State), nil
}

// Fire triggers a state transition.
func (m *Machine) Fire(ctx context.Context, trigger Trigger, args ...any) error {
	return m.sm.FireCtx(ctx, trigger, args...)
}

// CanFire returns true if the trigger can be fired from the current state.
func (m *Machine) CanFire(ctx context.Context, trigger Trigger, args ...any) (bool, error) {
	return m.sm.CanFireCtx(ctx, trigger, args...)
}

// IsInState returns true if the machine is in the specified state.
func (m *Machine) IsInState(ctx context.Context, state State) (bool, error) {
	currentState, err := m.State(ctx)
	if err != nil {
		return false, err
	}
	return currentState == state, nil
}

// OnTransition registers a callback to be called on state transitions.
func (m *Machine) OnTransition(cb TransitionCallback) {
	m.callbacksMu.Lock()
	defer m.callbacksMu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

// MustState returns the current state, panicking on error.
func (m *Machine) MustState() State {
	state, err := m.State(context.Background())
	if err != nil {
		panic(err)
	}
	return state
}

// IsConnected returns true if the machine is in Connected state.
func (m *Machine) IsConnected() bool {
	return m.MustState() == StateConnected
}
