package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMachine(t *testing.T) {
	m := NewMachine()
	require.NotNil(t, m)

	state, err := m.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateDisconnected, state)
}

func TestMachine_ConnectFlow(t *testing.T) {
	ctx := context.Background()
	m := NewMachine()

	err := m.Fire(ctx, TriggerConnect)
	require.NoError(t, err)
	state, _ := m.State(ctx)
	assert.Equal(t, StateConnecting, state)

	err = m.Fire(ctx, TriggerHandshakeOK)
	require.NoError(t, err)
	state, _ = m.State(ctx)
	assert.Equal(t, StateConnected, state)
}

func TestMachine_ConnectFailure(t *testing.T) {
	ctx := context.Background()
	m := NewMachine()

	_ = m.Fire(ctx, TriggerConnect)

	err := m.Fire(ctx, TriggerConnectFailed)
	require.NoError(t, err)
	state, _ := m.State(ctx)
	assert.Equal(t, StateError, state)

	// Backoff timer fires -> Reconnecting
	err = m.Fire(ctx, TriggerRetry)
	require.NoError(t, err)
	state, _ = m.State(ctx)
	assert.Equal(t, StateReconnecting, state)

	// Reconnect succeeds -> Connected
	err = m.Fire(ctx, TriggerReconnected)
	require.NoError(t, err)
	state, _ = m.State(ctx)
	assert.Equal(t, StateConnected, state)
}

func TestMachine_ConnectionLostFlow(t *testing.T) {
	ctx := context.Background()
	m := NewMachine()

	_ = m.Fire(ctx, TriggerConnect)
	_ = m.Fire(ctx, TriggerHandshakeOK)

	err := m.Fire(ctx, TriggerConnectionLost)
	require.NoError(t, err)
	state, _ := m.State(ctx)
	assert.Equal(t, StateReconnecting, state)

	// Failed attempt keeps reconnecting
	err = m.Fire(ctx, TriggerConnectFailed)
	require.NoError(t, err)
	state, _ = m.State(ctx)
	assert.Equal(t, StateReconnecting, state)

	err = m.Fire(ctx, TriggerReconnected)
	require.NoError(t, err)
	state, _ = m.State(ctx)
	assert.Equal(t, StateConnected, state)
}

func TestMachine_AttemptsExhausted(t *testing.T) {
	ctx := context.Background()
	m := NewMachine()

	_ = m.Fire(ctx, TriggerConnect)
	_ = m.Fire(ctx, TriggerHandshakeOK)
	_ = m.Fire(ctx, TriggerConnectionLost)

	err := m.Fire(ctx, TriggerAttemptsExhausted)
	require.NoError(t, err)
	state, _ := m.State(ctx)
	assert.Equal(t, StateDisconnected, state)
}

func TestMachine_DisconnectOverridesAnyState(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(m *Machine)
		fromState State
	}{
		{
			name: "from connecting",
			setupFunc: func(m *Machine) {
				_ = m.Fire(context.Background(), TriggerConnect)
			},
			fromState: StateConnecting,
		},
		{
			name: "from connected",
			setupFunc: func(m *Machine) {
				ctx := context.Background()
				_ = m.Fire(ctx, TriggerConnect)
				_ = m.Fire(ctx, TriggerHandshakeOK)
			},
			fromState: StateConnected,
		},
		{
			name: "from error",
			setupFunc: func(m *Machine) {
				ctx := context.Background()
				_ = m.Fire(ctx, TriggerConnect)
				_ = m.Fire(ctx, TriggerConnectFailed)
			},
			fromState: StateError,
		},
		{
			name: "from reconnecting",
			setupFunc: func(m *Machine) {
				ctx := context.Background()
				_ = m.Fire(ctx, TriggerConnect)
				_ = m.Fire(ctx, TriggerHandshakeOK)
				_ = m.Fire(ctx, TriggerConnectionLost)
			},
			fromState: StateReconnecting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m := NewMachine()
			tt.setupFunc(m)

			state, _ := m.State(ctx)
			assert.Equal(t, tt.fromState, state)

			err := m.Fire(ctx, TriggerDisconnect)
			require.NoError(t, err)

			state, _ = m.State(ctx)
			assert.Equal(t, StateDisconnected, state)
		})
	}
}

func TestMachine_InvalidTransition(t *testing.T) {
	ctx := context.Background()
	m := NewMachine()

	// Handshake success without a connect attempt is invalid.
	err := m.Fire(ctx, TriggerHandshakeOK)
	assert.Error(t, err)
}

func TestMachine_CanFire(t *testing.T) {
	ctx := context.Background()
	m := NewMachine()

	canConnect, err := m.CanFire(ctx, TriggerConnect)
	require.NoError(t, err)
	assert.True(t, canConnect)

	canLost, err := m.CanFire(ctx, TriggerConnectionLost)
	require.NoError(t, err)
	assert.False(t, canLost)
}

func TestMachine_OnTransitionCallback(t *testing.T) {
	ctx := context.Background()
	m := NewMachine()

	var transitions []struct {
		from    State
		to      State
		trigger Trigger
	}

	m.OnTransition(func(ctx context.Context, from, to State, trigger Trigger) {
		transitions = append(transitions, struct {
			from    State
			to      State
			trigger Trigger
		}{from, to, trigger})
	})

	_ = m.Fire(ctx, TriggerConnect)
	_ = m.Fire(ctx, TriggerHandshakeOK)

	assert.Len(t, transitions, 2)
	assert.Equal(t, StateDisconnected, transitions[0].from)
	assert.Equal(t, StateConnecting, transitions[0].to)
	assert.Equal(t, TriggerConnect, transitions[0].trigger)
}

func TestMachine_IsConnected(t *testing.T) {
	ctx := context.Background()
	m := NewMachine()

	assert.False(t, m.IsConnected())

	_ = m.Fire(ctx, TriggerConnect)
	_ = m.Fire(ctx, TriggerHandshakeOK)

	assert.True(t, m.IsConnected())
	assert.True(t, m.MustState().IsOperational())
}
