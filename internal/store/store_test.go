package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminsuite/realtime-client/internal/state"
)

func setupStore(t *testing.T) *DiagnosticsStore {
	s, err := NewDiagnosticsStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDiagnosticsStore_LogTransition(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.LogTransition(ctx, state.StateDisconnected, state.StateConnecting, "connect"))
	require.NoError(t, s.LogTransition(ctx, state.StateConnecting, state.StateConnected, "handshake_ok"))

	history, err := s.TransitionHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Newest first.
	assert.Equal(t, state.StateConnecting, history[0].FromState)
	assert.Equal(t, state.StateConnected, history[0].ToState)
	assert.Equal(t, "handshake_ok", history[0].Trigger)
	assert.Equal(t, state.StateDisconnected, history[1].FromState)
}

func TestDiagnosticsStore_TransitionHistoryLimit(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.LogTransition(ctx, state.StateConnected, state.StateReconnecting, "connection_lost"))
	}

	history, err := s.TransitionHistory(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestDiagnosticsStore_LogAttempt(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.LogAttempt(ctx, 1, 100*time.Millisecond, nil))
	require.NoError(t, s.LogAttempt(ctx, 2, 200*time.Millisecond, errors.New("dial refused")))

	attempts, err := s.AttemptHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 2)

	assert.Equal(t, 2, attempts[0].Attempt)
	assert.Equal(t, 200*time.Millisecond, attempts[0].Delay)
	assert.Equal(t, "dial refused", attempts[0].Error)
	assert.Equal(t, "", attempts[1].Error)
}
