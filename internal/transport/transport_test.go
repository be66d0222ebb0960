package transport

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExpectedClose(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"context canceled", context.Canceled, true},
		{"normal closure", websocket.CloseError{Code: websocket.StatusNormalClosure}, true},
		{"going away", websocket.CloseError{Code: websocket.StatusGoingAway}, true},
		{"abnormal closure", websocket.CloseError{Code: websocket.StatusAbnormalClosure}, false},
		{"plain error", errors.New("broken pipe"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isExpectedClose(tt.err))
		})
	}
}

func TestEnvelope_OptionalFieldsOmitted(t *testing.T) {
	data, err := json.Marshal(Envelope{Event: "ping"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"ping"}`, string(data))

	data, err = json.Marshal(Envelope{
		Event: "notify",
		Room:  "alerts",
		ID:    "abc",
		Data:  json.RawMessage(`{"n":1}`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"notify","room":"alerts","id":"abc","data":{"n":1}}`, string(data))
}
