package correlator

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTimeout = errors.New("request timed out")

func TestCorrelator_Resolve(t *testing.T) {
	c := New()

	id, ch := c.Create(time.Second, errTimeout)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, c.Len())

	ok := c.Resolve(id, json.RawMessage(`{"ok":true}`))
	assert.True(t, ok)
	assert.Equal(t, 0, c.Len())

	res := <-ch
	require.NoError(t, res.Err)
	assert.JSONEq(t, `{"ok":true}`, string(res.Data))
}

func TestCorrelator_SettlesExactlyOnce(t *testing.T) {
	c := New()

	id, ch := c.Create(time.Second, errTimeout)
	assert.True(t, c.Resolve(id, nil))

	// Further settlements of the same id are rejected.
	assert.False(t, c.Resolve(id, nil))
	assert.False(t, c.Reject(id, errors.New("late")))

	res := <-ch
	assert.NoError(t, res.Err)
}

func TestCorrelator_Timeout(t *testing.T) {
	c := New()

	_, timedOut := c.Create(10*time.Millisecond, errTimeout)
	otherID, other := c.Create(time.Second, errTimeout)

	res := <-timedOut
	require.ErrorIs(t, res.Err, errTimeout)

	// The timeout of one request must not affect other pending requests.
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Resolve(otherID, json.RawMessage(`1`)))
	otherRes := <-other
	assert.NoError(t, otherRes.Err)
}

func TestCorrelator_Reject(t *testing.T) {
	c := New()

	id, ch := c.Create(time.Second, errTimeout)
	sendErr := errors.New("write failed")
	assert.True(t, c.Reject(id, sendErr))

	res := <-ch
	assert.ErrorIs(t, res.Err, sendErr)
}

func TestCorrelator_RejectAll(t *testing.T) {
	c := New()

	_, ch1 := c.Create(time.Second, errTimeout)
	_, ch2 := c.Create(time.Second, errTimeout)

	teardown := errors.New("connection closed")
	c.RejectAll(teardown)

	assert.Equal(t, 0, c.Len())
	assert.ErrorIs(t, (<-ch1).Err, teardown)
	assert.ErrorIs(t, (<-ch2).Err, teardown)
}

func TestCorrelator_ConcurrentCreateAndTeardown(t *testing.T) {
	c := New()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			c.RejectAll(errors.New("connection closed"))
		}
	}()

	for i := 0; i < 200; i++ {
		id, _ := c.Create(time.Second, errTimeout)
		c.Resolve(id, nil)
	}
	<-done

	c.RejectAll(errors.New("connection closed"))
	assert.Equal(t, 0, c.Len())
}

func TestCorrelator_UnknownID(t *testing.T) {
	c := New()
	assert.False(t, c.Resolve("missing", nil))
	assert.False(t, c.Reject("missing", errors.New("nope")))
}
