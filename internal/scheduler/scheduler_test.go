package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_DelaysGrowAndCap(t *testing.T) {
	s := New(100*time.Millisecond, 1*time.Second, 0, nil)

	// delay = min(base * 2^n, max) with +/-30% jitter.
	expected := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1 * time.Second,
		1 * time.Second,
	}

	for i, want := range expected {
		attempt, delay, ok := s.Schedule(func(int) {})
		s.Cancel() // inspect delays only, don't fire
		require.True(t, ok)
		assert.Equal(t, i+1, attempt)

		low := time.Duration(float64(want) * 0.69)
		high := time.Duration(float64(want) * 1.31)
		assert.GreaterOrEqual(t, delay, low, "attempt %d", attempt)
		assert.LessOrEqual(t, delay, high, "attempt %d", attempt)
	}
}

func TestScheduler_MaxAttempts(t *testing.T) {
	s := New(time.Millisecond, 10*time.Millisecond, 3, nil)

	for i := 1; i <= 3; i++ {
		attempt, _, ok := s.Schedule(func(int) {})
		s.Cancel()
		require.True(t, ok)
		assert.Equal(t, i, attempt)
	}

	_, _, ok := s.Schedule(func(int) {})
	assert.False(t, ok)
	assert.Equal(t, 3, s.Attempt())
}

func TestScheduler_TimerFires(t *testing.T) {
	s := New(time.Millisecond, 10*time.Millisecond, 0, nil)

	fired := make(chan int, 1)
	_, _, ok := s.Schedule(func(attempt int) { fired <- attempt })
	require.True(t, ok)

	select {
	case attempt := <-fired:
		assert.Equal(t, 1, attempt)
	case <-time.After(time.Second):
		t.Fatal("scheduled attempt never fired")
	}
}

func TestScheduler_CancelPreventsFire(t *testing.T) {
	s := New(10*time.Millisecond, 100*time.Millisecond, 0, nil)

	var mu sync.Mutex
	fires := 0
	_, delay, ok := s.Schedule(func(int) {
		mu.Lock()
		fires++
		mu.Unlock()
	})
	require.True(t, ok)

	s.Cancel()
	time.Sleep(delay + 50*time.Millisecond)

	mu.Lock()
	assert.Equal(t, 0, fires)
	mu.Unlock()
}

func TestScheduler_ResetRestartsBackoff(t *testing.T) {
	s := New(100*time.Millisecond, time.Second, 5, nil)

	for i := 0; i < 3; i++ {
		_, _, ok := s.Schedule(func(int) {})
		s.Cancel()
		require.True(t, ok)
	}

	s.Reset()
	assert.Equal(t, 0, s.Attempt())

	attempt, delay, ok := s.Schedule(func(int) {})
	s.Cancel()
	require.True(t, ok)
	assert.Equal(t, 1, attempt)
	assert.LessOrEqual(t, delay, 131*time.Millisecond)
}
