package heartbeat

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_ProbesAtInterval(t *testing.T) {
	m := NewMonitor(10*time.Millisecond, nil)
	t.Cleanup(m.Stop)

	var probes atomic.Int64
	m.Start(func() { probes.Add(1) })

	require.Eventually(t, func() bool {
		return probes.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestMonitor_StopHaltsProbing(t *testing.T) {
	m := NewMonitor(5*time.Millisecond, nil)

	var probes atomic.Int64
	m.Start(func() { probes.Add(1) })

	time.Sleep(20 * time.Millisecond)
	m.Stop()
	assert.False(t, m.Running())

	settled := probes.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, probes.Load())
}

func TestMonitor_StartIdempotent(t *testing.T) {
	m := NewMonitor(5*time.Millisecond, nil)
	t.Cleanup(m.Stop)

	var first, second atomic.Int64
	m.Start(func() { first.Add(1) })
	m.Start(func() { second.Add(1) }) // ignored, already running

	time.Sleep(25 * time.Millisecond)
	assert.Greater(t, first.Load(), int64(0))
	assert.Equal(t, int64(0), second.Load())
}

func TestMonitor_StopWhenNotRunning(t *testing.T) {
	m := NewMonitor(time.Second, nil)
	m.Stop() // must not panic
	m.Stop()
}

func TestMonitor_Touch(t *testing.T) {
	m := NewMonitor(time.Second, nil)

	before := m.LastActivity()
	time.Sleep(5 * time.Millisecond)
	m.Touch()
	assert.True(t, m.LastActivity().After(before))
}
