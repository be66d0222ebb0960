// Package heartbeat provides a periodic liveness probe for the connection.
package heartbeat

import (
	"log/slog"
	"sync"
	"time"
)

// Monitor sends a liveness probe at a fixed interval while the connection is
// up and records the last observed activity. It never forces a reconnect on
// its own; the transport surfaces actual failures.
type Monitor struct {
	interval time.Duration
	log      *slog.Logger

	mu           sync.Mutex
	stop         chan struct{}
	lastActivity time.Time
	wg           sync.WaitGroup
}

// NewMonitor creates a heartbeat monitor with the given probe interval.
func NewMonitor(interval time.Duration, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{interval: interval, log: log}
}

// Start begins probing. probe is invoked on every tick; it must not block.
// Starting an already-running monitor is a no-op.
func (m *Monitor) Start(probe func()) {
	m.mu.Lock()
	if m.stop != nil {
		m.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	m.stop = stop
	m.lastActivity = time.Now()
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				probe()
			}
		}
	}()

	m.log.Debug("heartbeat started", "interval", m.interval)
}

// Stop halts probing. Safe to call when not running; must be called on every
// exit from the connected state so no timer outlives the connection.
func (m *Monitor) Stop() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	m.wg.Wait()
	m.log.Debug("heartbeat stopped")
}

// Running reports whether the monitor is probing.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop != nil
}

// Touch records activity on the connection, typically on any inbound frame
// or a heartbeat acknowledgment.
func (m *Monitor) Touch() {
	m.mu.Lock()
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

// LastActivity returns the time of the last observed activity.
func (m *Monitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}
