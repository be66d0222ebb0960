// Package metrics tracks connection counters exposed as read-only snapshots.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is a point-in-time, read-only view of connection metrics.
type Snapshot struct {
	MessagesSent      int64         `json:"messages_sent"`
	MessagesReceived  int64         `json:"messages_received"`
	BytesSent         int64         `json:"bytes_sent"`
	BytesReceived     int64         `json:"bytes_received"`
	Uptime            time.Duration `json:"uptime"`
	ConnectedAt       time.Time     `json:"connected_at"`
	ReconnectAttempts int           `json:"reconnect_attempts"`
	QueuedMessages    int           `json:"queued_messages"`
}

// Collector accumulates connection metrics. Reading never mutates state.
type Collector struct {
	messagesSent     atomic.Int64
	messagesReceived atomic.Int64
	bytesSent        atomic.Int64
	bytesReceived    atomic.Int64

	mu                sync.RWMutex
	connectedAt       time.Time
	reconnectAttempts int
	queuedFn          func() int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// SetQueuedFunc installs the gauge used to report the pending-queue depth.
func (c *Collector) SetQueuedFunc(fn func() int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queuedFn = fn
}

// RecordSent records one outbound message of the given size.
func (c *Collector) RecordSent(bytes int) {
	c.messagesSent.Add(1)
	c.bytesSent.Add(int64(bytes))
}

// RecordReceived records one inbound message of the given size.
func (c *Collector) RecordReceived(bytes int) {
	c.messagesReceived.Add(1)
	c.bytesReceived.Add(int64(bytes))
}

// MarkConnected resets the uptime baseline and the reconnect-attempt count;
// called on every successful connection.
func (c *Collector) MarkConnected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectedAt = time.Now()
	c.reconnectAttempts = 0
}

// MarkDisconnected clears the uptime baseline.
func (c *Collector) MarkDisconnected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectedAt = time.Time{}
}

// SetReconnectAttempts records the current attempt count of the reconnect cycle.
func (c *Collector) SetReconnectAttempts(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconnectAttempts = n
}

// Snapshot returns the current metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	connectedAt := c.connectedAt
	attempts := c.reconnectAttempts
	queuedFn := c.queuedFn
	c.mu.RUnlock()

	var uptime time.Duration
	if !connectedAt.IsZero() {
		uptime = time.Since(connectedAt)
	}

	queued := 0
	if queuedFn != nil {
		queued = queuedFn()
	}

	return Snapshot{
		MessagesSent:      c.messagesSent.Load(),
		MessagesReceived:  c.messagesReceived.Load(),
		BytesSent:         c.bytesSent.Load(),
		BytesReceived:     c.bytesReceived.Load(),
		Uptime:            uptime,
		ConnectedAt:       connectedAt,
		ReconnectAttempts: attempts,
		QueuedMessages:    queued,
	}
}
