// Package queue buffers outbound messages while the client is disconnected.
package queue

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ErrFull is returned when the queue has reached its configured limit.
var ErrFull = errors.New("message queue full")

// Pending is an outbound message awaiting delivery.
type Pending struct {
	Event      string
	Room       string
	Data       json.RawMessage
	EnqueuedAt time.Time
}

// Queue is a bounded FIFO buffer of pending messages. Callers enqueue only
// while disconnected; the connection manager drains it exactly once per
// reconnection cycle, preserving submission order.
type Queue struct {
	mu    sync.Mutex
	items []Pending
	limit int
}

// New creates a queue bounded at limit messages.
func New(limit int) *Queue {
	return &Queue{limit: limit}
}

// Enqueue appends a message, failing when the queue is at its limit.
func (q *Queue) Enqueue(p Pending) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.limit {
		return ErrFull
	}
	if p.EnqueuedAt.IsZero() {
		p.EnqueuedAt = time.Now()
	}
	q.items = append(q.items, p)
	return nil
}

// Drain removes and returns all pending messages in FIFO order.
func (q *Queue) Drain() []Pending {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

// Clear discards all pending messages.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
