// Package correlator matches outbound requests to asynchronous responses.
package correlator

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Result is the settled outcome of a correlated request. Exactly one of Data
// or Err is meaningful.
type Result struct {
	Data json.RawMessage
	Err  error
}

type pending struct {
	ch    chan Result
	timer *time.Timer
}

// Correlator tracks in-flight requests by correlation id. Every pending
// request settles exactly once: on a matching response, on its deadline, or
// on forced teardown. Deadline timers are always stopped on settlement.
type Correlator struct {
	mu      sync.Mutex
	pending map[string]*pending
}

// New creates an empty correlator.
func New() *Correlator {
	return &Correlator{pending: make(map[string]*pending)}
}

// Create registers a new pending request and returns its correlation id and
// result channel. When timeout elapses without settlement, the request is
// rejected with timeoutErr.
func (c *Correlator) Create(timeout time.Duration, timeoutErr error) (string, <-chan Result) {
	id := uuid.NewString()
	p := &pending{ch: make(chan Result, 1)}

	// The timer is set before the entry is published so a settlement racing
	// this call always sees it and can stop it.
	c.mu.Lock()
	p.timer = time.AfterFunc(timeout, func() {
		c.settle(id, Result{Err: timeoutErr})
	})
	c.pending[id] = p
	c.mu.Unlock()

	return id, p.ch
}

// Resolve settles the request with response data. Returns false if the id is
// unknown or already settled.
func (c *Correlator) Resolve(id string, data json.RawMessage) bool {
	return c.settle(id, Result{Data: data})
}

// Reject settles the request with an error. Returns false if the id is
// unknown or already settled.
func (c *Correlator) Reject(id string, err error) bool {
	return c.settle(id, Result{Err: err})
}

// RejectAll fails every outstanding request, used on disconnect so callers
// fail fast instead of waiting out their deadlines.
func (c *Correlator) RejectAll(err error) {
	c.mu.Lock()
	all := c.pending
	c.pending = make(map[string]*pending)
	c.mu.Unlock()

	for _, p := range all {
		if p.timer != nil {
			p.timer.Stop()
		}
		p.ch <- Result{Err: err}
	}
}

// Len returns the number of outstanding requests.
func (c *Correlator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Correlator) settle(id string, res Result) bool {
	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.ch <- res
	return true
}
