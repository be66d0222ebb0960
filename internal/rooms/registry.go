// Package rooms tracks logical sub-channel membership and rejoin intent.
package rooms

import (
	"sort"
	"sync"
	"time"
)

// Membership records a single room the caller has joined.
type Membership struct {
	Name     string
	Joined   bool
	JoinedAt time.Time
}

// Registry tracks joined rooms so they can be transparently rejoined after a
// reconnect. Membership changes take effect only while connected; the
// connection manager enforces that.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Membership
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Membership)}
}

// MarkJoined records a room as currently joined. Returns false if the room
// was already marked joined.
func (r *Registry) MarkJoined(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.rooms[name]
	if ok && m.Joined {
		return false
	}
	if !ok {
		m = &Membership{Name: name}
		r.rooms[name] = m
	}
	m.Joined = true
	m.JoinedAt = time.Now()
	return true
}

// Remove drops a room from the registry. Returns false if it was not tracked.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[name]; !ok {
		return false
	}
	delete(r.rooms, name)
	return true
}

// MarkAllPending flags every tracked room for rejoin after the next connect.
func (r *Registry) MarkAllPending() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.rooms {
		m.Joined = false
	}
}

// PendingRejoin returns the rooms awaiting rejoin, sorted for deterministic
// rejoin order.
func (r *Registry) PendingRejoin() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []string
	for name, m := range r.rooms {
		if !m.Joined {
			pending = append(pending, name)
		}
	}
	sort.Strings(pending)
	return pending
}

// List returns the names of all tracked rooms, sorted.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.rooms))
	for name := range r.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains returns true if the room is tracked.
func (r *Registry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[name]
	return ok
}

// Clear drops all memberships.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = make(map[string]*Membership)
}

// Len returns the number of tracked rooms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
