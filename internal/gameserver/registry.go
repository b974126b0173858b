// Package gameserver implements the session orchestration layer: the
// connection registry and the message dispatch state machine.
package gameserver

import (
	"context"
	"sync"
)

// Conn is the opaque handle to one client's bidirectional channel. A Conn is
// owned exclusively by the Registry once registered; identity is by reference.
type Conn interface {
	// Send writes one outbound frame to the client.
	Send(ctx context.Context, data []byte) error
}

// Registry tracks active connections in insertion order, giving broadcasts a
// deterministic delivery order. All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	active []Conn
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds conn to the active set.
//
// Postcondition: conn is present exactly once; re-registering is a no-op.
func (r *Registry) Register(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.active {
		if c == conn {
			return
		}
	}
	r.active = append(r.active, conn)
}

// Unregister removes conn from the active set, preserving the order of the
// remaining connections. A no-op if conn is absent, so a double disconnect
// is harmless.
func (r *Registry) Unregister(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.active {
		if c == conn {
			r.active = append(r.active[:i], r.active[i+1:]...)
			return
		}
	}
}

// SendDirect sends data to exactly one connection. A delivery error is
// surfaced to the caller; the connection stays registered.
func (r *Registry) SendDirect(ctx context.Context, conn Conn, data []byte) error {
	return conn.Send(ctx, data)
}

// Broadcast sends data to every connection present at call time. The active
// set is snapshotted first, so connections that unregister mid-broadcast do
// not corrupt iteration and connections that join after the snapshot are not
// delivered to. Individual delivery failures do not stop the fan-out.
//
// Postcondition: Returns the number of delivery attempts, equal to the
// snapshot size.
func (r *Registry) Broadcast(ctx context.Context, data []byte) int {
	r.mu.RLock()
	snapshot := make([]Conn, len(r.active))
	copy(snapshot, r.active)
	r.mu.RUnlock()

	for _, conn := range snapshot {
		// The failing connection's own receive loop observes the break
		// and unregisters it; nothing to do here.
		_ = conn.Send(ctx, data)
	}
	return len(snapshot)
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}
