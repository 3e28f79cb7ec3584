package core

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Entry is a registry mapping from a user to the connection serving it.
type Entry struct {
	UserID int64
	Conn   Conn
}

// Registry maps each online user to its single live connection.
// Safe for concurrent use; no method holds the lock while talking to a
// connection.
type Registry struct {
	mu    sync.RWMutex
	conns map[int64]Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[int64]Conn)}
}

// Register stores conn for userID, replacing any previous connection.
// The replaced connection, if any, is returned.
func (r *Registry) Register(userID int64, conn Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.conns[userID]
	r.conns[userID] = conn
	return prev
}

// Unregister removes the entry for userID only if it still points at conn.
// It reports whether an entry was removed.
func (r *Registry) Unregister(userID int64, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.conns[userID]
	if !ok || cur.ID() != conn.ID() {
		return false
	}
	delete(r.conns, userID)
	return true
}

// Lookup returns the live connection of userID.
func (r *Registry) Lookup(userID int64) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[userID]
	return conn, ok
}

// Len returns the number of online users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

// UserIDs returns the online user IDs in ascending order.
func (r *Registry) UserIDs() []int64 {
	r.mu.RLock()
	ids := lo.Keys(r.conns)
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// Snapshot copies the current entries so callers can talk to the
// connections without holding the registry lock.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.MapToSlice(r.conns, func(userID int64, conn Conn) Entry {
		return Entry{UserID: userID, Conn: conn}
	})
}
