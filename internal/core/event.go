package core

import "github.com/vovakirdan/wirechat-relay/internal/store"

// EventKind is a notification the core pushes to clients.
type EventKind int

const (
	// EventMessage delivers a stored chat message to a recipient.
	EventMessage EventKind = iota
	// EventPresence announces that a user went online or offline.
	EventPresence
)

// Event is pushed to clients to describe what happened in the system.
// Events are shared between recipients and must not be mutated.
type Event struct {
	Kind    EventKind
	Message *store.Message // EventMessage
	UserID  int64          // EventPresence
	Online  bool           // EventPresence
}
