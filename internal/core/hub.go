package core

import (
	"github.com/rs/zerolog"
)

// Hub owns the live connection state of the process: the registry and
// the presence broadcaster that reports its changes.
type Hub struct {
	registry *Registry
	presence *Presence
	log      *zerolog.Logger
}

// NewHub creates a hub with an empty registry.
func NewHub(logger *zerolog.Logger) *Hub {
	registry := NewRegistry()
	return &Hub{
		registry: registry,
		presence: NewPresence(registry, logger),
		log:      logger,
	}
}

// Registry exposes the hub's connection registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Connect registers an authenticated connection and announces the user
// as online. A previous connection of the same user is replaced, not closed.
func (h *Hub) Connect(userID int64, conn Conn) {
	if prev := h.registry.Register(userID, conn); prev != nil {
		h.log.Debug().
			Int64("user_id", userID).
			Str("conn_id", conn.ID()).
			Str("replaced_conn_id", prev.ID()).
			Msg("connection replaced")
	}
	h.log.Info().Int64("user_id", userID).Str("conn_id", conn.ID()).Msg("user connected")
	h.presence.Announce(userID, true)
}

// Disconnect removes the connection and announces the user as offline.
// Nothing happens if conn has already been removed or replaced, so
// repeated calls for the same handle are harmless.
func (h *Hub) Disconnect(userID int64, conn Conn) {
	if !h.registry.Unregister(userID, conn) {
		h.log.Debug().Int64("user_id", userID).Str("conn_id", conn.ID()).Msg("stale disconnect ignored")
		return
	}
	h.log.Info().Int64("user_id", userID).Str("conn_id", conn.ID()).Msg("user disconnected")
	h.presence.Announce(userID, false)
}

// Shutdown closes every live connection. Each connection's own teardown
// then unregisters it.
func (h *Hub) Shutdown() {
	entries := h.registry.Snapshot()
	for _, e := range entries {
		e.Conn.Close("server shutting down")
	}
	if len(entries) > 0 {
		h.log.Info().Int("connections", len(entries)).Msg("closed live connections")
	}
}
