package core

import "github.com/rs/zerolog"

// Presence broadcasts online/offline transitions to live connections.
type Presence struct {
	registry *Registry
	log      *zerolog.Logger
}

// NewPresence creates a broadcaster over the given registry.
func NewPresence(registry *Registry, logger *zerolog.Logger) *Presence {
	return &Presence{registry: registry, log: logger}
}

// Announce pushes a presence event for userID. Online events skip the
// user's own connection; offline events go to everyone still registered.
// Delivery is best effort; it returns how many connections accepted it.
func (p *Presence) Announce(userID int64, online bool) int {
	ev := &Event{Kind: EventPresence, UserID: userID, Online: online}

	sent := 0
	for _, e := range p.registry.Snapshot() {
		if online && e.UserID == userID {
			continue
		}
		if err := e.Conn.Push(ev); err != nil {
			p.log.Debug().Err(err).
				Int64("user_id", e.UserID).
				Str("conn_id", e.Conn.ID()).
				Msg("presence push dropped")
			continue
		}
		sent++
	}
	return sent
}
