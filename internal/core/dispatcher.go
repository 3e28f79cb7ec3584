package core

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/wirechat-relay/internal/store"
)

// Dispatcher persists messages sent over live connections and fans them
// out to the recipients that are currently online.
type Dispatcher struct {
	gate     *Gate
	store    store.MessageStore
	registry *Registry
	log      *zerolog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(gate *Gate, st store.MessageStore, registry *Registry, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		gate:     gate,
		store:    st,
		registry: registry,
		log:      logger,
	}
}

// Receipt is the result of a successful Send. Message is what the sender
// is acknowledged with; Fanout delivers it to the recipients.
type Receipt struct {
	Message *store.Message

	d      *Dispatcher
	sender Conn
}

// Send authenticates the sender again, validates the request and persists
// the message. Once Send returns a receipt the message is durable; the
// caller acknowledges the sender and then calls Fanout.
//
// An ErrCodeUnauthorized error means the connection must be closed.
func (d *Dispatcher) Send(ctx context.Context, sender Conn, req SendRequest) (*Receipt, error) {
	id, err := d.gate.Authenticate(sender.Handshake())
	if err != nil {
		return nil, coreError(ErrCodeUnauthorized, "authentication required", err)
	}

	if err := req.validate(); err != nil {
		return nil, coreError(ErrCodeBadRequest, "invalid message", err)
	}

	exists, err := d.store.TargetExists(ctx, req.Type, req.Target)
	if err != nil {
		d.log.Error().Err(err).Int64("user_id", id.UserID).Msg("target lookup failed")
		return nil, coreError(ErrCodePersistenceFailed, "message could not be stored", err)
	}
	if !exists {
		return nil, coreError(ErrCodeInvalidTarget, "the user or group does not exist", nil)
	}

	if req.ReferenceID != nil {
		exists, err := d.store.MessageExists(ctx, *req.ReferenceID)
		if err != nil {
			d.log.Error().Err(err).Int64("user_id", id.UserID).Msg("reference lookup failed")
			return nil, coreError(ErrCodePersistenceFailed, "message could not be stored", err)
		}
		if !exists {
			return nil, coreError(ErrCodeBadRequest, "referenced message does not exist", nil)
		}
	}

	stored, err := d.store.CreateMessage(ctx, &store.NewMessage{
		FromUserID:  id.UserID,
		FromName:    id.DisplayName,
		Type:        req.Type,
		Target:      req.Target,
		ContentType: req.contentType(),
		Content:     req.Content,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		d.log.Error().Err(err).Int64("user_id", id.UserID).Msg("message creation failed")
		return nil, coreError(ErrCodePersistenceFailed, "message could not be stored", err)
	}

	return &Receipt{Message: stored, d: d, sender: sender}, nil
}

// Fanout pushes the stored message to every online recipient except the
// sending connection. Offline recipients and failed pushes are skipped.
// It returns the number of connections the message was handed to.
func (r *Receipt) Fanout(ctx context.Context) int {
	return r.d.fanout(ctx, r.sender, r.Message)
}

func (d *Dispatcher) fanout(ctx context.Context, sender Conn, msg *store.Message) int {
	ev := &Event{Kind: EventMessage, Message: msg}

	delivered := 0
	for _, userID := range d.recipients(ctx, msg) {
		conn, ok := d.registry.Lookup(userID)
		if !ok || conn.ID() == sender.ID() {
			continue
		}
		if err := conn.Push(ev); err != nil {
			d.log.Debug().Err(err).
				Int64("message_id", msg.ID).
				Int64("user_id", userID).
				Msg("message push dropped")
			continue
		}
		delivered++
	}
	return delivered
}

// recipients resolves the message's recipient set at dispatch time.
func (d *Dispatcher) recipients(ctx context.Context, msg *store.Message) []int64 {
	if msg.Type != store.AddressGroup {
		return []int64{msg.Target}
	}

	members, err := d.store.GroupMemberIDs(ctx, msg.Target)
	if err != nil {
		d.log.Warn().Err(err).
			Int64("message_id", msg.ID).
			Int64("group_id", msg.Target).
			Msg("group member lookup failed, message not fanned out")
		return nil
	}
	return lo.Without(lo.Uniq(members), msg.FromUserID)
}
