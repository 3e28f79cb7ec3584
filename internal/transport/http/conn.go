package http

import (
	"context"
	"errors"
	"sync"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

var (
	errConnClosed   = errors.New("connection closed")
	errSlowConsumer = errors.New("outbound queue full")
)

// wsConn is the core.Conn of a WebSocket client. Outbound frames are
// queued and written by the connection's write loop.
type wsConn struct {
	id        string
	userID    int64
	handshake core.Handshake

	out  chan proto.Outbound
	done chan struct{}

	closeOnce   sync.Once
	closeReason string
}

var _ core.Conn = (*wsConn)(nil)

func newWSConn(id string, userID int64, hs core.Handshake, buffer int) *wsConn {
	return &wsConn{
		id:        id,
		userID:    userID,
		handshake: hs,
		out:       make(chan proto.Outbound, buffer),
		done:      make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Handshake() core.Handshake { return c.handshake }

// Push queues an event without blocking; a full queue drops it.
func (c *wsConn) Push(ev *core.Event) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}

	select {
	case c.out <- outboundFromEvent(ev):
		return nil
	default:
		return errSlowConsumer
	}
}

// reply queues a direct response to the client, waiting for queue space.
func (c *wsConn) reply(ctx context.Context, ob proto.Outbound) error {
	select {
	case c.out <- ob:
		return nil
	case <-c.done:
		return errConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *wsConn) Close(reason string) {
	c.closeOnce.Do(func() {
		c.closeReason = reason
		close(c.done)
	})
}
