package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHub_ConnectAnnouncesToOthers(t *testing.T) {
	req := require.New(t)
	hub := NewHub(nopLogger())
	a := newFakeConn("a", "t")
	b := newFakeConn("b", "t")

	hub.Connect(7, a)
	hub.Connect(9, b)

	// a learns that 9 came online, b sees nothing about itself
	req.Len(a.presence(), 1)
	req.Equal(int64(9), a.presence()[0].UserID)
	req.True(a.presence()[0].Online)
	req.Empty(b.presence())
}

func TestHub_DisconnectAnnouncesOfflineOnce(t *testing.T) {
	req := require.New(t)
	hub := NewHub(nopLogger())
	a := newFakeConn("a", "t")
	b := newFakeConn("b", "t")
	c := newFakeConn("c", "t")

	hub.Connect(1, a)
	hub.Connect(2, b)
	hub.Connect(3, c)

	hub.Disconnect(2, b)
	hub.Disconnect(2, b) // repeated signal for the same handle

	_, ok := hub.Registry().Lookup(2)
	req.False(ok)

	for _, conn := range []*fakeConn{a, c} {
		var offline int
		for _, ev := range conn.presence() {
			if ev.UserID == 2 && !ev.Online {
				offline++
			}
		}
		req.Equal(1, offline, "conn %s", conn.ID())
	}
}

func TestHub_ReconnectKeepsSingleEntry(t *testing.T) {
	req := require.New(t)
	hub := NewHub(nopLogger())
	watcher := newFakeConn("w", "t")
	old := newFakeConn("old", "t")
	fresh := newFakeConn("fresh", "t")

	hub.Connect(1, watcher)
	hub.Connect(7, old)
	before := len(watcher.presence())

	// New connection arrives before the old one's disconnect is processed.
	hub.Connect(7, fresh)
	hub.Disconnect(7, old)

	req.Equal(2, hub.Registry().Len())
	got, ok := hub.Registry().Lookup(7)
	req.True(ok)
	req.Equal("fresh", got.ID())

	events := watcher.presence()[before:]
	req.Len(events, 1)
	req.Equal(int64(7), events[0].UserID)
	req.True(events[0].Online)
	req.Zero(old.closed)
}

func TestHub_DisconnectThenReconnect(t *testing.T) {
	req := require.New(t)
	hub := NewHub(nopLogger())
	watcher := newFakeConn("w", "t")
	old := newFakeConn("old", "t")
	fresh := newFakeConn("fresh", "t")

	hub.Connect(1, watcher)
	hub.Connect(7, old)
	before := len(watcher.presence())

	hub.Disconnect(7, old)
	hub.Connect(7, fresh)

	got, ok := hub.Registry().Lookup(7)
	req.True(ok)
	req.Equal("fresh", got.ID())

	events := watcher.presence()[before:]
	req.Len(events, 2)
	req.False(events[0].Online)
	req.True(events[1].Online)
}

func TestHub_FailingConnDoesNotBlockPresence(t *testing.T) {
	req := require.New(t)
	hub := NewHub(nopLogger())
	broken := newFakeConn("broken", "t")
	broken.fail = true
	healthy := newFakeConn("healthy", "t")

	hub.Connect(1, broken)
	hub.Connect(2, healthy)
	hub.Connect(3, newFakeConn("new", "t"))

	req.Len(healthy.presence(), 1)
	req.Equal(2, hub.presence.Announce(4, true))
}

func TestHub_ShutdownClosesConnections(t *testing.T) {
	req := require.New(t)
	hub := NewHub(nopLogger())
	a := newFakeConn("a", "t")
	b := newFakeConn("b", "t")
	hub.Connect(1, a)
	hub.Connect(2, b)

	hub.Shutdown()

	req.Equal(1, a.closed)
	req.Equal(1, b.closed)
}
