package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterThenLookup(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	h := newFakeConn("h1", "t")

	// Given an empty registry
	_, ok := registry.Lookup(7)
	req.False(ok)

	// When a connection registers
	prev := registry.Register(7, h)

	// Then it can be looked up
	req.Nil(prev)
	got, ok := registry.Lookup(7)
	req.True(ok)
	req.Equal(h, got)
	req.Equal(1, registry.Len())
}

func TestRegistry_ReconnectReplaces(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	h1 := newFakeConn("h1", "t")
	h2 := newFakeConn("h2", "t")

	registry.Register(7, h1)
	prev := registry.Register(7, h2)

	req.Equal(h1, prev)
	req.Equal(1, registry.Len())
	got, _ := registry.Lookup(7)
	req.Equal(h2, got)
}

func TestRegistry_StaleUnregisterIsNoop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	h1 := newFakeConn("h1", "t")
	h2 := newFakeConn("h2", "t")

	// Given the user reconnected with h2
	registry.Register(7, h1)
	registry.Register(7, h2)

	// When the old handle disconnects
	removed := registry.Unregister(7, h1)

	// Then the new entry survives
	req.False(removed)
	got, ok := registry.Lookup(7)
	req.True(ok)
	req.Equal(h2, got)

	// And the current handle can still be removed, once
	req.True(registry.Unregister(7, h2))
	req.False(registry.Unregister(7, h2))
	_, ok = registry.Lookup(7)
	req.False(ok)
}

func TestRegistry_UserIDsSorted(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	for _, id := range []int64{9, 3, 7} {
		registry.Register(id, newFakeConn(fmt.Sprintf("c%d", id), "t"))
	}

	req.Equal([]int64{3, 7, 9}, registry.UserIDs())
	req.Len(registry.Snapshot(), 3)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	const users = 50
	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			for j := range 20 {
				conn := newFakeConn(fmt.Sprintf("u%d-c%d", userID, j), "t")
				registry.Register(userID, conn)
				_, _ = registry.Lookup(userID)
				_ = registry.UserIDs()
				if j%2 == 0 {
					registry.Unregister(userID, conn)
				}
			}
		}(int64(i + 1))
	}
	wg.Wait()

	// The last iteration of every user registers without unregistering.
	req.Equal(users, registry.Len())
}
