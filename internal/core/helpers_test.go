package core

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/auth"
)

var errQueueFull = errors.New("queue full")

type fakeConn struct {
	id string
	hs Handshake

	mu     sync.Mutex
	events []*Event
	fail   bool
	closed int
}

func newFakeConn(id, token string) *fakeConn {
	return &fakeConn{id: id, hs: Handshake{Authorization: "Bearer " + token}}
}

func (c *fakeConn) ID() string           { return c.id }
func (c *fakeConn) Handshake() Handshake { return c.hs }

func (c *fakeConn) Push(ev *Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errQueueFull
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *fakeConn) Close(string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
}

func (c *fakeConn) received() []*Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Event(nil), c.events...)
}

func (c *fakeConn) presence() []*Event {
	var out []*Event
	for _, ev := range c.received() {
		if ev.Kind == EventPresence {
			out = append(out, ev)
		}
	}
	return out
}

func (c *fakeConn) messages() []*Event {
	var out []*Event
	for _, ev := range c.received() {
		if ev.Kind == EventMessage {
			out = append(out, ev)
		}
	}
	return out
}

// stubVerifier accepts the tokens it knows about.
type stubVerifier struct {
	mu     sync.Mutex
	tokens map[string]*auth.Identity
	calls  int
}

func newStubVerifier() *stubVerifier {
	return &stubVerifier{tokens: make(map[string]*auth.Identity)}
}

func (v *stubVerifier) add(token string, id auth.Identity) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[token] = &id
}

func (v *stubVerifier) revoke(token string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.tokens, token)
}

func (v *stubVerifier) Verify(token string) (*auth.Identity, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	id, ok := v.tokens[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	cp := *id
	return &cp, nil
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
