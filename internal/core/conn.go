package core

// Handshake carries the credential sources presented when a connection
// was opened. It is kept for the connection's lifetime so identity can be
// re-derived on every operation.
type Handshake struct {
	// Cookie is the value of the auth cookie, if any.
	Cookie string
	// Authorization is the raw Authorization header, if any.
	Authorization string
}

// Conn is a live connection to one client. It is owned by the transport;
// the registry only references it.
type Conn interface {
	// ID uniquely identifies this connection for its lifetime.
	ID() string
	// Handshake returns the metadata the connection was opened with.
	Handshake() Handshake
	// Push queues an event for the client without blocking.
	Push(ev *Event) error
	// Close tears the connection down. It is safe to call more than once.
	Close(reason string)
}
