package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeMessage = "message"

	OutboundTypeAck   = "ack"
	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventNameMessage    = "message"
	EventNameUserStatus = "user_status"
)

// SendData is a chat message submitted by the client.
type SendData struct {
	Type        string `json:"type"`
	Target      int64  `json:"target"`
	Message     string `json:"message"`
	MessageType string `json:"message_type,omitempty"`
	ReferenceID *int64 `json:"reference_id,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Message is a stored chat message as seen by clients.
type Message struct {
	ID          int64  `json:"id"`
	FromUser    int64  `json:"from_user"`
	FromName    string `json:"from_name"`
	Type        string `json:"type"`
	Target      int64  `json:"target"`
	MessageType string `json:"message_type"`
	Message     string `json:"message"`
	ReferenceID *int64 `json:"reference_id,omitempty"`
	CreatedAt   int64  `json:"created_at"` // unix milliseconds
}

// Ack answers a client message once it has been stored.
type Ack struct {
	CreatedAt int64   `json:"created_at"`
	Message   Message `json:"message"`
}

// UserStatus announces a presence change.
type UserStatus struct {
	UserID int64 `json:"user_id"`
	Online bool  `json:"online"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
