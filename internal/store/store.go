package store

//go:generate mockgen -destination=mocks/store.go -package=mocks . MessageStore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a chat account.
type User struct {
	ID           int64
	UUID         string
	FirstName    string
	LastName     string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// DisplayName is the name shown to other users.
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Group is a named set of users addressed by group messages.
type Group struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// AddressingType tells whether a message targets a user or a group.
type AddressingType string

const (
	AddressUser  AddressingType = "user"
	AddressGroup AddressingType = "group"
)

// ContentType describes how message content should be rendered.
type ContentType string

const (
	ContentText    ContentType = "text"
	ContentImage   ContentType = "image"
	ContentFile    ContentType = "file"
	ContentSticker ContentType = "sticker"
)

// NewMessage is a message about to be persisted.
type NewMessage struct {
	FromUserID  int64
	FromName    string
	Type        AddressingType
	Target      int64
	ContentType ContentType
	Content     string
	ReferenceID *int64
}

// Message is a persisted chat message. It is immutable once created.
type Message struct {
	ID          int64
	FromUserID  int64
	FromName    string
	Type        AddressingType
	Target      int64
	ContentType ContentType
	Content     string
	ReferenceID *int64
	CreatedAt   time.Time
}

// MessageStore is the persistence collaborator used by the relay.
type MessageStore interface {
	// CreateMessage durably persists a message and returns the stored record.
	CreateMessage(ctx context.Context, msg *NewMessage) (*Message, error)

	// GroupMemberIDs lists the user IDs of all members of a group.
	GroupMemberIDs(ctx context.Context, groupID int64) ([]int64, error)

	// TargetExists reports whether a user or group with the given ID exists.
	TargetExists(ctx context.Context, kind AddressingType, id int64) (bool, error)

	// MessageExists reports whether a message with the given ID exists.
	MessageExists(ctx context.Context, id int64) (bool, error)
}

// AccountStore handles users and groups for administrative tooling.
type AccountStore interface {
	// CreateUser inserts a user; UUID and CreatedAt are assigned by the store.
	CreateUser(ctx context.Context, u *User) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// CreateGroup creates an empty group.
	CreateGroup(ctx context.Context, name string) (*Group, error)

	// AddGroupMember adds a user to a group. Adding an existing member is a no-op.
	AddGroupMember(ctx context.Context, groupID, userID int64) error
}

// Store aggregates all storage interfaces.
type Store interface {
	MessageStore
	AccountStore

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// Close closes the underlying database connection.
	Close() error
}
