package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/wirechat-relay/internal/store"
)

//go:embed schema.sql
var schema string

const dsnParams = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*SQLiteStore)(nil)

// New opens the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests that need a custom schema or seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps
	// :memory: databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== MessageStore implementation ====

// CreateMessage persists a message. The creation time is assigned here.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *store.NewMessage) (*store.Message, error) {
	query := `
		INSERT INTO messages (from_user, from_name, type, target, message_type, message, reference_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	createdAt := s.now().UTC().Truncate(time.Millisecond)

	var ref sql.NullInt64
	if msg.ReferenceID != nil {
		ref = sql.NullInt64{Int64: *msg.ReferenceID, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, query,
		msg.FromUserID,
		msg.FromName,
		string(msg.Type),
		msg.Target,
		string(msg.ContentType),
		msg.Content,
		ref,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return &store.Message{
		ID:          id,
		FromUserID:  msg.FromUserID,
		FromName:    msg.FromName,
		Type:        msg.Type,
		Target:      msg.Target,
		ContentType: msg.ContentType,
		Content:     msg.Content,
		ReferenceID: msg.ReferenceID,
		CreatedAt:   createdAt,
	}, nil
}

// GroupMemberIDs lists the user IDs of all members of a group.
func (s *SQLiteStore) GroupMemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	query := `
		SELECT user_id
		FROM group_members
		WHERE group_id = ?
		ORDER BY user_id
	`
	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group members: %w", err)
	}

	return ids, nil
}

// TargetExists reports whether a user or group with the given ID exists.
func (s *SQLiteStore) TargetExists(ctx context.Context, kind store.AddressingType, id int64) (bool, error) {
	var query string
	switch kind {
	case store.AddressUser:
		query = `SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`
	case store.AddressGroup:
		query = `SELECT EXISTS(SELECT 1 FROM chat_groups WHERE id = ?)`
	default:
		return false, fmt.Errorf("unknown addressing type %q", kind)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("query target: %w", err)
	}
	return exists, nil
}

// MessageExists reports whether a message with the given ID exists.
func (s *SQLiteStore) MessageExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM messages WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query message: %w", err)
	}
	return exists, nil
}

// ==== AccountStore implementation ====

// CreateUser inserts a new user with a freshly generated UUID.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *store.User) (*store.User, error) {
	query := `
		INSERT INTO users (uuid, first_name, last_name, username, password_hash)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, uuid.NewString(), u.FirstName, u.LastName, u.Username, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, uuid, first_name, last_name, username, password_hash, created_at
		FROM users
		WHERE id = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.UUID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// CreateGroup creates an empty group.
func (s *SQLiteStore) CreateGroup(ctx context.Context, name string) (*store.Group, error) {
	createdAt := s.now().UTC().Truncate(time.Second)
	result, err := s.db.ExecContext(ctx, `INSERT INTO chat_groups (name, created_at) VALUES (?, ?)`, name, createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return &store.Group{ID: id, Name: name, CreatedAt: createdAt}, nil
}

// AddGroupMember adds a user to a group. Adding an existing member is a no-op.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID int64) error {
	query := `INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, groupID, userID); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}
