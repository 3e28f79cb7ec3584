package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/wirechat-relay/internal/store"
)

var (
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidName is returned when the first name is empty.
	ErrInvalidName = errors.New("invalid name")
)

// bcryptCost matches the cost used for accounts created by the chat API.
const bcryptCost = 10

// NewUser describes an account to create.
type NewUser struct {
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Service provides account seeding and token minting for operators.
type Service struct {
	store     store.AccountStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(accounts store.AccountStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     accounts,
		jwtConfig: jwtConfig,
	}
}

// CreateUser validates and stores a new account with a hashed password.
func (s *Service) CreateUser(ctx context.Context, nu NewUser) (*store.User, error) {
	username := strings.TrimSpace(nu.Username)
	if len(username) < 3 || len(username) > 32 {
		return nil, ErrInvalidUsername
	}
	if len(nu.Password) < 6 {
		return nil, ErrInvalidPassword
	}
	first := strings.TrimSpace(nu.FirstName)
	if first == "" {
		return nil, ErrInvalidName
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, &store.User{
		Username:     username,
		FirstName:    first,
		LastName:     strings.TrimSpace(nu.LastName),
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// IssueToken mints a token for an existing user.
func (s *Service) IssueToken(ctx context.Context, userID int64) (string, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	token, err := GenerateToken(s.jwtConfig, Identity{
		UserID:      user.ID,
		UUID:        user.UUID,
		DisplayName: user.DisplayName(),
	})
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
