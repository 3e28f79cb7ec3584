package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims issued to chat users.
type Claims struct {
	UserID      int64  `json:"id"`
	UUID        string `json:"uuid"`
	DisplayName string `json:"user"`
	jwt.RegisteredClaims
}

// Identity is the verified subset of claims trusted by the relay.
type Identity struct {
	UserID      int64
	UUID        string
	DisplayName string
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// GenerateToken creates a new signed token for the given identity.
func GenerateToken(cfg *JWTConfig, id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      id.UserID,
		UUID:        id.UUID,
		DisplayName: id.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}

// ValidateToken parses and validates a JWT token.
func ValidateToken(cfg *JWTConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("invalid issuer")
	}
	if cfg.Audience != "" && !slices.Contains(claims.Audience, cfg.Audience) {
		return nil, fmt.Errorf("invalid audience")
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("missing user id claim")
	}

	return claims, nil
}

// Verifier checks bearer tokens against a JWT configuration.
type Verifier struct {
	cfg *JWTConfig
}

// NewVerifier creates a Verifier for the given configuration.
func NewVerifier(cfg *JWTConfig) *Verifier {
	return &Verifier{cfg: cfg}
}

// Verify validates the token and returns the identity it carries.
// Every failure is reported as ErrInvalidToken wrapping the cause.
func (v *Verifier) Verify(token string) (*Identity, error) {
	claims, err := ValidateToken(v.cfg, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return &Identity{
		UserID:      claims.UserID,
		UUID:        claims.UUID,
		DisplayName: claims.DisplayName,
	}, nil
}
