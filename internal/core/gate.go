package core

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/auth"
)

const bearerPrefix = "Bearer "

// Verifier validates a bearer token and returns the identity it carries.
type Verifier interface {
	Verify(token string) (*auth.Identity, error)
}

// Gate authenticates connection handshakes.
//
// Authenticate touches no shared state, so it can be called at connect
// time and again before every send with the same result for the same
// handshake and the same clock.
type Gate struct {
	verifier Verifier
	log      *zerolog.Logger
}

// NewGate creates a gate backed by the given verifier.
func NewGate(verifier Verifier, logger *zerolog.Logger) *Gate {
	return &Gate{verifier: verifier, log: logger}
}

// Authenticate extracts the credential from the handshake and verifies it.
// The cookie wins over the Authorization header when both are present.
func (g *Gate) Authenticate(h Handshake) (*auth.Identity, error) {
	token := credential(h)
	if token == "" {
		g.log.Debug().Msg("auth rejected: no credential")
		return nil, ErrNoCredential
	}

	id, err := g.verifier.Verify(token)
	if err != nil {
		g.log.Debug().Err(err).Msg("auth rejected: invalid credential")
		return nil, ErrInvalidCredential
	}

	return &auth.Identity{
		UserID:      id.UserID,
		UUID:        id.UUID,
		DisplayName: id.DisplayName,
	}, nil
}

func credential(h Handshake) string {
	if token := strings.TrimSpace(h.Cookie); token != "" {
		return token
	}
	if rest, ok := strings.CutPrefix(h.Authorization, bearerPrefix); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}
