package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-relay/internal/auth"
)

func TestGate_Authenticate(t *testing.T) {
	verifier := newStubVerifier()
	verifier.add("cookie-token", auth.Identity{UserID: 1, UUID: "u-1", DisplayName: "One"})
	verifier.add("header-token", auth.Identity{UserID: 2, UUID: "u-2", DisplayName: "Two"})
	gate := NewGate(verifier, nopLogger())

	tests := []struct {
		name    string
		hs      Handshake
		wantID  int64
		wantErr error
	}{
		{"cookie", Handshake{Cookie: "cookie-token"}, 1, nil},
		{"bearer header", Handshake{Authorization: "Bearer header-token"}, 2, nil},
		{"cookie wins over header", Handshake{Cookie: "cookie-token", Authorization: "Bearer header-token"}, 1, nil},
		{"invalid cookie does not fall back", Handshake{Cookie: "bogus", Authorization: "Bearer header-token"}, 0, ErrInvalidCredential},
		{"no credential", Handshake{}, 0, ErrNoCredential},
		{"non bearer scheme", Handshake{Authorization: "Basic abc"}, 0, ErrNoCredential},
		{"empty bearer", Handshake{Authorization: "Bearer "}, 0, ErrNoCredential},
		{"unknown token", Handshake{Authorization: "Bearer nope"}, 0, ErrInvalidCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := gate.Authenticate(tt.hs)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.True(t, errors.Is(err, ErrUnauthenticated))
				require.Nil(t, id)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, id.UserID)
		})
	}
}

func TestGate_AuthenticateIsRepeatable(t *testing.T) {
	req := require.New(t)
	verifier := newStubVerifier()
	verifier.add("tok", auth.Identity{UserID: 7, UUID: "u-7", DisplayName: "Seven"})
	gate := NewGate(verifier, nopLogger())
	hs := Handshake{Authorization: "Bearer tok"}

	first, err := gate.Authenticate(hs)
	req.NoError(err)
	second, err := gate.Authenticate(hs)
	req.NoError(err)
	req.Equal(first, second)
	req.Equal(2, verifier.calls)

	// A revoked credential is noticed on the next evaluation.
	verifier.revoke("tok")
	_, err = gate.Authenticate(hs)
	req.ErrorIs(err, ErrInvalidCredential)
}
