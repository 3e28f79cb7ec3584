package core

import (
	"errors"
	"fmt"
)

// Error codes reported to clients.
const (
	ErrCodeBadRequest        = "bad_request"
	ErrCodeInvalidTarget     = "invalid_target"
	ErrCodePersistenceFailed = "persistence_failed"
	ErrCodeUnauthorized      = "unauthorized"
)

var (
	// ErrUnauthenticated is the root of every authentication rejection.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNoCredential means the handshake carried no token.
	ErrNoCredential = fmt.Errorf("%w: no credential", ErrUnauthenticated)
	// ErrInvalidCredential means the token was rejected by the verifier.
	ErrInvalidCredential = fmt.Errorf("%w: invalid credential", ErrUnauthenticated)
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

func coreError(code, msg string, err error) *CoreError {
	return &CoreError{Code: code, Message: msg, Err: err}
}

// ErrorCode returns the client-facing code of err, or "" when err is not a CoreError.
func ErrorCode(err error) string {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
