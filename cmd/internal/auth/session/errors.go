package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken is returned when an access token fails verification.
	ErrInvalidToken = errors.New("invalid token")

	// ErrSessionNotFound is returned when no session matches a credential.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the session is past its expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionRevoked is returned when the session has been revoked.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrMalformedRecord is returned when a store yields a row that cannot
	// be decoded or is missing required fields.
	ErrMalformedRecord = errors.New("malformed session record")

	// ErrAuthBackend matches every *BackendError.
	ErrAuthBackend = errors.New("auth backend unavailable")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)

// BackendError reports that session lookup could not be completed because
// the session store failed. errors.Is matches both ErrAuthBackend and the
// underlying cause.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, ErrAuthBackend)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrAuthBackend, e.Err)
}

func (e *BackendError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAuthBackend}
	}
	return []error{ErrAuthBackend, e.Err}
}

// IsAbsence reports whether err only means "no usable session": bad or
// expired credentials, unknown or revoked sessions.
func IsAbsence(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrSessionRevoked)
}
