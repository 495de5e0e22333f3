package password

import "errors"

// Policy violations. Each is safe to show to the person choosing a password.
var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrWeakPassword     = errors.New("weak password")
)

// ErrInvalidHash means a stored hash could not be parsed.
var ErrInvalidHash = errors.New("invalid password hash")

// IsPolicy reports whether err is a password policy violation rather than a
// configuration or hashing failure.
func IsPolicy(err error) bool {
	return errors.Is(err, ErrPasswordTooShort) ||
		errors.Is(err, ErrPasswordTooLong) ||
		errors.Is(err, ErrWeakPassword)
}
