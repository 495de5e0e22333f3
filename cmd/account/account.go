package account

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"storefront/cmd/security/password"
)

// Account is a storefront customer.
type Account struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Admin        bool
	CreatedAt    time.Time
}

// CreateInput describes a new account. Password is plaintext and is hashed
// by the store; it is never persisted as given.
type CreateInput struct {
	Email       string
	DisplayName string
	Password    string
	Admin       bool
	Now         time.Time
}

// Store is the account persistence boundary.
type Store interface {
	Create(ctx context.Context, in CreateInput) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
}

// NormalizeEmail is the canonical form used for uniqueness and lookup.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NewID returns a 26-char ULID.
func NewID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// prepare validates in and returns a ready-to-store Account with a hashed
// password. Shared by every Store implementation.
func prepare(op string, in CreateInput) (Account, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return Account{}, invalid(op, "email is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return Account{}, invalid(op, "email is malformed")
	}
	if strings.TrimSpace(in.Password) == "" {
		return Account{}, invalid(op, "password is required")
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		if password.IsPolicy(err) {
			return Account{}, invalid(op, err.Error())
		}
		return Account{}, fmt.Errorf("%s: hash password: %w", op, err)
	}

	id, err := NewID(now)
	if err != nil {
		return Account{}, err
	}

	display := strings.TrimSpace(in.DisplayName)
	if display == "" {
		display = email[:strings.IndexByte(email, '@')]
	}

	return Account{
		ID:           id,
		Email:        email,
		DisplayName:  display,
		PasswordHash: hash,
		Admin:        in.Admin,
		CreatedAt:    now,
	}, nil
}
