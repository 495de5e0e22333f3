package session

import (
	"context"
	"time"
)

// Platform represents the client platform associated with a session.
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformDesktop Platform = "desktop"
	PlatformUnknown Platform = "unknown"
)

// ParsePlatform maps free-form input onto a known Platform.
func ParsePlatform(s string) Platform {
	switch p := Platform(normalizeLower(s)); p {
	case PlatformWeb, PlatformIOS, PlatformAndroid, PlatformDesktop:
		return p
	default:
		return PlatformUnknown
	}
}

// DeviceContext describes the client that owns a session.
type DeviceContext struct {
	Platform   Platform
	RememberMe bool
	UserAgent  string
}

// Row is the stored form of a session.
type Row struct {
	ID               string
	UserID           string
	TokenHash        string
	Platform         Platform
	UserAgent        string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	RevocationReason string
}

// validate rejects rows that a store should never have produced.
func (r Row) validate() error {
	if r.ID == "" || r.UserID == "" || r.ExpiresAt.IsZero() || r.CreatedAt.IsZero() {
		return ErrMalformedRecord
	}
	return nil
}

// activeAt reports why the row is unusable at now, or nil.
func (r Row) activeAt(now time.Time) error {
	if r.RevokedAt != nil {
		return ErrSessionRevoked
	}
	if !r.ExpiresAt.After(now) {
		return ErrSessionExpired
	}
	return nil
}

// Store abstracts persistence of session rows.
//
// Lookups return ErrSessionNotFound for unknown keys and ErrMalformedRecord
// for undecodable data; any other error is treated as a backend failure.
type Store interface {
	// Create inserts a new row and returns its ID.
	Create(ctx context.Context, now time.Time, userID string, dev DeviceContext, tokenHash string, expiresAt time.Time) (string, error)

	GetByID(ctx context.Context, sessionID string) (Row, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (Row, error)

	// Revoke and RevokeAll are idempotent; the first reason wins.
	Revoke(ctx context.Context, now time.Time, sessionID string, reason string) error
	RevokeAll(ctx context.Context, now time.Time, userID string, reason string) error
}
