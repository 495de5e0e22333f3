package session

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Service implements the high-level session operations for the storefront.
//
// It issues sessions (access token + opaque cookie token), validates either
// credential against the server-side row, and supports per-session and
// per-user revocation. Store failures other than "not found" come back as
// *BackendError.
type Service struct {
	cfg    Config
	tokens AccessTokenManager
	store  Store
}

// Issued is the result of issuing a session.
type Issued struct {
	SessionID string
	UserID    string

	// AccessToken is a short-lived bearer token.
	AccessToken string
	AccessExp   time.Time

	// SessionToken is the opaque cookie credential. It is returned once and
	// never stored in plaintext.
	SessionToken string
	ExpiresAt    time.Time
}

// NewService constructs a Service with the provided configuration, store, and token manager.
func NewService(cfg Config, store Store, tokens AccessTokenManager) *Service {
	return &Service{cfg: cfg, store: store, tokens: tokens}
}

// Config returns the configuration the service was built with.
func (s *Service) Config() Config { return s.cfg }

func (s *Service) sessionTTL(dev DeviceContext) time.Duration {
	switch dev.Platform {
	case PlatformIOS, PlatformAndroid, PlatformDesktop:
		if dev.RememberMe {
			return s.cfg.SessionTTLNative
		}
		return s.cfg.SessionTTLWeb
	default:
		return s.cfg.SessionTTLWeb
	}
}

// IssueSession creates a new session row and returns fresh credentials.
func (s *Service) IssueSession(ctx context.Context, now time.Time, userID string, dev DeviceContext) (Issued, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Issued{}, errors.New("session: empty user id")
	}
	if dev.Platform == "" {
		dev.Platform = PlatformUnknown
	}

	plain, hash, err := newSessionToken(s.cfg.SessionTokenBytes)
	if err != nil {
		return Issued{}, err
	}

	expiresAt := now.Add(s.sessionTTL(dev))

	sessionID, err := s.store.Create(ctx, now, userID, dev, hash, expiresAt)
	if err != nil {
		return Issued{}, &BackendError{Op: "session.create", Err: err}
	}

	accessToken, accessExp, err := s.tokens.Issue(userID, sessionID, now)
	if err != nil {
		return Issued{}, err
	}
	// An access token never outlives its session.
	if accessExp.After(expiresAt) {
		accessExp = expiresAt
	}

	return Issued{
		SessionID:    sessionID,
		UserID:       userID,
		AccessToken:  accessToken,
		AccessExp:    accessExp,
		SessionToken: plain,
		ExpiresAt:    expiresAt,
	}, nil
}

// IssueAccessToken issues a short-lived access token for an existing session.
func (s *Service) IssueAccessToken(userID, sessionID string, now time.Time) (token string, exp time.Time, err error) {
	return s.tokens.Issue(userID, sessionID, now)
}

// ValidateAccessToken verifies an access token and ensures the backing
// session is active. It returns the session row.
func (s *Service) ValidateAccessToken(ctx context.Context, token string, now time.Time) (Row, error) {
	claims, err := s.tokens.Verify(token, now)
	if err != nil {
		return Row{}, err
	}

	// Server-authoritative session check to honor revocations.
	row, err := s.load(ctx, "session.get_by_id", func(ctx context.Context) (Row, error) {
		return s.store.GetByID(ctx, claims.SessionID)
	})
	if err != nil {
		return Row{}, err
	}

	if row.UserID != claims.UserID {
		return Row{}, ErrInvalidToken
	}
	if err := row.activeAt(now); err != nil {
		return Row{}, err
	}
	return row, nil
}

// ValidateSessionToken looks up the session owning an opaque cookie token.
func (s *Service) ValidateSessionToken(ctx context.Context, token string, now time.Time) (Row, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > maxCredentialLen {
		return Row{}, ErrInvalidToken
	}
	hash := hashSessionToken(token)

	row, err := s.load(ctx, "session.get_by_token", func(ctx context.Context) (Row, error) {
		return s.store.GetByTokenHash(ctx, hash)
	})
	if err != nil {
		return Row{}, err
	}

	if !equalHex64(row.TokenHash, hash) {
		return Row{}, ErrSessionNotFound
	}
	if err := row.activeAt(now); err != nil {
		return Row{}, err
	}
	return row, nil
}

// RevokeSession revokes a single session by ID (e.g., logout from a device).
func (s *Service) RevokeSession(ctx context.Context, now time.Time, sessionID string) error {
	if err := s.store.Revoke(ctx, now, sessionID, "logout"); err != nil {
		return &BackendError{Op: "session.revoke", Err: err}
	}
	return nil
}

// RevokeAll revokes all sessions for a user (e.g., logout everywhere).
func (s *Service) RevokeAll(ctx context.Context, now time.Time, userID string) error {
	if err := s.store.RevokeAll(ctx, now, userID, "logout_all"); err != nil {
		return &BackendError{Op: "session.revoke_all", Err: err}
	}
	return nil
}

// load runs a store lookup and classifies its error: unknown sessions stay
// ErrSessionNotFound, everything else becomes a *BackendError.
func (s *Service) load(ctx context.Context, op string, get func(context.Context) (Row, error)) (Row, error) {
	row, err := get(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionNotFound):
		return Row{}, ErrSessionNotFound
	default:
		return Row{}, &BackendError{Op: op, Err: err}
	}

	if err := row.validate(); err != nil {
		return Row{}, &BackendError{Op: op, Err: err}
	}
	return row, nil
}
