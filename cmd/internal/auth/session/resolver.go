package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Credential names the header a session was resolved from.
type Credential string

const (
	CredentialBearer Credential = "bearer"
	CredentialCookie Credential = "cookie"
)

// Session is a fully resolved, active session.
type Session struct {
	ID         string
	UserID     string
	Platform   Platform
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Credential Credential
}

// Result is either Present(Session) or Absent. The zero value is Absent.
type Result struct {
	session Session
	present bool
}

// Present wraps an active session.
func Present(s Session) Result { return Result{session: s, present: true} }

// Absent is the result for requests without a usable session.
func Absent() Result { return Result{} }

// Session returns the session and true when r is Present.
func (r Result) Session() (Session, bool) { return r.session, r.present }

// IsPresent reports whether r carries a session.
func (r Result) IsPresent() bool { return r.present }

// Outcome classifies a single Resolve call for metrics.
type Outcome string

const (
	OutcomePresent      Outcome = "present"
	OutcomeAbsent       Outcome = "absent"
	OutcomeBackendError Outcome = "backend_error"
	// OutcomeCanceled means the caller's context ended before the store
	// answered. The error is still returned but is not a store outage.
	OutcomeCanceled Outcome = "canceled"
)

// Validator checks credentials against the session store. *Service
// implements it.
type Validator interface {
	ValidateAccessToken(ctx context.Context, token string, now time.Time) (Row, error)
	ValidateSessionToken(ctx context.Context, token string, now time.Time) (Row, error)
}

// Resolver derives the current session from request headers.
// It is safe for concurrent use.
type Resolver struct {
	validator  Validator
	cookieName string
	now        func() time.Time
	log        *slog.Logger
	observe    func(Outcome)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCookieName sets the session cookie name.
func WithCookieName(name string) ResolverOption {
	return func(r *Resolver) {
		if name = strings.TrimSpace(name); name != "" {
			r.cookieName = name
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger used for backend failures.
func WithLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// WithObserver registers a callback invoked once per Resolve call.
func WithObserver(fn func(Outcome)) ResolverOption {
	return func(r *Resolver) { r.observe = fn }
}

// NewResolver builds a Resolver over v.
func NewResolver(v Validator, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		validator:  v,
		cookieName: DefaultConfig().CookieName,
		now:        time.Now,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// CookieName returns the cookie the resolver reads.
func (r *Resolver) CookieName() string { return r.cookieName }

// Resolve returns the session carried by headers.
//
// A bearer token takes precedence over the session cookie; an invalid
// bearer token does not fall back to the cookie. No credential, or a
// credential that is expired, tampered, revoked or unknown, yields Absent
// with a nil error. A store failure yields Absent and a *BackendError.
//
// headers is only read.
func (r *Resolver) Resolve(ctx context.Context, headers http.Header) (Result, error) {
	res, err := r.resolve(ctx, headers)

	outcome := OutcomeAbsent
	switch {
	case errors.Is(err, context.Canceled):
		outcome = OutcomeCanceled
		r.log.DebugContext(ctx, "session.resolve.canceled", slog.String("err", err.Error()))
	case err != nil:
		outcome = OutcomeBackendError
		r.log.WarnContext(ctx, "session.resolve.backend_error", slog.String("err", err.Error()))
	case res.IsPresent():
		outcome = OutcomePresent
	}
	if r.observe != nil {
		r.observe(outcome)
	}
	return res, err
}

func (r *Resolver) resolve(ctx context.Context, headers http.Header) (Result, error) {
	now := r.now()

	if tok, ok := BearerToken(headers); ok {
		row, err := r.validator.ValidateAccessToken(ctx, tok, now)
		return r.classify(row, err, CredentialBearer)
	}

	if tok, ok := CookieValue(headers, r.cookieName); ok {
		row, err := r.validator.ValidateSessionToken(ctx, tok, now)
		return r.classify(row, err, CredentialCookie)
	}

	return Absent(), nil
}

func (r *Resolver) classify(row Row, err error, cred Credential) (Result, error) {
	if err != nil {
		if IsAbsence(err) {
			return Absent(), nil
		}
		var be *BackendError
		if errors.As(err, &be) {
			return Absent(), err
		}
		return Absent(), &BackendError{Op: "session.resolve", Err: err}
	}

	return Present(Session{
		ID:         row.ID,
		UserID:     row.UserID,
		Platform:   row.Platform,
		IssuedAt:   row.CreatedAt,
		ExpiresAt:  row.ExpiresAt,
		Credential: cred,
	}), nil
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
// The second result is false when no bearer scheme is present; a bearer
// header with an empty token returns ("", true).
func BearerToken(headers http.Header) (string, bool) {
	auth := strings.TrimSpace(headers.Get("Authorization"))
	if auth == "" {
		return "", false
	}
	scheme, tok, _ := strings.Cut(auth, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(tok), true
}

// CookieValue returns the named cookie from the Cookie header(s) without
// modifying headers.
func CookieValue(headers http.Header, name string) (string, bool) {
	if len(headers.Values("Cookie")) == 0 {
		return "", false
	}
	req := http.Request{Header: headers}
	c, err := req.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}
