// Package authapi serves the sign-in endpoints of the storefront:
// login, logout and the current-session lookup.
package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/cmd/account"
	"storefront/cmd/internal/auth/session"
)

// Login results passed to the login observer.
const (
	LoginSuccess     = "success"
	LoginRejected    = "rejected"
	LoginRateLimited = "rate_limited"
	LoginError       = "error"
)

// Handler serves /auth/* and /me.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	accounts account.Store
	sessions *session.Service
	resolver *session.Resolver
	limiter  *ipLimiter
	observe  func(result string)
	now      func() time.Time
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLoginObserver registers a callback receiving one Login* result per
// login attempt.
func WithLoginObserver(fn func(result string)) HandlerOption {
	return func(h *Handler) { h.observe = fn }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler wires the auth endpoints. resolver must read the same cookie
// the handler sets.
func NewHandler(log *slog.Logger, cfg Config, accounts account.Store, sessions *session.Service, resolver *session.Resolver, opts ...HandlerOption) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	h := &Handler{
		log:      log,
		cfg:      cfg,
		accounts: accounts,
		sessions: sessions,
		resolver: resolver,
		limiter:  newIPLimiter(cfg.LoginIPMax, cfg.LoginIPWindow),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Register mounts the handler's routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/logout", h.handleLogout)
	mux.HandleFunc("/auth/logout_all", h.handleLogoutAll)
	mux.HandleFunc("/me", h.handleMe)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	now := h.now().UTC()
	ip := ipKey(clientIP(r, h.cfg.TrustProxy))
	if blocked, retry := h.limiter.Blocked(ip, now); blocked {
		h.log.Warn("auth.login.rate_limited", "ip", ip)
		h.observeLogin(LoginRateLimited)
		writeRateLimited(w, retry)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, decodeStatus(err), "invalid_json", "invalid JSON body")
		return
	}
	email := account.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := r.Context()
	acct, err := h.accounts.GetByEmail(ctx, email)
	if err != nil {
		if account.IsNotFound(err) || account.IsInvalidInput(err) {
			account.VerifyDummy(req.Password)
			h.rejectLogin(w, ip, now)
			return
		}
		h.log.Error("auth.login.account_lookup_failed", "err", err)
		h.observeLogin(LoginError)
		writeError(w, http.StatusServiceUnavailable, "account_backend_unavailable", "account store unavailable")
		return
	}

	ok, err := account.VerifyPassword(req.Password, acct.PasswordHash)
	if err != nil {
		h.log.Error("auth.login.verify_failed", "user_id", acct.ID, "err", err)
		h.observeLogin(LoginError)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	if !ok {
		h.rejectLogin(w, ip, now)
		return
	}

	dev := session.DeviceContext{
		Platform:   loginPlatform(req.Platform),
		RememberMe: req.RememberMe,
		UserAgent:  strings.TrimSpace(r.UserAgent()),
	}
	iss, err := h.sessions.IssueSession(ctx, now, acct.ID, dev)
	if err != nil {
		h.observeLogin(LoginError)
		if errors.Is(err, session.ErrAuthBackend) {
			h.log.Error("auth.login.session_backend_failed", "user_id", acct.ID, "err", err)
			writeError(w, http.StatusServiceUnavailable, "auth_backend_unavailable", "session store unavailable")
			return
		}
		h.log.Error("auth.login.issue_failed", "user_id", acct.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	resp := loginResponse{
		Account: toAccountResponse(acct),
		Session: sessionResponse{
			SessionID:       iss.SessionID,
			Platform:        string(dev.Platform),
			ExpiresAt:       iss.ExpiresAt,
			AccessToken:     iss.AccessToken,
			AccessExpiresAt: iss.AccessExp,
		},
	}
	if dev.Platform == session.PlatformWeb {
		h.setSessionCookie(w, iss.SessionToken, iss.ExpiresAt)
	} else {
		resp.Session.SessionToken = iss.SessionToken
	}

	h.log.Info("auth.login.ok", "user_id", acct.ID, "session_id", iss.SessionID, "platform", dev.Platform)
	h.observeLogin(LoginSuccess)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) rejectLogin(w http.ResponseWriter, ip string, now time.Time) {
	h.limiter.Record(ip, now)
	h.observeLogin(LoginRejected)
	writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if err := h.sessions.RevokeSession(r.Context(), h.now().UTC(), s.ID); err != nil {
		h.log.Error("auth.logout.fail", "session_id", s.ID, "err", err)
		writeError(w, http.StatusServiceUnavailable, "auth_backend_unavailable", "session store unavailable")
		return
	}

	h.log.Info("auth.logout.ok", "user_id", s.UserID, "session_id", s.ID)
	h.expireSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if err := h.sessions.RevokeAll(r.Context(), h.now().UTC(), s.UserID); err != nil {
		h.log.Error("auth.logout_all.fail", "user_id", s.UserID, "err", err)
		writeError(w, http.StatusServiceUnavailable, "auth_backend_unavailable", "session store unavailable")
		return
	}

	h.log.Info("auth.logout_all.ok", "user_id", s.UserID)
	h.expireSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	acct, err := h.accounts.GetByID(r.Context(), s.UserID)
	if err != nil {
		if account.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "not_found", "account not found")
			return
		}
		h.log.Error("auth.me.fail", "user_id", s.UserID, "err", err)
		writeError(w, http.StatusServiceUnavailable, "account_backend_unavailable", "account store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{Account: toAccountResponse(acct), Session: toCurrentSession(s)})
}

// requireSession resolves the caller's session and writes 401 or 503 when
// there is none.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	res, err := h.resolver.Resolve(r.Context(), r.Header)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "auth_backend_unavailable", "session store unavailable")
		return session.Session{}, false
	}
	s, ok := res.Session()
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
		return session.Session{}, false
	}
	return s, true
}

func (h *Handler) observeLogin(result string) {
	if h.observe != nil {
		h.observe(result)
	}
}

// loginPlatform defaults a missing platform to web.
func loginPlatform(raw string) session.Platform {
	if strings.TrimSpace(raw) == "" {
		return session.PlatformWeb
	}
	return session.ParsePlatform(raw)
}
