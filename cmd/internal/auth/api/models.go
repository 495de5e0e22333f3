package authapi

import (
	"time"

	"storefront/cmd/account"
	"storefront/cmd/internal/auth/session"
)

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
	Platform   string `json:"platform"`
}

type accountResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Admin       bool      `json:"admin"`
	CreatedAt   time.Time `json:"created_at"`
}

type sessionResponse struct {
	SessionID       string    `json:"session_id"`
	Platform        string    `json:"platform"`
	ExpiresAt       time.Time `json:"expires_at"`
	AccessToken     string    `json:"access_token,omitempty"`
	AccessExpiresAt time.Time `json:"access_expires_at,omitzero"`
	// SessionToken is only returned to native clients; web clients get the
	// cookie instead.
	SessionToken string `json:"session_token,omitempty"`
}

type loginResponse struct {
	Account accountResponse `json:"account"`
	Session sessionResponse `json:"session"`
}

type currentSession struct {
	SessionID  string    `json:"session_id"`
	Platform   string    `json:"platform"`
	Credential string    `json:"credential"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type meResponse struct {
	Account accountResponse `json:"account"`
	Session currentSession  `json:"session"`
}

func toAccountResponse(a account.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Admin:       a.Admin,
		CreatedAt:   a.CreatedAt,
	}
}

func toCurrentSession(s session.Session) currentSession {
	return currentSession{
		SessionID:  s.ID,
		Platform:   string(s.Platform),
		Credential: string(s.Credential),
		IssuedAt:   s.IssuedAt,
		ExpiresAt:  s.ExpiresAt,
	}
}
