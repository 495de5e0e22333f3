package pages

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/cmd/internal/auth/session"
	"storefront/cmd/internal/placeholder"
	"storefront/cmd/internal/requestid"
)

type resolverFunc func(ctx context.Context, h http.Header) (session.Result, error)

func (f resolverFunc) Resolve(ctx context.Context, h http.Header) (session.Result, error) {
	return f(ctx, h)
}

func absentResolver() Resolver {
	return resolverFunc(func(context.Context, http.Header) (session.Result, error) {
		return session.Absent(), nil
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMux(t *testing.T, r Resolver) (*Router, *http.ServeMux) {
	t.Helper()
	rt, err := NewRouter(r, placeholder.DefaultLayouts(), discardLogger())
	require.NoError(t, err)
	mux := http.NewServeMux()
	rt.Register(mux)
	return rt, mux
}

func get(mux http.Handler, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func acceptJSON(r *http.Request) { r.Header.Set("Accept", "application/json") }

func TestOrdersPage_NoCookieRendersSignIn(t *testing.T) {
	_, mux := newMux(t, absentResolver())

	rec := get(mux, "/account/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "Please sign in")
	assert.Contains(t, body, `data-page="orders"`)
	assert.Contains(t, body, `data-kind="card-list" data-count="3"`)
	assert.Equal(t, 4, strings.Count(body, `class="skeleton__item"`))
}

func TestCategoriesPage_JSONView(t *testing.T) {
	_, mux := newMux(t, absentResolver())

	rec := get(mux, "/categories", acceptJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	var v struct {
		Page     string `json:"page"`
		SignedIn bool   `json:"signed_in"`
		Session  *struct {
			UserID string `json:"user_id"`
		} `json:"session"`
		Loading struct {
			Specs []struct {
				Kind  string `json:"kind"`
				Count int    `json:"count"`
				Items []any  `json:"items"`
			} `json:"specs"`
		} `json:"loading"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, "categories", v.Page)
	assert.False(t, v.SignedIn)
	assert.Nil(t, v.Session, "absent session is omitted")
	require.Len(t, v.Loading.Specs, 2)
	assert.Equal(t, "categories-grid", v.Loading.Specs[1].Kind)
	assert.Len(t, v.Loading.Specs[1].Items, 10)
}

func TestPages_BackendErrorIs503(t *testing.T) {
	down := resolverFunc(func(context.Context, http.Header) (session.Result, error) {
		return session.Absent(), &session.BackendError{Op: "session.get_by_token", Err: errors.New("connection refused")}
	})
	_, mux := newMux(t, down)

	rec := get(mux, "/account", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Please sign in")
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))

	rec = get(mux, "/account", acceptJSON)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"auth_backend_unavailable","message":"session store unavailable"}}`, rec.Body.String())
}

func TestPages_HeadersPassedThroughUntouched(t *testing.T) {
	var seen http.Header
	r := resolverFunc(func(_ context.Context, h http.Header) (session.Result, error) {
		seen = h
		return session.Absent(), nil
	})
	_, mux := newMux(t, r)

	rec := get(mux, "/admin/coupons/new", func(req *http.Request) {
		req.Header.Set("Cookie", "storefront_session=abc")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "storefront_session=abc", seen.Get("Cookie"))
	assert.Contains(t, rec.Body.String(), `data-admin="true"`)
}

func TestPages_MethodNotAllowed(t *testing.T) {
	_, mux := newMux(t, absentResolver())

	req := httptest.NewRequest(http.MethodPost, "/account", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestPages_RequestIDFromContext(t *testing.T) {
	_, mux := newMux(t, absentResolver())

	rec := get(mux, "/account", func(r *http.Request) {
		*r = *r.WithContext(requestid.WithContext(r.Context(), "req-42"))
		acceptJSON(r)
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request_id":"req-42"`)
}

func TestNewRouter_Validates(t *testing.T) {
	layouts := placeholder.DefaultLayouts()

	_, err := NewRouter(nil, layouts, nil)
	assert.ErrorIs(t, err, ErrRouteTable)

	_, err = NewRouter(absentResolver(), layouts, nil, Route{Pattern: "/promo", Name: "promo"})
	assert.ErrorIs(t, err, ErrRouteTable)

	_, err = NewRouter(absentResolver(), layouts, nil,
		Route{Pattern: "/account", Name: "account"},
		Route{Pattern: "/account", Name: "orders"},
	)
	assert.ErrorIs(t, err, ErrRouteTable)

	_, err = NewRouter(absentResolver(), layouts, nil, Route{Pattern: "account", Name: "account"})
	assert.ErrorIs(t, err, ErrRouteTable)

	rt, err := NewRouter(absentResolver(), layouts, nil)
	require.NoError(t, err)
	routes := rt.Routes()
	assert.Equal(t, DefaultRoutes(), routes)

	routes[0].Pattern = "/mutated"
	assert.Equal(t, "/account", rt.Routes()[0].Pattern)
}

func TestWantsJSON(t *testing.T) {
	cases := []struct {
		accept string
		want   bool
	}{
		{"", false},
		{"application/json", true},
		{"text/html,application/json", false},
		{"application/json;q=0.9, text/html", true},
		{"*/*", false},
		{"garbage;;, application/json", true},
		{"application/xhtml+xml, application/json", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Accept", tc.accept)
		assert.Equal(t, tc.want, wantsJSON(r), tc.accept)
	}
}

// signedInFixture runs pages against a real resolver and session service.
func signedInFixture(t *testing.T) (*http.ServeMux, *session.Service) {
	t.Helper()
	cfg := session.DefaultConfig()
	cfg.SigningKeyHex = paseto.NewV4AsymmetricSecretKey().ExportHex()
	tokens, err := session.NewAccessTokenManager(cfg)
	require.NoError(t, err)
	svc := session.NewService(cfg, session.NewMemoryStore(), tokens)

	_, mux := newMux(t, session.NewResolver(svc, session.WithLogger(discardLogger())))
	return mux, svc
}

func TestPages_SessionCookieSignsIn(t *testing.T) {
	mux, svc := signedInFixture(t)
	iss, err := svc.IssueSession(context.Background(), time.Now(), "u123", session.DeviceContext{Platform: session.PlatformWeb})
	require.NoError(t, err)

	withCookie := func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "storefront_session", Value: iss.SessionToken})
	}

	rec := get(mux, "/account/orders", withCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Signed in as u123")
	assert.NotContains(t, rec.Body.String(), "Please sign in")

	rec = get(mux, "/admin/sessions", withCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<dd>`+iss.SessionID+`</dd>`)

	rec = get(mux, "/admin/sessions", func(r *http.Request) { withCookie(r); acceptJSON(r) })
	var v View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.True(t, v.SignedIn)
	assert.Equal(t, "u123", v.Session.UserID)
	assert.Equal(t, iss.SessionID, v.Session.ID)
	assert.Equal(t, "cookie", v.Session.Credential)
}

func TestPages_ConcurrentRendersAreIndependent(t *testing.T) {
	mux, svc := signedInFixture(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := "user-" + string(rune('a'+i))
			iss, err := svc.IssueSession(context.Background(), time.Now(), user, session.DeviceContext{Platform: session.PlatformIOS})
			if !assert.NoError(t, err) {
				return
			}
			rec := get(mux, "/account", func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+iss.AccessToken)
				acceptJSON(r)
			})
			var v View
			if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v)) {
				assert.Equal(t, user, v.Session.UserID)
			}
		}()
	}
	wg.Wait()
}
