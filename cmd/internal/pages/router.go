package pages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"storefront/cmd/internal/auth/session"
	"storefront/cmd/internal/placeholder"
	"storefront/cmd/internal/requestid"
)

// ErrRouteTable is returned by NewRouter for an unusable route table.
var ErrRouteTable = errors.New("invalid route table")

// Resolver derives the caller's session from request headers.
type Resolver interface {
	Resolve(ctx context.Context, headers http.Header) (session.Result, error)
}

// Router renders the pages of a route table. Renders share no mutable
// state.
type Router struct {
	routes   []Route
	layouts  map[string]placeholder.Layout
	resolver Resolver
	log      *slog.Logger
}

// NewRouter validates routes against layouts and returns a Router. With no
// routes it uses DefaultRoutes.
func NewRouter(resolver Resolver, layouts placeholder.Layouts, log *slog.Logger, routes ...Route) (*Router, error) {
	if resolver == nil {
		return nil, fmt.Errorf("%w: nil resolver", ErrRouteTable)
	}
	if log == nil {
		log = slog.Default()
	}
	if len(routes) == 0 {
		routes = DefaultRoutes()
	}

	rt := &Router{
		routes:   make([]Route, 0, len(routes)),
		layouts:  make(map[string]placeholder.Layout, len(routes)),
		resolver: resolver,
		log:      log,
	}
	seen := make(map[string]bool, len(routes))
	for _, r := range routes {
		if !strings.HasPrefix(r.Pattern, "/") || strings.ContainsAny(r.Pattern, " {}") {
			return nil, fmt.Errorf("%w: pattern %q", ErrRouteTable, r.Pattern)
		}
		if seen[r.Pattern] {
			return nil, fmt.Errorf("%w: duplicate pattern %q", ErrRouteTable, r.Pattern)
		}
		seen[r.Pattern] = true

		layout, ok := layouts.Get(r.Name)
		if !ok {
			return nil, fmt.Errorf("%w: page %q has no layout", ErrRouteTable, r.Name)
		}
		rt.routes = append(rt.routes, r)
		rt.layouts[r.Name] = layout
	}
	return rt, nil
}

// Routes returns a copy of the route table.
func (rt *Router) Routes() []Route {
	out := make([]Route, len(rt.routes))
	copy(out, rt.routes)
	return out
}

// Register mounts every route on mux.
func (rt *Router) Register(mux *http.ServeMux) {
	for _, r := range rt.routes {
		mux.Handle(r.Pattern, rt.handler(r))
	}
}

// Render resolves the session carried by headers and builds the view of
// route. A session backend failure is returned as an error matching
// session.ErrAuthBackend; the caller must not treat it as signed out.
func (rt *Router) Render(ctx context.Context, route Route, headers http.Header) (View, error) {
	res, err := rt.resolver.Resolve(ctx, headers)
	if err != nil {
		return View{}, err
	}
	return newView(route, rt.layouts[route.Name], res, requestid.FromContext(ctx)), nil
}

func (rt *Router) handler(route Route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		view, err := rt.Render(ctx, route, r.Header)
		if err != nil {
			level := slog.LevelWarn
			if errors.Is(err, context.Canceled) {
				level = slog.LevelDebug
			}
			rt.log.Log(ctx, level, "pages.render.auth_unavailable",
				"page", route.Name,
				"request_id", requestid.FromContext(ctx),
				"err", err,
			)
			rt.writeUnavailable(w, r, route)
			return
		}

		rt.log.Debug("pages.render.ok",
			"page", route.Name,
			"signed_in", view.SignedIn,
			"request_id", view.RequestID,
		)
		rt.writeView(w, r, view)
	})
}

func (rt *Router) writeView(w http.ResponseWriter, r *http.Request, v View) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Add("Vary", "Accept")
	w.Header().Add("Vary", "Cookie")
	w.Header().Add("Vary", "Authorization")

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, v)
		return
	}

	body, err := renderPage(v)
	if err != nil {
		rt.log.Error("pages.render.template_failed", "page", v.Page, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (rt *Router) writeUnavailable(w http.ResponseWriter, r *http.Request, route Route) {
	reqID := requestid.FromContext(r.Context())
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Retry-After", "5")

	if wantsJSON(r) {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: apiError{
			Code:    "auth_backend_unavailable",
			Message: "session store unavailable",
		}})
		return
	}

	body, err := renderUnavailable(route.Name, reqID)
	if err != nil {
		rt.log.Error("pages.render.template_failed", "page", route.Name, "err", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write(body)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// wantsJSON reports whether the first acceptable media type of the Accept
// header is application/json.
func wantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case "application/json":
			return true
		case "text/html", "application/xhtml+xml":
			return false
		}
	}
	return false
}
