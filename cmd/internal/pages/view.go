package pages

import (
	"bytes"
	"html/template"
	"time"

	"storefront/cmd/internal/auth/session"
	"storefront/cmd/internal/placeholder"
)

// View is what a page renders.
type View struct {
	Page      string             `json:"page"`
	Title     string             `json:"title"`
	Admin     bool               `json:"admin"`
	SignedIn  bool               `json:"signed_in"`
	Session   SessionView        `json:"session,omitzero"`
	Loading   placeholder.Layout `json:"loading"`
	RequestID string             `json:"request_id,omitempty"`

	showSession bool
}

// SessionView is the public part of a resolved session.
type SessionView struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Platform   string    `json:"platform"`
	Credential string    `json:"credential"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func newView(route Route, layout placeholder.Layout, res session.Result, reqID string) View {
	v := View{
		Page:        route.Name,
		Title:       route.Title,
		Admin:       route.Admin,
		Loading:     layout,
		RequestID:   reqID,
		showSession: route.ShowSession,
	}
	if s, ok := res.Session(); ok {
		v.SignedIn = true
		v.Session = SessionView{
			ID:         s.ID,
			UserID:     s.UserID,
			Platform:   string(s.Platform),
			Credential: string(s.Credential),
			IssuedAt:   s.IssuedAt,
			ExpiresAt:  s.ExpiresAt,
		}
	}
	return v
}

type pageData struct {
	View
	ShowSession bool
	Skeleton    template.HTML
}

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} · Storefront</title></head>
<body data-page="{{.Page}}"{{if .Admin}} data-admin="true"{{end}}{{with .RequestID}} data-request-id="{{.}}"{{end}}>
<header>
<h1>{{.Title}}</h1>
{{- if .SignedIn}}
<p class="whoami">Signed in as {{.Session.UserID}}</p>
{{- else}}
<p class="signin">Please sign in to continue.</p>
{{- end}}
</header>
<main>
{{- if and .SignedIn .ShowSession}}
<dl class="session">
<dt>Session</dt><dd>{{.Session.ID}}</dd>
<dt>User</dt><dd>{{.Session.UserID}}</dd>
<dt>Platform</dt><dd>{{.Session.Platform}}</dd>
<dt>Expires</dt><dd><time datetime="{{.Session.ExpiresAt.Format "2006-01-02T15:04:05Z07:00"}}">{{.Session.ExpiresAt.Format "2006-01-02 15:04 MST"}}</time></dd>
</dl>
{{- end}}
{{.Skeleton}}
</main>
</body>
</html>
`))

var unavailableTmpl = template.Must(template.New("unavailable").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Temporarily unavailable · Storefront</title></head>
<body data-page="{{.Page}}"{{with .RequestID}} data-request-id="{{.}}"{{end}}>
<h1>We can't reach our sign-in service right now</h1>
<p>Please try again in a moment.</p>
</body>
</html>
`))

func renderPage(v View) ([]byte, error) {
	var skel bytes.Buffer
	if err := placeholder.Render(&skel, v.Loading); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	data := pageData{
		View:        v,
		ShowSession: v.showSession,
		// #nosec G203 -- produced by html/template.
		Skeleton: template.HTML(skel.String()),
	}
	if err := pageTmpl.Execute(&out, data); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func renderUnavailable(page, reqID string) ([]byte, error) {
	var out bytes.Buffer
	err := unavailableTmpl.Execute(&out, struct{ Page, RequestID string }{page, reqID})
	return out.Bytes(), err
}
