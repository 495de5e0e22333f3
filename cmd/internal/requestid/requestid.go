// Package requestid carries the per-request correlation ID.
package requestid

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Header is the request and response header holding the ID.
const Header = "X-Request-ID"

// maxLen bounds IDs accepted from clients.
const maxLen = 128

type ctxKey struct{}

// New returns a random UUIDv4 string.
func New() string {
	return uuid.NewString()
}

// FromHeader returns a client-supplied ID if it is printable ASCII within
// maxLen, or a fresh one otherwise.
func FromHeader(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxLen {
		return New()
	}
	for i := 0; i < len(v); i++ {
		if c := v[i]; c < 0x21 || c > 0x7e {
			return New()
		}
	}
	return v
}

// WithContext stores id in ctx.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the ID stored in ctx, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
