// Package principal carries the authenticated identity of one request.
package principal

import (
	"context"

	"github.com/hdelgado/fileden/internal/identity"
)

// Principal is the authenticated identity constructed per request from
// verified claims and handed to downstream handlers. It is owned by the
// request's lifetime and never shared across requests.
type Principal struct {
	Subject string
	Name    string
	Email   string
	Claims  *identity.Claims
}

// FromClaims builds a Principal from verified claims.
func FromClaims(c *identity.Claims) Principal {
	return Principal{
		Subject: c.Subject,
		Name:    c.Name,
		Email:   c.Email,
		Claims:  c,
	}
}

type principalContextKey struct{}

// WithCtx attaches the authenticated principal to the context.
func WithCtx(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, &p)
}

// FromCtx extracts the authenticated principal from the context.
func FromCtx(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	v, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || v == nil {
		return Principal{}, false
	}
	return *v, true
}
