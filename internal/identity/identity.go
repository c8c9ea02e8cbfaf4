// Package identity is the sole boundary between this service and the
// external identity provider. It verifies short-lived ID tokens presented at
// login, exchanges them for longer-lived session credentials, and verifies
// those credentials on every subsequent request, including server-side
// revocation checks.
package identity

import (
	"context"
	"time"
)

// Verifier verifies credentials issued by the identity provider.
// Implementations: Client (remote provider), fake/ (testing).
type Verifier interface {
	// VerifyToken validates an ID token and returns its claims. When
	// checkRevoked is true, the provider's revocation record is consulted
	// as well.
	VerifyToken(ctx context.Context, token string, checkRevoked bool) (*Claims, error)

	// MintSession exchanges a valid ID token for a session credential
	// expiring after ttl. The token is re-verified inside the call; a prior
	// VerifyToken result is never trusted across calls. The credential is
	// returned to the caller, which owns attaching it to a cookie.
	MintSession(ctx context.Context, token string, ttl time.Duration) (string, error)

	// VerifySession validates a previously minted session credential and
	// returns its claims, optionally consulting the revocation record.
	VerifySession(ctx context.Context, cred string, checkRevoked bool) (*Claims, error)
}

// Claims are the verified assertions about a principal. Values are never
// mutated after construction and are scoped to a single request.
type Claims struct {
	Subject   string
	Name      string
	Email     string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}
