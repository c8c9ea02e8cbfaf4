// Package fake provides an in-memory identity.Verifier for testing.
//
// Tokens are plain strings seeded with WithUser; minted session credentials
// are opaque ids tracked alongside their issuance and expiry instants. The
// clock is injectable so expiry and revocation ordering can be exercised
// without sleeping.
package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hdelgado/fileden/internal/identity"
)

// Option configures the fake verifier.
type Option func(*Verifier)

// WithUser seeds an ID token and the claims it verifies to. A zero ExpiresAt
// means the token never expires.
func WithUser(token string, claims identity.Claims) Option {
	return func(v *Verifier) {
		v.users[token] = claims
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

type session struct {
	subject   string
	issuedAt  time.Time
	expiresAt time.Time
}

// Verifier is an in-memory identity.Verifier.
type Verifier struct {
	mu        sync.RWMutex
	now       func() time.Time
	users     map[string]identity.Claims // id token → claims
	sessions  map[string]session         // credential → session
	revokedAt map[string]time.Time       // subject → tokens valid after
	nextID    int
}

var _ identity.Verifier = (*Verifier)(nil)

// New creates a fake verifier.
func New(opts ...Option) *Verifier {
	v := &Verifier{
		now:       time.Now,
		users:     make(map[string]identity.Claims),
		sessions:  make(map[string]session),
		revokedAt: make(map[string]time.Time),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Revoke invalidates every credential of the subject issued before now.
func (v *Verifier) Revoke(subject string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.revokedAt[subject] = v.now()
}

// SessionCount reports how many session credentials have been minted.
func (v *Verifier) SessionCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.sessions)
}

func (v *Verifier) VerifyToken(_ context.Context, token string, checkRevoked bool) (*identity.Claims, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.verifyTokenLocked(token, checkRevoked)
}

func (v *Verifier) verifyTokenLocked(token string, checkRevoked bool) (*identity.Claims, error) {
	claims, ok := v.users[token]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token", identity.ErrInvalidToken)
	}
	if !claims.ExpiresAt.IsZero() && !v.now().Before(claims.ExpiresAt) {
		return nil, fmt.Errorf("%w: token expired", identity.ErrInvalidToken)
	}
	if checkRevoked {
		if after, ok := v.revokedAt[claims.Subject]; ok && claims.IssuedAt.Before(after) {
			return nil, fmt.Errorf("%w: subject %q", identity.ErrRevokedToken, claims.Subject)
		}
	}
	out := claims
	return &out, nil
}

func (v *Verifier) MintSession(_ context.Context, token string, ttl time.Duration) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	claims, err := v.verifyTokenLocked(token, true)
	if err != nil {
		return "", err
	}

	v.nextID++
	cred := fmt.Sprintf("fake-session-%d", v.nextID)
	now := v.now()
	v.sessions[cred] = session{
		subject:   claims.Subject,
		issuedAt:  now,
		expiresAt: now.Add(ttl),
	}
	return cred, nil
}

func (v *Verifier) VerifySession(_ context.Context, cred string, checkRevoked bool) (*identity.Claims, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	sess, ok := v.sessions[cred]
	if !ok {
		return nil, fmt.Errorf("%w: unknown credential", identity.ErrInvalidSession)
	}
	if !v.now().Before(sess.expiresAt) {
		return nil, fmt.Errorf("%w: session expired", identity.ErrInvalidSession)
	}
	if checkRevoked {
		if after, ok := v.revokedAt[sess.subject]; ok && sess.issuedAt.Before(after) {
			return nil, fmt.Errorf("%w: subject %q", identity.ErrRevokedSession, sess.subject)
		}
	}

	// Reconstruct claims from the seeded user for the session's subject
	for _, claims := range v.users {
		if claims.Subject == sess.subject {
			out := claims
			out.IssuedAt = sess.issuedAt
			out.ExpiresAt = sess.expiresAt
			return &out, nil
		}
	}

	out := identity.Claims{
		Subject:   sess.subject,
		IssuedAt:  sess.issuedAt,
		ExpiresAt: sess.expiresAt,
	}
	return &out, nil
}
