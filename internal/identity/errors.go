package identity

import "errors"

var (
	// ErrInvalidToken covers malformed, unsigned, expired, or
	// wrong-audience ID tokens.
	ErrInvalidToken = errors.New("identity: invalid id token")

	// ErrRevokedToken marks an ID token that was valid at issuance but has
	// since been revoked (password change, admin action).
	ErrRevokedToken = errors.New("identity: id token revoked")

	// ErrInvalidSession covers malformed, unsigned, or expired session
	// credentials.
	ErrInvalidSession = errors.New("identity: invalid session credential")

	// ErrRevokedSession marks a session credential issued before the
	// principal's most recent revocation event.
	ErrRevokedSession = errors.New("identity: session credential revoked")

	// ErrUnavailable marks a verification that could not complete because
	// the identity provider did not answer in time.
	ErrUnavailable = errors.New("identity: verifier unavailable")
)
