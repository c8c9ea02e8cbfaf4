package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apiError "github.com/hdelgado/fileden/internal/api/error"
	"github.com/hdelgado/fileden/internal/config"
	"github.com/hdelgado/fileden/internal/env"
	"github.com/hdelgado/fileden/internal/identity"
	"github.com/hdelgado/fileden/internal/identity/fake"
	"github.com/hdelgado/fileden/internal/principal"
)

// newGate wraps a probe handler with the session gate and records whether the
// protected handler actually ran.
func newGate(verifier identity.Verifier, probe http.HandlerFunc) (http.Handler, *bool) {
	environment := env.New(nil, verifier, config.Config{})

	ran := false
	inner := Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
		if probe != nil {
			probe(w, r)
		}
	}))
	return InjectEnv(environment)(inner), &ran
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) apiError.Error {
	t.Helper()
	var body apiError.Error
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return body
}

func TestAuthenticateMissingCookie(t *testing.T) {
	verifier := fake.New()
	gate, ran := newGate(verifier, nil)

	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user", nil))

	if *ran {
		t.Fatal("protected handler ran without a session cookie")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != apiError.MissingSession {
		t.Errorf("expected code %q, got %q", apiError.MissingSession, body.Code)
	}
}

func TestAuthenticateInvalidCredential(t *testing.T) {
	verifier := fake.New()
	gate, ran := newGate(verifier, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "forged"})

	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if *ran {
		t.Fatal("protected handler ran with an invalid credential")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != apiError.InvalidSession {
		t.Errorf("expected code %q, got %q", apiError.InvalidSession, body.Code)
	}
}

func TestAuthenticateRevokedCredential(t *testing.T) {
	verifier := fake.New(
		fake.WithUser("token-alice", identity.Claims{Subject: "alice", IssuedAt: time.Now()}),
	)
	cred, err := verifier.MintSession(context.Background(), "token-alice", time.Hour)
	if err != nil {
		t.Fatalf("MintSession() error = %v", err)
	}
	verifier.Revoke("alice")

	gate, ran := newGate(verifier, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: cred})

	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if *ran {
		t.Fatal("protected handler ran with a revoked credential")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != apiError.RevokedSession {
		t.Errorf("expected code %q, got %q", apiError.RevokedSession, body.Code)
	}
}

// downVerifier simulates an unreachable identity provider.
type downVerifier struct{}

func (downVerifier) VerifyToken(context.Context, string, bool) (*identity.Claims, error) {
	return nil, fmt.Errorf("%w: connection refused", identity.ErrUnavailable)
}

func (downVerifier) MintSession(context.Context, string, time.Duration) (string, error) {
	return "", fmt.Errorf("%w: connection refused", identity.ErrUnavailable)
}

func (downVerifier) VerifySession(context.Context, string, bool) (*identity.Claims, error) {
	return nil, fmt.Errorf("%w: connection refused", identity.ErrUnavailable)
}

func TestAuthenticateVerifierUnavailable(t *testing.T) {
	gate, ran := newGate(downVerifier{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "whatever"})

	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if *ran {
		t.Fatal("protected handler ran while the verifier was down")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != apiError.VerifierUnavailable {
		t.Errorf("expected code %q, got %q", apiError.VerifierUnavailable, body.Code)
	}
}

func TestAuthenticateValidCredential(t *testing.T) {
	verifier := fake.New(
		fake.WithUser("token-alice", identity.Claims{Subject: "alice", Name: "Alice", Email: "alice@example.com"}),
	)
	cred, err := verifier.MintSession(context.Background(), "token-alice", time.Hour)
	if err != nil {
		t.Fatalf("MintSession() error = %v", err)
	}

	var got principal.Principal
	var present bool
	gate, ran := newGate(verifier, func(w http.ResponseWriter, r *http.Request) {
		got, present = principal.FromCtx(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: cred})

	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if !*ran {
		t.Fatalf("protected handler did not run, status %d", rec.Code)
	}
	if !present {
		t.Fatal("principal missing from request context")
	}
	if got.Subject != "alice" {
		t.Errorf("expected subject %q, got %q", "alice", got.Subject)
	}
	if got.Name != "Alice" {
		t.Errorf("expected name %q, got %q", "Alice", got.Name)
	}
}
