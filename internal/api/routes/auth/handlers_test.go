package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hdelgado/fileden/internal/config"
	"github.com/hdelgado/fileden/internal/env"
	"github.com/hdelgado/fileden/internal/identity"
	"github.com/hdelgado/fileden/internal/identity/fake"
)

const indexDocument = "<!doctype html><title>fileden</title>"

func newLoginEnv(t *testing.T, verifier identity.Verifier) *env.Env {
	t.Helper()

	buildDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(buildDir, "index.html"), []byte(indexDocument), 0o644); err != nil {
		t.Fatalf("writing index.html: %v", err)
	}

	conf := config.Config{}
	conf.Session.TTL = 432000
	conf.Frontend.BuildDir = buildDir
	return env.New(nil, verifier, conf)
}

func postLogin(environment *env.Env, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(env.WithCtx(req.Context(), environment))

	rec := httptest.NewRecorder()
	HandleLogin(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

func TestHandleLogin(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		verifier := fake.New(
			fake.WithUser("token-alice", identity.Claims{Subject: "alice", Name: "Alice"}),
		)
		environment := newLoginEnv(t, verifier)

		rec := postLogin(environment, `{"idToken": "token-alice"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		cookie := sessionCookie(rec)
		if cookie == nil {
			t.Fatal("session cookie not set")
		}
		if cookie.Value == "" {
			t.Error("session cookie has empty value")
		}
		if cookie.MaxAge != 432000 {
			t.Errorf("expected Max-Age 432000, got %d", cookie.MaxAge)
		}
		if !cookie.HttpOnly {
			t.Error("session cookie is not HttpOnly")
		}
		if cookie.Path != "/" {
			t.Errorf("expected cookie path %q, got %q", "/", cookie.Path)
		}

		if got := rec.Body.String(); got != indexDocument {
			t.Errorf("expected index document body, got %q", got)
		}

		if _, err := verifier.VerifySession(context.Background(), cookie.Value, true); err != nil {
			t.Errorf("minted credential does not verify: %v", err)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		verifier := fake.New()
		environment := newLoginEnv(t, verifier)

		rec := postLogin(environment, `{"idToken": "token-forged"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
		}

		var body loginError
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.Error != "Invalid ID token" {
			t.Errorf("expected error %q, got %q", "Invalid ID token", body.Error)
		}

		if cookie := sessionCookie(rec); cookie != nil {
			t.Errorf("session cookie set on failed login: %q", cookie.Value)
		}
		if n := verifier.SessionCount(); n != 0 {
			t.Errorf("expected no sessions minted, got %d", n)
		}
	})

	t.Run("revoked token", func(t *testing.T) {
		verifier := fake.New(
			fake.WithUser("token-alice", identity.Claims{Subject: "alice", IssuedAt: time.Now()}),
		)
		verifier.Revoke("alice")
		environment := newLoginEnv(t, verifier)

		rec := postLogin(environment, `{"idToken": "token-alice"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
		}

		var body loginError
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.Error != "Revoked ID token" {
			t.Errorf("expected error %q, got %q", "Revoked ID token", body.Error)
		}
		if n := verifier.SessionCount(); n != 0 {
			t.Errorf("expected no sessions minted, got %d", n)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		environment := newLoginEnv(t, fake.New())

		tests := []struct {
			name string
			body string
		}{
			{"not json", "not-json"},
			{"unknown field", `{"idToken": "x", "extra": true}`},
			{"trailing garbage", `{"idToken": "x"} {}`},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				rec := postLogin(environment, tc.body)
				if rec.Code != http.StatusBadRequest {
					t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
				}
			})
		}
	})
}
