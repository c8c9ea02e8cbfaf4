// Package session contains the session cookie contract.
package session

import (
	"net/http"
	"time"

	"github.com/hdelgado/fileden/internal/config"
)

// CookieName returns the well-known session cookie key.
func CookieName(conf config.Config) string {
	if conf.Session.CookieName != "" {
		return conf.Session.CookieName
	}
	return "session"
}

// TTL returns the configured session lifetime.
func TTL(conf config.Config) time.Duration {
	return time.Duration(conf.Session.TTL) * time.Second
}

// NewCookie wraps a minted session credential in the cookie the client
// replays on every subsequent request.
func NewCookie(cred string, conf config.Config) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName(conf),
		Value:    cred,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(conf.Session.TTL),
		SameSite: http.SameSiteLaxMode,
		Secure:   conf.Env == config.EnvProd,
	}
}
