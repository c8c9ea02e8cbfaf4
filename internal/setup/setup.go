// Package setup is responsible for setting up components.
package setup

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hdelgado/fileden/internal/config"
	fdHttp "github.com/hdelgado/fileden/internal/http"
	"github.com/hdelgado/fileden/internal/identity"
)

// Verifier resolves the identity credential (ambient or file-based) and
// constructs the identity client from it. Built once at process start and
// injected everywhere; nothing else talks to the provider.
func Verifier(conf config.Config, logger *slog.Logger) (*identity.Client, error) {
	creds, err := config.LoadCredentials(&conf)
	if err != nil {
		return nil, fmt.Errorf("loading identity credentials: %w", err)
	}

	httpConfig := fdHttp.DefaultConfig()
	httpConfig.Logger = nil // request logging is slog's job

	verifier, err := identity.NewClient(identity.Config{
		Endpoint:      creds.Endpoint,
		JWKSURL:       creds.JWKSURL,
		Issuer:        creds.Issuer,
		Audience:      creds.Audience,
		APIKey:        creds.APIKey,
		VerifyTimeout: time.Duration(conf.Identity.VerifyTimeout) * time.Second,
	},
		identity.WithLogger(logger),
		identity.WithHTTPClient(fdHttp.New(httpConfig)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating identity client: %w", err)
	}

	return verifier, nil
}
