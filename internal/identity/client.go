package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-retryablehttp"

	fdHttp "github.com/hdelgado/fileden/internal/http"
	"github.com/hdelgado/fileden/internal/log"
)

const (
	defaultVerifyTimeout      = 5 * time.Second
	defaultKeyRefreshInterval = 1 * time.Hour
)

// Config holds the identity-provider connection settings.
type Config struct {
	// Endpoint is the base URL of the identity service API.
	Endpoint string

	// JWKSURL is the URL of the provider's public signing keys.
	JWKSURL string

	// Issuer is the expected issuer of ID tokens. Defaults to Endpoint.
	Issuer string

	// SessionIssuer is the expected issuer of session credentials.
	// Defaults to Issuer + "/sessions".
	SessionIssuer string

	// Audience is the expected audience claim. Empty disables the check.
	Audience string

	// APIKey authenticates this backend to the identity service.
	APIKey string

	// VerifyTimeout bounds each remote verification call. Default: 5s.
	VerifyTimeout time.Duration
}

// Client verifies credentials against a remote identity provider. Token
// signatures are checked locally against the provider's JWKS; revocation
// checks and session minting go over the network.
type Client struct {
	config Config
	http   *fdHttp.HTTP
	logger *slog.Logger
	keys   *keyCache

	keyRefreshInterval time.Duration
}

var _ Verifier = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient sets the HTTP client used for JWKS fetches and remote calls.
func WithHTTPClient(h *fdHttp.HTTP) Option {
	return func(c *Client) { c.http = h }
}

// WithKeyRefreshInterval sets how often cached JWKS keys are refreshed.
// Default: 1 hour.
func WithKeyRefreshInterval(d time.Duration) Option {
	return func(c *Client) { c.keyRefreshInterval = d }
}

// NewClient creates a new identity client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("identity: Endpoint is required")
	}
	if cfg.JWKSURL == "" {
		return nil, errors.New("identity: JWKSURL is required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = cfg.Endpoint
	}
	if cfg.SessionIssuer == "" {
		cfg.SessionIssuer = cfg.Issuer + "/sessions"
	}
	if cfg.VerifyTimeout == 0 {
		cfg.VerifyTimeout = defaultVerifyTimeout
	}

	c := &Client{
		config:             cfg,
		keyRefreshInterval: defaultKeyRefreshInterval,
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = log.NullLogger()
	}
	if c.http == nil {
		c.http = fdHttp.New(fdHttp.DefaultConfig())
	}
	c.keys = newKeyCache(cfg.JWKSURL, c.http, c.keyRefreshInterval)

	return c, nil
}

// VerifyToken validates an ID token locally against the provider's JWKS and,
// when checkRevoked is set, consults the provider's revocation record for
// the token's subject.
func (c *Client) VerifyToken(ctx context.Context, token string, checkRevoked bool) (*Claims, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.VerifyTimeout)
	defer cancel()

	claims, err := c.verifyJWT(ctx, token, c.config.Issuer)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if checkRevoked {
		revoked, err := c.revokedSince(ctx, claims.Subject, claims.IssuedAt)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("%w: subject %q", ErrRevokedToken, claims.Subject)
		}
	}

	return claims, nil
}

// MintSession exchanges an ID token for a session credential with the given
// ttl. The token is re-verified, with a revocation check, inside this call.
func (c *Client) MintSession(ctx context.Context, token string, ttl time.Duration) (string, error) {
	if _, err := c.VerifyToken(ctx, token, true); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.VerifyTimeout)
	defer cancel()

	body, err := json.Marshal(mintSessionRequest{
		IDToken:    token,
		TTLSeconds: int64(ttl.Seconds()),
	})
	if err != nil {
		return "", fmt.Errorf("encoding mint request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint+"/v1/sessions", body)
	if err != nil {
		return "", fmt.Errorf("creating mint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return "", fmt.Errorf("%w: mint rejected with status %d", ErrInvalidToken, resp.StatusCode)
	}
	if err := fdHttp.ExpectStatus2xx(resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var out mintSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding mint response: %w", ErrUnavailable, err)
	}
	if out.SessionCookie == "" {
		return "", fmt.Errorf("%w: mint response missing session cookie", ErrUnavailable)
	}

	return out.SessionCookie, nil
}

// VerifySession validates a session credential against the provider's JWKS
// and, when checkRevoked is set, the revocation record for its subject.
func (c *Client) VerifySession(ctx context.Context, cred string, checkRevoked bool) (*Claims, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.VerifyTimeout)
	defer cancel()

	claims, err := c.verifyJWT(ctx, cred, c.config.SessionIssuer)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	if checkRevoked {
		revoked, err := c.revokedSince(ctx, claims.Subject, claims.IssuedAt)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("%w: subject %q", ErrRevokedSession, claims.Subject)
		}
	}

	return claims, nil
}

type mintSessionRequest struct {
	IDToken    string `json:"id_token"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

type mintSessionResponse struct {
	SessionCookie string `json:"session_cookie"`
}

type revocationResponse struct {
	// TokensValidAfter is the unix time of the subject's most recent
	// revocation event. Credentials issued before it are revoked.
	TokensValidAfter int64 `json:"tokens_valid_after"`
}

func (c *Client) authorize(req *retryablehttp.Request) {
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
}

// verifyJWT checks signature, expiry, issuer, and audience of a raw JWT and
// extracts its claims.
func (c *Client) verifyJWT(ctx context.Context, raw, issuer string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
	}
	if c.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(c.config.Audience))
	}

	token, err := jwt.NewParser(opts...).Parse(raw, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return c.keys.get(ctx, kid)
	})
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claimsFromMap(mapClaims), nil
}

// revokedSince reports whether a credential issued at issuedAt for the given
// subject predates the subject's most recent revocation event.
func (c *Client) revokedSince(ctx context.Context, subject string, issuedAt time.Time) (bool, error) {
	endpoint := fmt.Sprintf("%s/v1/revocations/%s", c.config.Endpoint, url.PathEscape(subject))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("creating revocation request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// No revocation record for the subject
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err := fdHttp.ExpectStatus2xx(resp); err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var payload revocationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("%w: decoding revocation response: %w", ErrUnavailable, err)
	}
	if payload.TokensValidAfter == 0 {
		return false, nil
	}

	return issuedAt.Before(time.Unix(payload.TokensValidAfter, 0)), nil
}

func claimsFromMap(m jwt.MapClaims) *Claims {
	c := &Claims{
		Extra: make(map[string]any),
	}

	if v, ok := m["sub"].(string); ok {
		c.Subject = v
	}
	if v, ok := m["name"].(string); ok {
		c.Name = v
	}
	if v, ok := m["email"].(string); ok {
		c.Email = v
	}
	if v, ok := m["iss"].(string); ok {
		c.Issuer = v
	}
	if v, ok := m["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(v), 0)
	}
	if v, ok := m["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(v), 0)
	}

	standard := map[string]bool{
		"sub": true, "name": true, "email": true,
		"iss": true, "exp": true, "iat": true,
		"aud": true, "nbf": true, "jti": true,
	}
	for k, v := range m {
		if !standard[k] {
			c.Extra[k] = v
		}
	}

	return c
}
