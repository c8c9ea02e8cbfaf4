package identity

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	fdHttp "github.com/hdelgado/fileden/internal/http"
)

// keyCache fetches RSA public keys from the provider's JWKS endpoint
// (RFC 7517), caches them by kid, and refreshes them on an interval.
type keyCache struct {
	jwksURL         string
	http            *fdHttp.HTTP
	refreshInterval time.Duration

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey // kid → public key
	lastFetch time.Time
}

func newKeyCache(jwksURL string, h *fdHttp.HTTP, refreshInterval time.Duration) *keyCache {
	return &keyCache{
		jwksURL:         jwksURL,
		http:            h,
		refreshInterval: refreshInterval,
		keys:            make(map[string]*rsa.PublicKey),
	}
}

// get returns the public key for the given kid, fetching or refreshing the
// key set as needed. Fetch failures wrap ErrUnavailable unless a cached key
// can still serve the request.
func (kc *keyCache) get(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	kc.mu.RLock()
	key, found := kc.keys[kid]
	stale := time.Since(kc.lastFetch) > kc.refreshInterval
	kc.mu.RUnlock()

	if found && !stale {
		return key, nil
	}

	// kid miss or cache expired
	if err := kc.refresh(ctx); err != nil {
		if found {
			return key, nil // use stale key if refresh fails
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	kc.mu.RLock()
	defer kc.mu.RUnlock()

	if key, ok := kc.keys[kid]; ok {
		return key, nil
	}

	// No kid in the header — fall back to the sole key if there is one
	if kid == "" && len(kc.keys) == 1 {
		for _, k := range kc.keys {
			return k, nil
		}
	}

	return nil, fmt.Errorf("signing key not found for kid %q", kid)
}

// refresh fetches the JWKS from the configured URL and replaces the cache.
func (kc *keyCache) refresh(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, kc.jwksURL, nil)
	if err != nil {
		return fmt.Errorf("creating jwks request: %w", err)
	}

	resp, err := kc.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching jwks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := fdHttp.ExpectStatus2xx(resp); err != nil {
		return fmt.Errorf("fetching jwks: %w", err)
	}

	var jwksResp jwksResponse
	if err := json.NewDecoder(resp.Body).Decode(&jwksResp); err != nil {
		return fmt.Errorf("decoding jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(jwksResp.Keys))
	for _, jwk := range jwksResp.Keys {
		if jwk.Kty != "RSA" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		pub, err := jwk.rsaPublicKey()
		if err != nil {
			continue // skip malformed keys
		}
		keys[jwk.Kid] = pub
	}

	if len(keys) == 0 {
		return fmt.Errorf("no valid RSA signing keys found")
	}

	kc.mu.Lock()
	kc.keys = keys
	kc.lastFetch = time.Now()
	kc.mu.Unlock()

	return nil
}

type jwksResponse struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (k *jwkKey) rsaPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
