// Package http wraps retryablehttp for outbound calls to the identity
// service. Retries cover transient transport faults only; verification
// semantics stay with the caller.
package http

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// HTTPDoer executes an outbound request.
type HTTPDoer interface {
	Do(*retryablehttp.Request) (*http.Response, error)
}

var _ HTTPDoer = (*retryablehttp.Client)(nil)

// HTTP is a retrying HTTP client.
type HTTP struct {
	*retryablehttp.Client
}

// DefaultConfig returns a client tuned for credential verification: short
// waits and a small retry cap, so a failed call surfaces well inside the
// per-request verify timeout instead of burning it on backoff.
func DefaultConfig() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 1 * time.Second
	return client
}

// New wraps the given client. A nil client gets the default configuration.
func New(client *retryablehttp.Client) *HTTP {
	if client == nil {
		client = DefaultConfig()
	}
	return &HTTP{
		Client: client,
	}
}

// ExpectStatus2xx drains and closes the body on a non-2xx response so the
// status and payload surface in the returned error.
func ExpectStatus2xx(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
