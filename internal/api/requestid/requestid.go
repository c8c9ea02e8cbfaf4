// Package requestid carries the per-request id through the context so
// handlers can stamp it into error envelopes and log lines.
package requestid

import "context"

type requestIDKey struct{}

// InjectRequestID attaches the request id to the context.
func InjectRequestID(ctx context.Context, requestID uint64) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ExtractRequestID returns the request id from the context, or 0 when the
// request never passed through the id middleware.
func ExtractRequestID(ctx context.Context) uint64 {
	v, ok := ctx.Value(requestIDKey{}).(uint64)
	if !ok {
		return 0
	}
	return v
}
