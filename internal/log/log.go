// Package log provides context-aware structured logging over slog. Attrs
// appended to a context with AppendCtx surface on every record logged with
// that context, which is how request ids and subjects follow a request.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxAttrsKey struct{}

// ContextHandler wraps a slog.Handler and merges context-carried attrs into
// each record before handing it down.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxAttrsKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

// AppendCtx adds an attr to the context so every record logged with a
// descendant context carries it.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if existing, ok := parent.Value(ctxAttrsKey{}).([]slog.Attr); ok {
		attrs := make([]slog.Attr, len(existing), len(existing)+1)
		copy(attrs, existing)
		return context.WithValue(parent, ctxAttrsKey{}, append(attrs, attr))
	}
	return context.WithValue(parent, ctxAttrsKey{}, []slog.Attr{attr})
}

// New returns a JSON logger on stderr. A nil options logs at debug level.
func New(options *slog.HandlerOptions) *slog.Logger {
	if options == nil {
		options = &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}
	}
	return slog.New(&ContextHandler{
		Handler: slog.NewJSONHandler(os.Stderr, options),
	})
}

// NullLogger returns a logger that discards all records. Intended for tests.
func NullLogger() *slog.Logger {
	return slog.New(&ContextHandler{
		Handler: slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{}),
	})
}
