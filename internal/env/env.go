// Package env provides a structure for managing application-wide dependencies.
package env

import (
	"context"
	"log/slog"

	"github.com/hdelgado/fileden/internal/config"
	"github.com/hdelgado/fileden/internal/identity"
	"github.com/hdelgado/fileden/internal/log"
)

type Env struct {
	Logger   *slog.Logger
	Verifier identity.Verifier
	Config   config.Config
}

func New(logger *slog.Logger, verifier identity.Verifier, conf config.Config) *Env {
	if logger == nil {
		logger = log.NullLogger()
	}

	return &Env{
		Logger:   logger,
		Verifier: verifier,
		Config:   conf,
	}
}

func Null() *Env {
	return &Env{
		Logger: log.NullLogger(),
	}
}

type envContextKey struct{}

// WithCtx injects the environment into a context.
func WithCtx(ctx context.Context, e *Env) context.Context {
	return context.WithValue(ctx, envContextKey{}, e)
}

// EnvFromCtx extracts the environment from a context. A Null environment is
// returned when none was injected, so callers can log unconditionally.
func EnvFromCtx(ctx context.Context) *Env {
	if e, ok := ctx.Value(envContextKey{}).(*Env); ok && e != nil {
		return e
	}
	return Null()
}
