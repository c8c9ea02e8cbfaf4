// Package middleware contains middleware functions for the API
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/httplog/v3"
	"github.com/oklog/ulid/v2"

	apiError "github.com/hdelgado/fileden/internal/api/error"
	"github.com/hdelgado/fileden/internal/api/requestid"
	"github.com/hdelgado/fileden/internal/api/session"
	"github.com/hdelgado/fileden/internal/config"
	"github.com/hdelgado/fileden/internal/env"
	"github.com/hdelgado/fileden/internal/identity"
	"github.com/hdelgado/fileden/internal/log"
	"github.com/hdelgado/fileden/internal/obs"
	"github.com/hdelgado/fileden/internal/principal"
)

// authFailedMessage is the single client-facing text for every session-gate
// rejection. Underlying causes are logged server-side only.
const authFailedMessage = "invalid authentication credentials"

// InjectEnv injects an environment struct into the request context.
func InjectEnv(environment *env.Env) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(env.WithCtx(r.Context(), environment)))
		})
	}
}

func LogRequest(logger *slog.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(logger, &httplog.Options{
		LogExtraAttrs: func(r *http.Request, reqBody string, respStatus int) []slog.Attr {
			id := requestid.ExtractRequestID(r.Context())
			if id == 0 {
				return []slog.Attr{slog.String("log_id", "N/A")}
			}
			return []slog.Attr{slog.Uint64("log_id", id)}
		},
	})
}

// AddRequestID adds a request ID to the request context.
func AddRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := ulid.Now()
		r = r.WithContext(log.AppendCtx(r.Context(), slog.Uint64("log_id", requestID)))
		r = r.WithContext(requestid.InjectRequestID(r.Context(), requestID))
		next.ServeHTTP(w, r)
	})
}

// AddCors adds the necessary CORS headers to the response.
func AddCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e := env.EnvFromCtx(r.Context())
		origin := r.Header.Get("Origin")
		isProd := e.Config.Env == config.EnvProd

		// In dev mode, allow whatever origin is asking
		allowedOrigin := e.Config.HostOrigin
		if !isProd && origin != "" {
			allowedOrigin = origin
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Authenticate is the session gate. It extracts the session cookie, verifies
// the credential with the identity provider (revocation check included), and
// rejects the request before the protected handler runs on any failure. On
// success the principal is injected into the request context.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		e := env.EnvFromCtx(ctx)
		requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

		cookie, err := r.Cookie(session.CookieName(e.Config))
		if err != nil {
			e.Logger.ErrorContext(ctx, "session cookie not found", slog.Any("error", err))
			obs.RecordAuthDecision("missing")
			_ = apiError.EncodeError(w, apiError.MissingSession, authFailedMessage, requestID)
			return
		}

		claims, err := e.Verifier.VerifySession(ctx, cookie.Value, true)
		switch {
		case err == nil:
		case errors.Is(err, identity.ErrRevokedSession):
			e.Logger.ErrorContext(ctx, "session credential revoked", slog.Any("error", err))
			obs.RecordAuthDecision("revoked")
			_ = apiError.EncodeError(w, apiError.RevokedSession, authFailedMessage, requestID)
			return
		case errors.Is(err, identity.ErrUnavailable):
			e.Logger.ErrorContext(ctx, "identity verifier unavailable", slog.Any("error", err))
			obs.RecordAuthDecision("unavailable")
			_ = apiError.EncodeError(w, apiError.VerifierUnavailable, "authentication temporarily unavailable", requestID)
			return
		default:
			e.Logger.ErrorContext(ctx, "invalid session credential", slog.Any("error", err))
			obs.RecordAuthDecision("invalid")
			_ = apiError.EncodeError(w, apiError.InvalidSession, authFailedMessage, requestID)
			return
		}

		obs.RecordAuthDecision("allowed")
		p := principal.FromClaims(claims)
		r = r.WithContext(log.AppendCtx(r.Context(), slog.String("subject", p.Subject)))
		r = r.WithContext(principal.WithCtx(r.Context(), p))

		next.ServeHTTP(w, r)
	})
}
