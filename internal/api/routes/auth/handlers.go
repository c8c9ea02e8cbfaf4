// Package auth contains handlers for the login endpoint.
package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apiError "github.com/hdelgado/fileden/internal/api/error"
	"github.com/hdelgado/fileden/internal/api/requestid"
	"github.com/hdelgado/fileden/internal/api/session"
	"github.com/hdelgado/fileden/internal/env"
	"github.com/hdelgado/fileden/internal/identity"
	mJson "github.com/hdelgado/fileden/internal/json"
	"github.com/hdelgado/fileden/internal/obs"
	"github.com/hdelgado/fileden/internal/spa"
)

type LoginRequest struct {
	IDToken string `json:"idToken"`
}

type loginError struct {
	Error string `json:"error"`
}

// Client-facing rejection texts for the login endpoint.
const (
	invalidTokenMessage = "Invalid ID token"
	revokedTokenMessage = "Revoked ID token"
)

func encodeLoginError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(loginError{Error: message})
}

// HandleLogin verifies the posted ID token with the identity provider,
// exchanges it for a session credential, and sets the session cookie. The
// response body is the SPA entry document so the client lands in the app.
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	// Decode JSON
	var request LoginRequest
	e.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := mJson.DecodeJSON(&request, decoder); err != nil {
		e.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}

	// Verify the ID token, checking whether it has been revoked
	e.Logger.DebugContext(ctx, "Verifying id token")
	_, err := e.Verifier.VerifyToken(ctx, request.IDToken, true)
	switch {
	case err == nil:
	case errors.Is(err, identity.ErrRevokedToken):
		e.Logger.ErrorContext(ctx, "id token revoked", slog.Any("error", err))
		obs.RecordLogin("revoked")
		encodeLoginError(w, revokedTokenMessage)
		return
	case errors.Is(err, identity.ErrUnavailable):
		e.Logger.ErrorContext(ctx, "identity verifier unavailable", slog.Any("error", err))
		obs.RecordLogin("unavailable")
		_ = apiError.EncodeError(w, apiError.VerifierUnavailable, "authentication temporarily unavailable", requestID)
		return
	default:
		e.Logger.ErrorContext(ctx, "invalid id token", slog.Any("error", err))
		obs.RecordLogin("invalid")
		encodeLoginError(w, invalidTokenMessage)
		return
	}

	// Exchange the token for a session credential
	e.Logger.DebugContext(ctx, "Minting session credential")
	cred, err := e.Verifier.MintSession(ctx, request.IDToken, session.TTL(e.Config))
	switch {
	case err == nil:
	case errors.Is(err, identity.ErrRevokedToken):
		e.Logger.ErrorContext(ctx, "id token revoked during mint", slog.Any("error", err))
		obs.RecordLogin("revoked")
		encodeLoginError(w, revokedTokenMessage)
		return
	case errors.Is(err, identity.ErrUnavailable):
		e.Logger.ErrorContext(ctx, "identity verifier unavailable", slog.Any("error", err))
		obs.RecordLogin("unavailable")
		_ = apiError.EncodeError(w, apiError.VerifierUnavailable, "authentication temporarily unavailable", requestID)
		return
	default:
		e.Logger.ErrorContext(ctx, "failed to mint session credential", slog.Any("error", err))
		obs.RecordLogin("invalid")
		encodeLoginError(w, invalidTokenMessage)
		return
	}

	// Write response
	e.Logger.DebugContext(ctx, "Writing response")
	obs.RecordLogin("success")
	http.SetCookie(w, session.NewCookie(cred, e.Config))
	spa.ServeIndex(w, r, e.Config.Frontend.BuildDir)
}
