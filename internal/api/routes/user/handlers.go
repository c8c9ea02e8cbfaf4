// Package user contains handlers for the user resource.
package user

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	apiError "github.com/hdelgado/fileden/internal/api/error"
	"github.com/hdelgado/fileden/internal/api/requestid"
	"github.com/hdelgado/fileden/internal/env"
	"github.com/hdelgado/fileden/internal/principal"
)

type GreetingResponse struct {
	Message string `json:"message"`
}

// HandleGetUser greets the authenticated principal by display name.
func HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	p, ok := principal.FromCtx(ctx)
	if !ok {
		e.Logger.ErrorContext(ctx, "no principal in context on protected route")
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	name := p.Name
	if name == "" {
		name = p.Subject
	}

	// Write response
	e.Logger.DebugContext(ctx, "Writing response")
	resp, err := json.Marshal(GreetingResponse{Message: fmt.Sprintf("Hello %s!", name)})
	if err != nil {
		e.Logger.ErrorContext(ctx, "Failed to marshal response", slog.Any("error", err))
		return
	}
	w.Header().Add("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		e.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
