// Package groups contains handlers for group management endpoints.
package groups

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hdelgado/fileden/internal/env"
)

type ListResponse struct {
	Message string `json:"message"`
}

// HandleList is a placeholder until group management lands.
func HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e := env.EnvFromCtx(ctx)

	resp, err := json.Marshal(ListResponse{Message: "Group management placeholder"})
	if err != nil {
		e.Logger.ErrorContext(ctx, "Failed to marshal response", slog.Any("error", err))
		return
	}
	w.Header().Add("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		e.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
