// Package files contains handlers for file management endpoints.
package files

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hdelgado/fileden/internal/env"
)

type CleanResponse struct {
	Message string `json:"message"`
}

// HandleClean is a placeholder until file cleaning lands.
func HandleClean(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e := env.EnvFromCtx(ctx)

	resp, err := json.Marshal(CleanResponse{Message: "File cleaning placeholder"})
	if err != nil {
		e.Logger.ErrorContext(ctx, "Failed to marshal response", slog.Any("error", err))
		return
	}
	w.Header().Add("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		e.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
