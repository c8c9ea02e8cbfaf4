// Package storage contains handlers for file storage endpoints.
package storage

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hdelgado/fileden/internal/env"
)

type StorageResponse struct {
	Message string `json:"message"`
}

// HandleGet is a placeholder until file storage lands.
func HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e := env.EnvFromCtx(ctx)

	resp, err := json.Marshal(StorageResponse{Message: "File storage placeholder"})
	if err != nil {
		e.Logger.ErrorContext(ctx, "Failed to marshal response", slog.Any("error", err))
		return
	}
	w.Header().Add("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		e.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
