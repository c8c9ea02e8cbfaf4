// Package error defines the API's error codes and response encoding.
package error

import (
	"encoding/json"
	"net/http"
)

// Error is the JSON error body returned by the API.
type Error struct {
	Status  int       `json:"status"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	ErrorID string    `json:"error_id"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// EncodeError writes the error body for the given code. The message is the
// client-facing text; internal causes belong in logs, never here.
func EncodeError(w http.ResponseWriter, code ErrorCode, message, requestID string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.StatusCode())
	return json.NewEncoder(w).Encode(Error{
		Status:  code.StatusCode(),
		Code:    code,
		Message: message,
		ErrorID: requestID,
	})
}

func EncodeInternalError(w http.ResponseWriter, requestID string) error {
	return EncodeError(w, InternalServerError, "Internal Server Error", requestID)
}
