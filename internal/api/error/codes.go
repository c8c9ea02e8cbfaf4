package error

import "net/http"

type ErrorCode string

const (
	UnknownError        ErrorCode = "unknown_error"
	InternalServerError ErrorCode = "internal_server_error"
	BadRequest          ErrorCode = "bad_request"
	InvalidIDToken      ErrorCode = "invalid_id_token"
	RevokedIDToken      ErrorCode = "revoked_id_token"
	MissingSession      ErrorCode = "missing_session"
	InvalidSession      ErrorCode = "invalid_session"
	RevokedSession      ErrorCode = "revoked_session"
	VerifierUnavailable ErrorCode = "verifier_unavailable"
)

var errorCodeToStatusCode = map[ErrorCode]int{
	UnknownError:        0, // No error code - unknown
	InternalServerError: http.StatusInternalServerError,
	BadRequest:          http.StatusBadRequest,
	InvalidIDToken:      http.StatusUnauthorized,
	RevokedIDToken:      http.StatusUnauthorized,
	MissingSession:      http.StatusUnauthorized,
	InvalidSession:      http.StatusUnauthorized,
	RevokedSession:      http.StatusUnauthorized,
	VerifierUnavailable: http.StatusServiceUnavailable,
}

func (ec ErrorCode) StatusCode() int {
	return errorCodeToStatusCode[ec]
}

func (ec ErrorCode) String() string {
	return string(ec)
}
