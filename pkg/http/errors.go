package http

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in the "error" field of failed results.
const (
	CodeBadRequest           = "bad_request"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeInvalidSecondFactor  = "invalid_second_factor"
	CodeAccountLocked        = "account_locked"
	CodeWeakPassword         = "weak_password"
	CodeMissingField         = "missing_field"
	CodeInvalidParameter     = "invalid_parameter"
	CodeGeneratorUnavailable = "generator_unavailable"
	CodeTimeout              = "timeout"
	CodeBackendUnavailable   = "backend_unavailable"
	CodeSessionExpired       = "session_expired"
	CodeUnexpectedStage      = "unexpected_stage"
	CodeUnauthorized         = "unauthorized"
	CodeNotFound             = "not_found"
	CodeConflict             = "conflict"
	CodeRateLimited          = "rate_limit_exceeded"
	CodeInternal             = "internal_error"
)

// Result is embedded in every response body so callers can branch on "ok".
type Result struct {
	OK bool `json:"ok"`
}

// Success returns the result marker for successful responses.
func Success() Result {
	return Result{OK: true}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a failed result.
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteErrorWithDetails(w, statusCode, errorCode, message, nil)
}

// WriteErrorWithDetails writes a failed result carrying structured details,
// such as the missing password requirements or remaining attempts.
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, errorCode, message string, details any) {
	WriteJSON(w, statusCode, ErrorResponse{
		OK:      false,
		Error:   errorCode,
		Message: message,
		Details: details,
	})
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeBadRequest, message)
}

func WriteMissingField(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeMissingField, message)
}

func WriteInvalidParameter(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeInvalidParameter, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeConflict, message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, CodeRateLimited, message)
}

func WriteServiceUnavailable(w http.ResponseWriter, errorCode, message string) {
	WriteError(w, http.StatusServiceUnavailable, errorCode, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, message)
}
