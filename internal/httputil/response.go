package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"chirper/internal/model"
)

// Error codes returned in the error envelope
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse is the body of operations that only report success.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// Headers are already sent; nothing useful to do on failure.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteMessage writes {"message": msg} with status 200.
func WriteMessage(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// WriteError writes an error response:
// {"error": {"code": "ERROR_CODE", "message": "Human readable message"}}
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	response := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
	WriteJSON(w, status, response)
}

// StatusFor maps an error to its HTTP status and error code by kind.
func StatusFor(err error) (int, string) {
	switch model.KindOf(err) {
	case model.ErrValidation, model.ErrSelfReference:
		return http.StatusBadRequest, ErrCodeBadRequest
	case model.ErrAuthentication:
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case model.ErrAuthorization:
		return http.StatusForbidden, ErrCodeForbidden
	case model.ErrNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case model.ErrConflict:
		return http.StatusConflict, ErrCodeConflict
	case model.ErrTransient:
		return http.StatusServiceUnavailable, ErrCodeUnavailable
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// WriteServiceError writes the envelope for an error returned by a service.
// Client errors carry their own message. Transient and unexpected errors are
// logged and answered with a generic message.
func WriteServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	status, code := StatusFor(err)
	switch status {
	case http.StatusServiceUnavailable:
		log.Warn("dependency unavailable", zap.Error(err))
		msg := "Service temporarily unavailable"
		if errors.Is(err, model.ErrMediaUnavailable) {
			msg = model.ErrMediaUnavailable.Error()
		}
		WriteError(w, status, code, msg)
	case http.StatusInternalServerError:
		log.Error("unexpected error", zap.Error(err))
		WriteError(w, status, code, "Internal server error")
	default:
		WriteError(w, status, code, err.Error())
	}
}

// Common error response helpers

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// WriteUnauthorized writes a 401 Unauthorized error
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// WriteTooLarge writes a 413 Request Entity Too Large error
func WriteTooLarge(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, message)
}
