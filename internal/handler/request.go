package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"chirper/internal/httputil"
	"chirper/internal/transport/http/middleware"
)

// decodeJSON reads the request body into dst. It writes the error response
// and returns false when the body is missing, malformed or too large.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteTooLarge(w, "Request body too large")
			return false
		}
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// pathID returns the {id} path parameter, which must be a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httputil.WriteBadRequest(w, "Invalid id")
		return "", false
	}
	return id, true
}

// actorID returns the authenticated user's id set by the auth middleware.
func actorID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return "", false
	}
	return userID, true
}
