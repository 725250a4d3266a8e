package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chirper/internal/httputil"
	"chirper/internal/model"
)

type profileService interface {
	GetProfile(ctx context.Context, username string) (*model.User, error)
	UpdateUser(ctx context.Context, userID string, req *model.UpdateUserRequest) (*model.User, error)
}

type UserHandler struct {
	users profileService
	log   *zap.Logger
}

func NewUserHandler(users profileService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		users: users,
		log:   log.Named("user_handler"),
	}
}

// GetProfile handles GET /api/users/profile/{username}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.GetProfile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Update handles POST /api/users/update
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.UpdateUser(r.Context(), userID, &req)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}
