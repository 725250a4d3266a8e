package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"chirper/internal/httputil"
	"chirper/internal/model"
)

type graphService interface {
	FollowUnfollow(ctx context.Context, actorID, targetID string) (bool, error)
	SuggestUsers(ctx context.Context, actorID string) ([]model.User, error)
}

type FollowHandler struct {
	graph graphService
	log   *zap.Logger
}

func NewFollowHandler(graph graphService, log *zap.Logger) *FollowHandler {
	return &FollowHandler{
		graph: graph,
		log:   log.Named("follow_handler"),
	}
}

// FollowUnfollow handles POST /api/users/follow/{id}
func (h *FollowHandler) FollowUnfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathID(w, r)
	if !ok {
		return
	}

	following, err := h.graph.FollowUnfollow(r.Context(), userID, targetID)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	msg := "User unfollowed successfully"
	if following {
		msg = "User followed successfully"
	}
	httputil.WriteJSON(w, http.StatusOK, model.FollowResponse{Following: following, Message: msg})
}

// Suggested handles GET /api/users/suggested
func (h *FollowHandler) Suggested(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	users, err := h.graph.SuggestUsers(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, users)
}
