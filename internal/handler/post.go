package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"chirper/internal/httputil"
	"chirper/internal/model"
)

type postService interface {
	Create(ctx context.Context, userID string, req model.CreatePostRequest) (*model.Post, error)
	Delete(ctx context.Context, userID, postID string) error
	LikeUnlike(ctx context.Context, userID, postID string) (bool, error)
	Comment(ctx context.Context, userID, postID, text string) (*model.Post, error)
}

type PostHandler struct {
	posts postService
	log   *zap.Logger
}

func NewPostHandler(posts postService, log *zap.Logger) *PostHandler {
	return &PostHandler{
		posts: posts,
		log:   log.Named("post_handler"),
	}
}

// Create handles POST /api/posts/create
// Body: {"text": "...", "img": "data:image/...;base64,..."}; either may be empty but not both.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req model.CreatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.posts.Create(r.Context(), userID, req)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Delete handles DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), userID, postID); err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	httputil.WriteMessage(w, "Post deleted successfully")
}

// LikeUnlike handles POST /api/posts/like/{id}
func (h *PostHandler) LikeUnlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r)
	if !ok {
		return
	}

	liked, err := h.posts.LikeUnlike(r.Context(), userID, postID)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	msg := "Post unliked successfully"
	if liked {
		msg = "Post liked successfully"
	}
	httputil.WriteJSON(w, http.StatusOK, model.LikeResponse{Liked: liked, Message: msg})
}
