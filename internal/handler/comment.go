package handler

import (
	"net/http"

	"chirper/internal/httputil"
	"chirper/internal/model"
)

// Comment handles POST /api/posts/comment/{id}
// Appends a comment and returns the updated post.
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req model.CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.posts.Comment(r.Context(), userID, postID, req.Text)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}
