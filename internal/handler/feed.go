package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chirper/internal/httputil"
	"chirper/internal/model"
)

type feedService interface {
	ComposeFeed(ctx context.Context, actorID string) ([]model.Post, error)
	ListAll(ctx context.Context) ([]model.Post, error)
	ListUserPosts(ctx context.Context, username string) ([]model.Post, error)
	ListLikedPosts(ctx context.Context, userID string) ([]model.Post, error)
}

// FeedHandler serves the post listings. Each returns a JSON array, newest first.
type FeedHandler struct {
	feed feedService
	log  *zap.Logger
}

func NewFeedHandler(feed feedService, log *zap.Logger) *FeedHandler {
	return &FeedHandler{
		feed: feed,
		log:  log.Named("feed_handler"),
	}
}

// All handles GET /api/posts/all
func (h *FeedHandler) All(w http.ResponseWriter, r *http.Request) {
	h.writePosts(w)(h.feed.ListAll(r.Context()))
}

// Following handles GET /api/posts/following
func (h *FeedHandler) Following(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	h.writePosts(w)(h.feed.ComposeFeed(r.Context(), userID))
}

// Liked handles GET /api/posts/likes/{id}
func (h *FeedHandler) Liked(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	h.writePosts(w)(h.feed.ListLikedPosts(r.Context(), userID))
}

// UserPosts handles GET /api/posts/user/{username}
func (h *FeedHandler) UserPosts(w http.ResponseWriter, r *http.Request) {
	h.writePosts(w)(h.feed.ListUserPosts(r.Context(), chi.URLParam(r, "username")))
}

func (h *FeedHandler) writePosts(w http.ResponseWriter) func([]model.Post, error) {
	return func(posts []model.Post, err error) {
		if err != nil {
			httputil.WriteServiceError(w, h.log, err)
			return
		}
		if posts == nil {
			posts = []model.Post{}
		}
		httputil.WriteJSON(w, http.StatusOK, posts)
	}
}
