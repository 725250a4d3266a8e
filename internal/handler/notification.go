package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"chirper/internal/httputil"
	"chirper/internal/model"
)

type inboxService interface {
	List(ctx context.Context, userID string) ([]model.Notification, error)
	DeleteAll(ctx context.Context, userID string) error
}

type NotificationHandler struct {
	inbox inboxService
	log   *zap.Logger
}

func NewNotificationHandler(inbox inboxService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		inbox: inbox,
		log:   log.Named("notification_handler"),
	}
}

// List handles GET /api/notifications
// Returns the caller's notifications and marks them read.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	notifications, err := h.inbox.List(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}

	httputil.WriteJSON(w, http.StatusOK, notifications)
}

// DeleteAll handles DELETE /api/notifications
func (h *NotificationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	if err := h.inbox.DeleteAll(r.Context(), userID); err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	httputil.WriteMessage(w, "Notifications deleted successfully")
}
