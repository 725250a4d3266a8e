package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"chirper/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewPostgresNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create inserts a new notification.
func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, from_user, to_user, type, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := executor(ctx, r.db).ExecContext(ctx, query, n.ID, n.From, n.To, n.Type, n.Read, n.CreatedAt)
	return storeErr("insert notification", err)
}

// ListForUser returns the recipient's notifications, newest first.
func (r *notificationRepository) ListForUser(ctx context.Context, userID string) ([]model.Notification, error) {
	query := `
		SELECT id, from_user, to_user, type, read, created_at
		FROM notifications
		WHERE to_user = $1
		ORDER BY created_at DESC
	`
	notifications := []model.Notification{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &notifications, query, userID); err != nil {
		return nil, storeErr("get notifications", err)
	}
	return notifications, nil
}

// MarkAllRead marks all notifications for a user as read
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE to_user = $1 AND read = FALSE`, userID)
	return storeErr("mark notifications read", err)
}

func (r *notificationRepository) DeleteForUser(ctx context.Context, userID string) error {
	_, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM notifications WHERE to_user = $1`, userID)
	return storeErr("delete notifications", err)
}
