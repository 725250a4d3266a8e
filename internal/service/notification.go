package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chirper/internal/model"
	"chirper/internal/repository"
)

// NotificationService reads and clears a user's notifications. They are only
// ever created as a side effect of follow and like.
type NotificationService struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	log       *zap.Logger
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	log *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		log:       log.Named("notification_service"),
	}
}

func newNotification(from, to, notifType string) *model.Notification {
	return &model.Notification{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Type:      notifType,
		CreatedAt: time.Now().UTC(),
	}
}

// List returns the user's notifications newest first with the sender
// resolved, then marks them all read.
func (s *NotificationService) List(ctx context.Context, userID string) ([]model.Notification, error) {
	notifications, err := s.notifRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(notifications))
	for _, n := range notifications {
		ids = append(ids, n.From)
	}
	summaries, err := userSummaries(ctx, s.userRepo, ids)
	if err != nil {
		return nil, err
	}
	for i := range notifications {
		notifications[i].FromUser = summaries[notifications[i].From]
	}

	if err := s.notifRepo.MarkAllRead(ctx, userID); err != nil {
		return nil, err
	}
	return notifications, nil
}

// DeleteAll removes every notification addressed to userID.
func (s *NotificationService) DeleteAll(ctx context.Context, userID string) error {
	if err := s.notifRepo.DeleteForUser(ctx, userID); err != nil {
		return err
	}
	s.log.Debug("notifications cleared", zap.String("user_id", userID))
	return nil
}

// userSummaries resolves ids to credential-free summaries. Unknown ids are
// left out of the map.
func userSummaries(ctx context.Context, repo repository.UserRepository, ids []string) (map[string]*model.UserSummary, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	users, err := repo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*model.UserSummary, len(users))
	for i := range users {
		result[users[i].ID] = users[i].Summary()
	}
	return result, nil
}
