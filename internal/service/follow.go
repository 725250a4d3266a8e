package service

import (
	"context"

	"go.uber.org/zap"

	"chirper/internal/model"
	"chirper/internal/repository"
)

// FollowService owns the follow graph. An edge is stored on both users:
// B in A.Following iff A in B.Followers.
type FollowService struct {
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	tx        repository.TxRunner
	log       *zap.Logger
}

func NewFollowService(
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	tx repository.TxRunner,
	log *zap.Logger,
) *FollowService {
	return &FollowService{
		userRepo:  userRepo,
		notifRepo: notifRepo,
		tx:        tx,
		log:       log.Named("follow_service"),
	}
}

// FollowUnfollow toggles the edge from actorID to targetID and reports
// whether actorID follows targetID afterwards.
func (s *FollowService) FollowUnfollow(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, model.ErrCannotFollowSelf
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return false, err
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	if actor.IsFollowing(targetID) {
		if err := s.unfollow(ctx, actorID, targetID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.follow(ctx, actorID, targetID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FollowService) follow(ctx context.Context, actorID, targetID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		added, err := s.userRepo.AddFollowing(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if !added {
			// A concurrent request already followed.
			return nil
		}

		undoFollowing := func(ctx context.Context) error {
			_, err := s.userRepo.RemoveFollowing(ctx, actorID, targetID)
			return err
		}

		if _, err := s.userRepo.AddFollower(ctx, targetID, actorID); err != nil {
			compensate(ctx, s.tx, s.log, "follow", undoFollowing)
			return err
		}

		if err := s.notifRepo.Create(ctx, newNotification(actorID, targetID, model.NotificationTypeFollow)); err != nil {
			compensate(ctx, s.tx, s.log, "follow", undoFollowing, func(ctx context.Context) error {
				_, err := s.userRepo.RemoveFollower(ctx, targetID, actorID)
				return err
			})
			return err
		}

		s.log.Info("followed", zap.String("actor_id", actorID), zap.String("target_id", targetID))
		return nil
	})
}

func (s *FollowService) unfollow(ctx context.Context, actorID, targetID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		removed, err := s.userRepo.RemoveFollowing(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}

		if _, err := s.userRepo.RemoveFollower(ctx, targetID, actorID); err != nil {
			compensate(ctx, s.tx, s.log, "unfollow", func(ctx context.Context) error {
				_, err := s.userRepo.AddFollowing(ctx, actorID, targetID)
				return err
			})
			return err
		}

		s.log.Info("unfollowed", zap.String("actor_id", actorID), zap.String("target_id", targetID))
		return nil
	})
}

// SuggestUsers samples a fixed pool of other users, then drops the ones
// actorID already follows. The result can hold fewer than
// model.SuggestionCount users.
func (s *FollowService) SuggestUsers(ctx context.Context, actorID string) ([]model.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	pool, err := s.userRepo.Sample(ctx, actorID, model.SuggestionPoolSize)
	if err != nil {
		return nil, err
	}

	suggested := make([]model.User, 0, model.SuggestionCount)
	for _, u := range pool {
		if u.ID == actorID || actor.IsFollowing(u.ID) {
			continue
		}
		suggested = append(suggested, u.Public())
		if len(suggested) == model.SuggestionCount {
			break
		}
	}
	return suggested, nil
}
