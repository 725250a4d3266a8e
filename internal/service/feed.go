package service

import (
	"context"

	"go.uber.org/zap"

	"chirper/internal/model"
	"chirper/internal/repository"
)

// FeedService assembles post listings. Every listing is newest first with
// authors and commenters resolved to credential-free summaries.
type FeedService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewFeedService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	log *zap.Logger,
) *FeedService {
	return &FeedService{
		postRepo: postRepo,
		userRepo: userRepo,
		log:      log.Named("feed_service"),
	}
}

// ComposeFeed returns posts by the users actorID follows. Following nobody
// yields an empty feed.
func (s *FeedService) ComposeFeed(ctx context.Context, actorID string) ([]model.Post, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if len(actor.Following) == 0 {
		return []model.Post{}, nil
	}

	posts, err := s.postRepo.ListByAuthors(ctx, actor.Following)
	if err != nil {
		return nil, err
	}
	return s.hydratePosts(ctx, posts)
}

// ListAll returns every post.
func (s *FeedService) ListAll(ctx context.Context) ([]model.Post, error) {
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.hydratePosts(ctx, posts)
}

// ListUserPosts returns the posts authored by username.
func (s *FeedService) ListUserPosts(ctx context.Context, username string) ([]model.Post, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByAuthors(ctx, []string{user.ID})
	if err != nil {
		return nil, err
	}
	return s.hydratePosts(ctx, posts)
}

// ListLikedPosts returns the posts in userID's liked set. Ids of posts that
// no longer exist are skipped.
func (s *FeedService) ListLikedPosts(ctx context.Context, userID string) ([]model.Post, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByIDs(ctx, user.LikedPosts)
	if err != nil {
		return nil, err
	}
	return s.hydratePosts(ctx, posts)
}

func (s *FeedService) hydratePosts(ctx context.Context, posts []model.Post) ([]model.Post, error) {
	return hydratePosts(ctx, s.userRepo, s.log, posts)
}

// hydratePosts sets Author on every post and comment with one user lookup.
func hydratePosts(ctx context.Context, userRepo repository.UserRepository, log *zap.Logger, posts []model.Post) ([]model.Post, error) {
	var ids []string
	for _, p := range posts {
		ids = append(ids, p.UserID)
		for _, c := range p.Comments {
			ids = append(ids, c.UserID)
		}
	}

	summaries, err := userSummaries(ctx, userRepo, ids)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		p := &posts[i]
		p.Author = summaries[p.UserID]
		if p.Author == nil {
			log.Warn("post author not found", zap.String("post_id", p.ID), zap.String("user_id", p.UserID))
		}
		for j := range p.Comments {
			p.Comments[j].Author = summaries[p.Comments[j].UserID]
		}
	}
	return posts, nil
}
