package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chirper/internal/model"
	"chirper/internal/repository"
)

// PostService handles post creation, deletion, likes and comments.
type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	tx        repository.TxRunner
	media     MediaUploader // nil when media storage is not configured
	log       *zap.Logger
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	tx repository.TxRunner,
	media MediaUploader,
	log *zap.Logger,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		tx:        tx,
		media:     media,
		log:       log.Named("post_service"),
	}
}

// Create stores a new post. An image payload is uploaded first and the post
// keeps the returned URL.
func (s *PostService) Create(ctx context.Context, userID string, req model.CreatePostRequest) (*model.Post, error) {
	if strings.TrimSpace(req.Text) == "" && req.Img == "" {
		return nil, model.ErrPostContentRequired
	}
	if utf8.RuneCountInString(req.Text) > model.MaxPostTextLength {
		return nil, model.ErrPostTextTooLong
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var imgURL string
	if req.Img != "" {
		res, err := uploadImage(ctx, s.media, req.Img, model.MediaKindPost)
		if err != nil {
			return nil, err
		}
		imgURL = res.URL
	}

	now := time.Now().UTC()
	post := &model.Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      req.Text,
		Img:       imgURL,
		Likes:     []string{},
		Comments:  []model.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if derr := destroyImage(context.WithoutCancel(ctx), s.media, imgURL); derr != nil {
			s.log.Warn("failed to destroy orphaned image", zap.String("url", imgURL), zap.Error(derr))
		}
		return nil, err
	}

	post.Author = author.Summary()
	s.log.Info("post created", zap.String("post_id", post.ID), zap.String("user_id", userID))
	return post, nil
}

// Delete removes a post owned by userID. A failed image deletion is logged
// and does not block removing the record.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return model.ErrNotPostOwner
	}

	if err := destroyImage(ctx, s.media, post.Img); err != nil {
		s.log.Warn("failed to destroy post image",
			zap.String("post_id", postID), zap.String("url", post.Img), zap.Error(err))
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.postRepo.Delete(ctx, postID); err != nil {
			return err
		}
		// Keep likedPosts in step with the post's likes.
		if err := s.userRepo.RemoveLikedPostFromAll(ctx, postID); err != nil {
			if !s.tx.Transactional() {
				s.log.Error("post deleted but liked references remain", zap.String("post_id", postID), zap.Error(err))
				return nil
			}
			return err
		}
		return nil
	})
}

// Comment appends a comment and returns the updated post.
func (s *PostService) Comment(ctx context.Context, userID, postID, text string) (*model.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, model.ErrCommentRequired
	}
	if utf8.RuneCountInString(text) > model.MaxCommentLength {
		return nil, model.ErrCommentTooLong
	}

	comment := &model.Comment{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.postRepo.AddComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	posts, err := hydratePosts(ctx, s.userRepo, s.log, []model.Post{*post})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// LikeUnlike toggles userID's like on postID and reports whether the post is
// liked afterwards. Liking notifies the author, including on self-likes.
func (s *PostService) LikeUnlike(ctx context.Context, userID, postID string) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}

	if post.LikedBy(userID) {
		if err := s.unlike(ctx, userID, post); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.like(ctx, userID, post); err != nil {
		return false, err
	}
	return true, nil
}

func (s *PostService) like(ctx context.Context, userID string, post *model.Post) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		added, err := s.postRepo.AddLike(ctx, post.ID, userID)
		if err != nil {
			return err
		}
		if !added {
			return nil
		}

		undoLike := func(ctx context.Context) error {
			_, err := s.postRepo.RemoveLike(ctx, post.ID, userID)
			return err
		}

		if _, err := s.userRepo.AddLikedPost(ctx, userID, post.ID); err != nil {
			compensate(ctx, s.tx, s.log, "like", undoLike)
			return err
		}

		if err := s.notifRepo.Create(ctx, newNotification(userID, post.UserID, model.NotificationTypeLike)); err != nil {
			compensate(ctx, s.tx, s.log, "like", undoLike, func(ctx context.Context) error {
				_, err := s.userRepo.RemoveLikedPost(ctx, userID, post.ID)
				return err
			})
			return err
		}
		return nil
	})
}

func (s *PostService) unlike(ctx context.Context, userID string, post *model.Post) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		removed, err := s.postRepo.RemoveLike(ctx, post.ID, userID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}

		if _, err := s.userRepo.RemoveLikedPost(ctx, userID, post.ID); err != nil {
			compensate(ctx, s.tx, s.log, "unlike", func(ctx context.Context) error {
				_, err := s.postRepo.AddLike(ctx, post.ID, userID)
				return err
			})
			return err
		}
		return nil
	})
}
