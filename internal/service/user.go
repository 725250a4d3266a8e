package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"chirper/internal/model"
	"chirper/internal/repository"
)

// UserService handles business logic for user accounts and profiles
type UserService struct {
	repo  repository.UserRepository
	media MediaUploader // nil when media storage is not configured
	log   *zap.Logger
}

func NewUserService(repo repository.UserRepository, media MediaUploader, log *zap.Logger) *UserService {
	return &UserService{
		repo:  repo,
		media: media,
		log:   log.Named("user_service"),
	}
}

// Signup creates a new user account.
func (s *UserService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	fullName := strings.TrimSpace(req.FullName)
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	switch {
	case fullName == "":
		return nil, model.ErrFullNameRequired
	case username == "":
		return nil, model.ErrUsernameRequired
	case email == "":
		return nil, model.ErrEmailRequired
	case req.Password == "":
		return nil, model.ErrPasswordRequired
	}

	if !model.IsValidEmail(email) {
		return nil, model.ErrInvalidEmail
	}

	// Check if username already exists
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	exists, err = s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	if len(req.Password) < model.MinPasswordLength {
		return nil, model.ErrPasswordTooShort
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		PasswordHashed: string(hashedPassword),
		FullName:       fullName,
		Followers:      []string{},
		Following:      []string{},
		LikedPosts:     []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Unique indexes catch a signup racing this one.
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID))
	public := user.Public()
	return &public, nil
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if model.KindOf(err) == model.ErrNotFound {
			// Don't reveal whether username exists or not
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	// Compare password with hash
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	public := user.Public()
	return &public, nil
}

// GetByID retrieves a user by ID without credentials.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// GetProfile retrieves a user's public profile by username.
func (s *UserService) GetProfile(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// UpdateUser applies profile changes. Empty fields keep their current value.
// New images are uploaded before the save; replaced images are destroyed
// only after it succeeds.
func (s *UserService) UpdateUser(ctx context.Context, userID string, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if (req.CurrentPassword == "") != (req.NewPassword == "") {
		return nil, model.ErrPasswordPair
	}
	if req.CurrentPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.CurrentPassword)); err != nil {
			return nil, model.ErrWrongPassword
		}
		if len(req.NewPassword) < model.MinPasswordLength {
			return nil, model.ErrPasswordTooShort
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHashed = string(hashed)
	}

	if username := strings.TrimSpace(req.Username); username != "" && username != user.Username {
		exists, err := s.repo.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, model.ErrUsernameExists
		}
		user.Username = username
	}

	if email := strings.TrimSpace(req.Email); email != "" && email != user.Email {
		if !model.IsValidEmail(email) {
			return nil, model.ErrInvalidEmail
		}
		exists, err := s.repo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, model.ErrEmailExists
		}
		user.Email = email
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Link != "" {
		user.Link = req.Link
	}

	var uploaded, replaced []string
	images := []struct {
		payload string
		kind    model.MediaKind
		field   *string
	}{
		{req.ProfileImg, model.MediaKindAvatar, &user.ProfileImg},
		{req.CoverImg, model.MediaKindCover, &user.CoverImg},
	}
	for _, img := range images {
		if img.payload == "" {
			continue
		}
		res, err := uploadImage(ctx, s.media, img.payload, img.kind)
		if err != nil {
			s.destroyAll(ctx, uploaded)
			return nil, err
		}
		uploaded = append(uploaded, res.URL)
		if *img.field != "" {
			replaced = append(replaced, *img.field)
		}
		*img.field = res.URL
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		s.destroyAll(ctx, uploaded)
		return nil, err
	}

	s.destroyAll(ctx, replaced)

	public := user.Public()
	return &public, nil
}

// destroyAll deletes images by URL, logging failures.
func (s *UserService) destroyAll(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := destroyImage(ctx, s.media, url); err != nil {
			s.log.Warn("failed to destroy image", zap.String("url", url), zap.Error(err))
		}
	}
}
