package repository

import (
	"context"

	"chirper/internal/model"
)

// TxRunner runs a unit of work that touches more than one document.
// Repositories called with the ctx handed to fn take part in the transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// Transactional reports whether WithinTx gives all-or-nothing semantics.
	// When it doesn't, callers compensate by hand.
	Transactional() bool
}

// UserRepository is the Identity Store.
//
// The Add*/Remove* methods are single conditional array updates: they report
// whether the document changed, so a concurrent duplicate toggle is a no-op.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateProfile writes profile fields and the credential hash, never the edge sets.
	UpdateProfile(ctx context.Context, user *model.User) error

	AddFollower(ctx context.Context, userID, followerID string) (bool, error)
	RemoveFollower(ctx context.Context, userID, followerID string) (bool, error)
	AddFollowing(ctx context.Context, userID, followeeID string) (bool, error)
	RemoveFollowing(ctx context.Context, userID, followeeID string) (bool, error)
	AddLikedPost(ctx context.Context, userID, postID string) (bool, error)
	RemoveLikedPost(ctx context.Context, userID, postID string) (bool, error)
	RemoveLikedPostFromAll(ctx context.Context, postID string) error

	// Sample returns up to size random users other than excludeID.
	Sample(ctx context.Context, excludeID string, size int) ([]model.User, error)
}

// PostRepository is the Content Store. Listings are newest first.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]model.Post, error)
	ListByAuthors(ctx context.Context, userIDs []string) ([]model.Post, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Post, error)

	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)
	// AddComment appends to the post's comment sequence.
	AddComment(ctx context.Context, postID string, comment *model.Comment) error
}

// NotificationRepository is the Notification Store.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// ListForUser returns notifications addressed to userID, newest first.
	ListForUser(ctx context.Context, userID string) ([]model.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	DeleteForUser(ctx context.Context, userID string) error
}
