package model

import (
	"time"
)

// Post represents a user's post. Likes and comments are embedded.
type Post struct {
	ID        string    `bson:"_id" db:"id" json:"id"`
	UserID    string    `bson:"user_id" db:"user_id" json:"user_id"`
	Text      string    `bson:"text" db:"text" json:"text"`
	Img       string    `bson:"img" db:"img" json:"img"`
	Likes     []string  `bson:"likes" db:"-" json:"likes"`
	Comments  []Comment `bson:"comments" db:"-" json:"comments"`
	CreatedAt time.Time `bson:"created_at" db:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" db:"updated_at" json:"updated_at"`

	// Joined field, resolved by the feed service
	Author *UserSummary `bson:"-" db:"-" json:"author,omitempty"`
}

// LikedBy reports whether userID is in p.Likes.
func (p *Post) LikedBy(userID string) bool {
	return contains(p.Likes, userID)
}

// CreatePostRequest is the request body for creating a post.
// Img is an image payload (data URI or base64), never a URL.
type CreatePostRequest struct {
	Text string `json:"text"`
	Img  string `json:"img"`
}

// LikeResponse reports the like state after a toggle.
type LikeResponse struct {
	Liked   bool   `json:"liked"`
	Message string `json:"message"`
}

// Post constraints
const (
	MaxPostTextLength = 2200
)

// Post errors
var (
	ErrPostNotFound        = NewError(ErrNotFound, "post not found")
	ErrNotPostOwner        = NewError(ErrAuthorization, "you are not authorized to delete this post")
	ErrPostContentRequired = NewError(ErrValidation, "post must have text or image")
	ErrPostTextTooLong     = NewError(ErrValidation, "post text too long")
)
