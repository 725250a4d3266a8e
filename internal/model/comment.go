package model

import (
	"time"
)

// Comment is an entry in a post's ordered comment sequence.
type Comment struct {
	ID        string    `bson:"_id" db:"id" json:"id"`
	UserID    string    `bson:"user_id" db:"user_id" json:"user_id"`
	Text      string    `bson:"text" db:"text" json:"text"`
	CreatedAt time.Time `bson:"created_at" db:"created_at" json:"created_at"`

	Author *UserSummary `bson:"-" db:"-" json:"author,omitempty"` // Joined field
}

// CommentRequest is the request body for commenting on a post.
type CommentRequest struct {
	Text string `json:"text"`
}

// Comment constraints
const (
	MaxCommentLength = 2200
)

// Comment errors
var (
	ErrCommentRequired = NewError(ErrValidation, "text field is required")
	ErrCommentTooLong  = NewError(ErrValidation, "comment too long")
)
