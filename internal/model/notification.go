package model

import (
	"time"
)

// Notification types
const (
	NotificationTypeFollow = "follow"
	NotificationTypeLike   = "like"
)

// Notification records one follow or like event.
type Notification struct {
	ID        string    `bson:"_id" db:"id" json:"id"`
	From      string    `bson:"from" db:"from_user" json:"from"` // Who triggered it
	To        string    `bson:"to" db:"to_user" json:"to"`       // Recipient
	Type      string    `bson:"type" db:"type" json:"type"`
	Read      bool      `bson:"read" db:"read" json:"read"`
	CreatedAt time.Time `bson:"created_at" db:"created_at" json:"created_at"`

	// Joined field for display
	FromUser *UserSummary `bson:"-" db:"-" json:"from_user,omitempty"`
}
