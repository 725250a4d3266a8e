package model

import (
	"regexp"
	"time"
)

// User represents a user in the system.
// Follow edges are stored redundantly: B in A.Following iff A in B.Followers.
type User struct {
	ID             string    `bson:"_id" db:"id" json:"id"`
	Username       string    `bson:"username" db:"username" json:"username"`
	Email          string    `bson:"email" db:"email" json:"email"`
	PasswordHashed string    `bson:"password_hashed" db:"password_hashed" json:"-"` // "-" hides from JSON output
	FullName       string    `bson:"full_name" db:"full_name" json:"full_name"`
	Bio            string    `bson:"bio" db:"bio" json:"bio"`
	Link           string    `bson:"link" db:"link" json:"link"`
	ProfileImg     string    `bson:"profile_img" db:"profile_img" json:"profile_img"`
	CoverImg       string    `bson:"cover_img" db:"cover_img" json:"cover_img"`
	Followers      []string  `bson:"followers" db:"-" json:"followers"`
	Following      []string  `bson:"following" db:"-" json:"following"`
	LikedPosts     []string  `bson:"liked_posts" db:"-" json:"liked_posts"`
	CreatedAt      time.Time `bson:"created_at" db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" db:"updated_at" json:"updated_at"`
}

// UserSummary is the credential-free view embedded in posts, comments and
// notifications.
type UserSummary struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	ProfileImg string `json:"profile_img"`
}

// Summary returns the embeddable view of u.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		ProfileImg: u.ProfileImg,
	}
}

// Public returns a copy of u with the credential hash cleared.
func (u User) Public() User {
	u.PasswordHashed = ""
	return u
}

// IsFollowing reports whether u follows userID.
func (u *User) IsFollowing(userID string) bool {
	return contains(u.Following, userID)
}

// HasLiked reports whether postID is in u's liked posts.
func (u *User) HasLiked(postID string) bool {
	return contains(u.LikedPosts, postID)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// SignupRequest represents the data needed to register a new user
type SignupRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateUserRequest carries profile changes. Empty fields keep their current
// value. ProfileImg and CoverImg are image payloads (data URIs), not URLs.
type UpdateUserRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	Bio             string `json:"bio"`
	Link            string `json:"link"`
	ProfileImg      string `json:"profile_img"`
	CoverImg        string `json:"cover_img"`
}

// AuthResponse is returned after signup and login.
type AuthResponse struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// User constraints
const (
	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether email looks like a deliverable address.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = NewError(ErrNotFound, "user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = NewError(ErrConflict, "username already exists")

	// ErrEmailExists is returned when attempting to create a user with a taken email
	ErrEmailExists = NewError(ErrConflict, "email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = NewError(ErrAuthentication, "invalid username or password")

	ErrFullNameRequired = NewError(ErrValidation, "full name is required")
	ErrUsernameRequired = NewError(ErrValidation, "username is required")
	ErrEmailRequired    = NewError(ErrValidation, "email is required")
	ErrPasswordRequired = NewError(ErrValidation, "password is required")
	ErrInvalidEmail     = NewError(ErrValidation, "invalid email address")
	ErrPasswordTooShort = NewError(ErrValidation, "password must be at least 6 characters long")
	ErrPasswordPair     = NewError(ErrValidation, "please provide both current password and new password")
	ErrWrongPassword    = NewError(ErrValidation, "current password is incorrect")
)
