package model

// Suggestion sampling: a fixed pool is drawn first, then filtered.
const (
	SuggestionPoolSize = 10
	SuggestionCount    = 4
)

// FollowResponse reports the edge state after a toggle.
type FollowResponse struct {
	Following bool   `json:"following"`
	Message   string `json:"message"`
}

var (
	ErrCannotFollowSelf = NewError(ErrSelfReference, "you can't follow/unfollow yourself")
)
