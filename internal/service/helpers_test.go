package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chirper/internal/model"
)

var seedEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// seedUser stores a user directly. Each call gets a later CreatedAt.
func seedUser(t *testing.T, f *fixture, username string) *model.User {
	t.Helper()
	f.store.mu.Lock()
	n := len(f.store.users)
	f.store.mu.Unlock()

	u := &model.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          username + "@example.com",
		PasswordHashed: "hash",
		FullName:       username,
		Followers:      []string{},
		Following:      []string{},
		LikedPosts:     []string{},
		CreatedAt:      seedEpoch.Add(time.Duration(n) * time.Minute),
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func seedPost(t *testing.T, f *fixture, authorID, text string, createdAt time.Time) *model.Post {
	t.Helper()
	p := &model.Post{
		ID:        uuid.NewString(),
		UserID:    authorID,
		Text:      text,
		Likes:     []string{},
		Comments:  []model.Comment{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, f.posts.Create(context.Background(), p))
	return p
}

func getUser(t *testing.T, f *fixture, id string) *model.User {
	t.Helper()
	u, err := f.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func getPost(t *testing.T, f *fixture, id string) *model.Post {
	t.Helper()
	p, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

// bothModes runs fn once against a transactional store and once against one
// that relies on compensation.
func bothModes(t *testing.T, fn func(t *testing.T, transactional bool)) {
	t.Run("transactional", func(t *testing.T) { fn(t, true) })
	t.Run("compensating", func(t *testing.T) { fn(t, false) })
}
