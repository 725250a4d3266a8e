package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirper/internal/model"
)

func TestFollowService_ToggleTwiceRestoresState(t *testing.T) {
	bothModes(t, func(t *testing.T, transactional bool) {
		f := newFixture(transactional)
		ctx := context.Background()
		alice := seedUser(t, f, "alice")
		bob := seedUser(t, f, "bob")

		following, err := f.followSvc.FollowUnfollow(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, following)
		assert.Equal(t, []string{alice.ID}, getUser(t, f, bob.ID).Following)
		assert.Equal(t, []string{bob.ID}, getUser(t, f, alice.ID).Followers)

		following, err = f.followSvc.FollowUnfollow(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, following)
		assert.Empty(t, getUser(t, f, bob.ID).Following)
		assert.Empty(t, getUser(t, f, alice.ID).Followers)
	})
}

func TestFollowService_FollowNotifiesOnce(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	alice := seedUser(t, f, "alice")
	bob := seedUser(t, f, "bob")

	_, err := f.followSvc.FollowUnfollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = f.followSvc.FollowUnfollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	notifications := f.notifs.all()
	require.Len(t, notifications, 1, "unfollow must not notify")
	assert.Equal(t, bob.ID, notifications[0].From)
	assert.Equal(t, alice.ID, notifications[0].To)
	assert.Equal(t, model.NotificationTypeFollow, notifications[0].Type)
	assert.False(t, notifications[0].Read)
}

func TestFollowService_Self(t *testing.T) {
	f := newFixture(true)
	alice := seedUser(t, f, "alice")

	_, err := f.followSvc.FollowUnfollow(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, model.ErrCannotFollowSelf)
	assert.ErrorIs(t, err, model.ErrSelfReference)
	assert.Empty(t, getUser(t, f, alice.ID).Following)
}

func TestFollowService_UnknownUsers(t *testing.T) {
	f := newFixture(true)
	alice := seedUser(t, f, "alice")

	_, err := f.followSvc.FollowUnfollow(context.Background(), alice.ID, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.followSvc.FollowUnfollow(context.Background(), "missing", alice.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestFollowService_SecondWriteFails(t *testing.T) {
	errStore := model.Transient("add follower", errors.New("connection reset"))

	bothModes(t, func(t *testing.T, transactional bool) {
		f := newFixture(transactional)
		alice := seedUser(t, f, "alice")
		bob := seedUser(t, f, "bob")
		f.store.failOn("AddFollower", errStore)

		_, err := f.followSvc.FollowUnfollow(context.Background(), bob.ID, alice.ID)
		assert.ErrorIs(t, err, model.ErrTransient)

		assert.Empty(t, getUser(t, f, bob.ID).Following, "following side must be undone")
		assert.Empty(t, getUser(t, f, alice.ID).Followers)
		assert.Empty(t, f.notifs.all())
	})
}

func TestFollowService_NotificationFails(t *testing.T) {
	bothModes(t, func(t *testing.T, transactional bool) {
		f := newFixture(transactional)
		alice := seedUser(t, f, "alice")
		bob := seedUser(t, f, "bob")
		f.store.failOn("NotificationCreate", errors.New("insert failed"))

		_, err := f.followSvc.FollowUnfollow(context.Background(), bob.ID, alice.ID)
		require.Error(t, err)

		assert.Empty(t, getUser(t, f, bob.ID).Following)
		assert.Empty(t, getUser(t, f, alice.ID).Followers)
	})
}

func TestFollowService_UnfollowSecondWriteFails(t *testing.T) {
	bothModes(t, func(t *testing.T, transactional bool) {
		f := newFixture(transactional)
		ctx := context.Background()
		alice := seedUser(t, f, "alice")
		bob := seedUser(t, f, "bob")

		_, err := f.followSvc.FollowUnfollow(ctx, bob.ID, alice.ID)
		require.NoError(t, err)

		f.store.failOn("RemoveFollower", errors.New("write failed"))
		_, err = f.followSvc.FollowUnfollow(ctx, bob.ID, alice.ID)
		require.Error(t, err)

		assert.Equal(t, []string{alice.ID}, getUser(t, f, bob.ID).Following, "edge stays whole")
		assert.Equal(t, []string{bob.ID}, getUser(t, f, alice.ID).Followers)
	})
}

func TestFollowService_SuggestUsers(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	me := seedUser(t, f, "me")
	var others []string
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		others = append(others, seedUser(t, f, name).ID)
	}

	// Follow the first two sampled users.
	for _, id := range others[:2] {
		_, err := f.followSvc.FollowUnfollow(ctx, me.ID, id)
		require.NoError(t, err)
	}

	suggested, err := f.followSvc.SuggestUsers(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, suggested, model.SuggestionCount)

	for _, u := range suggested {
		assert.NotEqual(t, me.ID, u.ID)
		assert.NotContains(t, others[:2], u.ID)
		assert.Empty(t, u.PasswordHashed, "credentials must be stripped")
	}
}

func TestFollowService_SuggestUsers_FilterAfterSampling(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	me := seedUser(t, f, "me")

	// Pool of 10 others, of which 8 are already followed; the 11th user never
	// makes it into the sample.
	var ids []string
	for i := 0; i < 11; i++ {
		ids = append(ids, seedUser(t, f, "user"+string(rune('a'+i))).ID)
	}
	for _, id := range ids[:8] {
		_, err := f.followSvc.FollowUnfollow(ctx, me.ID, id)
		require.NoError(t, err)
	}

	suggested, err := f.followSvc.SuggestUsers(ctx, me.ID)
	require.NoError(t, err)
	assert.Len(t, suggested, 2, "filtering happens after sampling")
	for _, u := range suggested {
		assert.NotEqual(t, ids[10], u.ID)
	}
}
