package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"chirper/internal/model"
)

// =============================================================================
// IN-MEMORY STORE
// =============================================================================
//
// memStore backs the user, post and notification fakes with shared state so
// tests can check both sides of a relationship. failOn injects an error into
// a named repository method.

type memStore struct {
	mu            sync.Mutex
	users         map[string]*model.User
	posts         map[string]*model.Post
	notifications []*model.Notification
	failures      map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*model.User),
		posts:    make(map[string]*model.Post),
		failures: make(map[string]error),
	}
}

func (m *memStore) failOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[method] = err
}

// failure must be called with mu held.
func (m *memStore) failure(method string) error {
	return m.failures[method]
}

func cloneUser(u *model.User) *model.User {
	c := *u
	c.Followers = append([]string{}, u.Followers...)
	c.Following = append([]string{}, u.Following...)
	c.LikedPosts = append([]string{}, u.LikedPosts...)
	return &c
}

func clonePost(p *model.Post) *model.Post {
	c := *p
	c.Likes = append([]string{}, p.Likes...)
	c.Comments = append([]model.Comment{}, p.Comments...)
	return &c
}

type memSnapshot struct {
	users         map[string]*model.User
	posts         map[string]*model.Post
	notifications []*model.Notification
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := memSnapshot{
		users:         make(map[string]*model.User, len(m.users)),
		posts:         make(map[string]*model.Post, len(m.posts)),
		notifications: make([]*model.Notification, 0, len(m.notifications)),
	}
	for id, u := range m.users {
		s.users[id] = cloneUser(u)
	}
	for id, p := range m.posts {
		s.posts[id] = clonePost(p)
	}
	for _, n := range m.notifications {
		c := *n
		s.notifications = append(s.notifications, &c)
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = s.users
	m.posts = s.posts
	m.notifications = s.notifications
}

func addID(ids *[]string, id string) bool {
	for _, v := range *ids {
		if v == id {
			return false
		}
	}
	*ids = append(*ids, id)
	return true
}

func removeID(ids *[]string, id string) bool {
	for i, v := range *ids {
		if v == id {
			*ids = append((*ids)[:i], (*ids)[i+1:]...)
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// users
// -----------------------------------------------------------------------------

type memUserRepo struct{ *memStore }

func (r memUserRepo) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("Create"); err != nil {
		return err
	}
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return model.ErrUsernameExists
		}
		if existing.Email == u.Email {
			return model.ErrEmailExists
		}
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r memUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r memUserRepo) GetByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := []model.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			users = append(users, *cloneUser(u))
		}
	}
	return users, nil
}

func (r memUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r memUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r memUserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("UpdateProfile"); err != nil {
		return err
	}
	stored, ok := r.users[u.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	stored.Username = u.Username
	stored.Email = u.Email
	stored.PasswordHashed = u.PasswordHashed
	stored.FullName = u.FullName
	stored.Bio = u.Bio
	stored.Link = u.Link
	stored.ProfileImg = u.ProfileImg
	stored.CoverImg = u.CoverImg
	return nil
}

func (r memUserRepo) mutate(method, userID string, fn func(u *model.User) bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure(method); err != nil {
		return false, err
	}
	u, ok := r.users[userID]
	if !ok {
		return false, nil
	}
	return fn(u), nil
}

func (r memUserRepo) AddFollower(ctx context.Context, userID, followerID string) (bool, error) {
	return r.mutate("AddFollower", userID, func(u *model.User) bool { return addID(&u.Followers, followerID) })
}

func (r memUserRepo) RemoveFollower(ctx context.Context, userID, followerID string) (bool, error) {
	return r.mutate("RemoveFollower", userID, func(u *model.User) bool { return removeID(&u.Followers, followerID) })
}

func (r memUserRepo) AddFollowing(ctx context.Context, userID, followeeID string) (bool, error) {
	return r.mutate("AddFollowing", userID, func(u *model.User) bool { return addID(&u.Following, followeeID) })
}

func (r memUserRepo) RemoveFollowing(ctx context.Context, userID, followeeID string) (bool, error) {
	return r.mutate("RemoveFollowing", userID, func(u *model.User) bool { return removeID(&u.Following, followeeID) })
}

func (r memUserRepo) AddLikedPost(ctx context.Context, userID, postID string) (bool, error) {
	return r.mutate("AddLikedPost", userID, func(u *model.User) bool { return addID(&u.LikedPosts, postID) })
}

func (r memUserRepo) RemoveLikedPost(ctx context.Context, userID, postID string) (bool, error) {
	return r.mutate("RemoveLikedPost", userID, func(u *model.User) bool { return removeID(&u.LikedPosts, postID) })
}

func (r memUserRepo) RemoveLikedPostFromAll(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("RemoveLikedPostFromAll"); err != nil {
		return err
	}
	for _, u := range r.users {
		removeID(&u.LikedPosts, postID)
	}
	return nil
}

// Sample returns users in creation order; tests need determinism more than
// randomness.
func (r memUserRepo) Sample(ctx context.Context, excludeID string, size int) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := []model.User{}
	for _, u := range r.users {
		if u.ID != excludeID {
			users = append(users, *cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	if len(users) > size {
		users = users[:size]
	}
	return users, nil
}

// -----------------------------------------------------------------------------
// posts
// -----------------------------------------------------------------------------

type memPostRepo struct{ *memStore }

func (r memPostRepo) Create(ctx context.Context, p *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("PostCreate"); err != nil {
		return err
	}
	r.posts[p.ID] = clonePost(p)
	return nil
}

func (r memPostRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (r memPostRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return model.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r memPostRepo) list(keep func(p *model.Post) bool) []model.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	posts := []model.Post{}
	for _, p := range r.posts {
		if keep(p) {
			posts = append(posts, *clonePost(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts
}

func (r memPostRepo) ListAll(ctx context.Context) ([]model.Post, error) {
	return r.list(func(*model.Post) bool { return true }), nil
}

func (r memPostRepo) ListByAuthors(ctx context.Context, userIDs []string) ([]model.Post, error) {
	set := toSet(userIDs)
	return r.list(func(p *model.Post) bool { _, ok := set[p.UserID]; return ok }), nil
}

func (r memPostRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Post, error) {
	set := toSet(ids)
	return r.list(func(p *model.Post) bool { _, ok := set[p.ID]; return ok }), nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (r memPostRepo) mutate(method, postID string, fn func(p *model.Post) bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure(method); err != nil {
		return false, err
	}
	p, ok := r.posts[postID]
	if !ok {
		return false, nil
	}
	return fn(p), nil
}

func (r memPostRepo) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	return r.mutate("AddLike", postID, func(p *model.Post) bool { return addID(&p.Likes, userID) })
}

func (r memPostRepo) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	return r.mutate("RemoveLike", postID, func(p *model.Post) bool { return removeID(&p.Likes, userID) })
}

func (r memPostRepo) AddComment(ctx context.Context, postID string, c *model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return model.ErrPostNotFound
	}
	p.Comments = append(p.Comments, *c)
	return nil
}

// -----------------------------------------------------------------------------
// notifications
// -----------------------------------------------------------------------------

type memNotificationRepo struct{ *memStore }

func (r memNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("NotificationCreate"); err != nil {
		return err
	}
	c := *n
	r.notifications = append(r.notifications, &c)
	return nil
}

func (r memNotificationRepo) ListForUser(ctx context.Context, userID string) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := []model.Notification{}
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].To == userID {
			list = append(list, *r.notifications[i])
		}
	}
	return list, nil
}

func (r memNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.To == userID {
			n.Read = true
		}
	}
	return nil
}

func (r memNotificationRepo) DeleteForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.To != userID {
			kept = append(kept, n)
		}
	}
	r.notifications = kept
	return nil
}

// all returns every stored notification in insertion order.
func (r memNotificationRepo) all() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]model.Notification, len(r.notifications))
	for i, n := range r.notifications {
		list[i] = *n
	}
	return list
}

// -----------------------------------------------------------------------------
// transactions
// -----------------------------------------------------------------------------

// memTx rolls back by restoring a snapshot when transactional.
type memTx struct {
	store         *memStore
	transactional bool
}

func (t memTx) Transactional() bool { return t.transactional }

func (t memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.transactional {
		return fn(ctx)
	}
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------
// media
// -----------------------------------------------------------------------------

type fakeMedia struct {
	mu         sync.Mutex
	uploads    []model.MediaKind
	destroyed  []string
	uploadErr  error
	destroyErr error
}

func (f *fakeMedia) Upload(ctx context.Context, payload string, kind model.MediaKind) (*model.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, kind)
	stem := fmt.Sprintf("img%d", len(f.uploads))
	return &model.UploadResult{URL: "https://cdn.test/images/" + stem + ".jpg", Key: stem}, nil
}

func (f *fakeMedia) Destroy(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.destroyed = append(f.destroyed, key)
	return nil
}

// -----------------------------------------------------------------------------
// fixture
// -----------------------------------------------------------------------------

type fixture struct {
	store  *memStore
	users  memUserRepo
	posts  memPostRepo
	notifs memNotificationRepo
	tx     memTx
	media  *fakeMedia

	userSvc   *UserService
	followSvc *FollowService
	postSvc   *PostService
	feedSvc   *FeedService
	notifSvc  *NotificationService
}

func newFixture(transactional bool) *fixture {
	store := newMemStore()
	f := &fixture{
		store:  store,
		users:  memUserRepo{store},
		posts:  memPostRepo{store},
		notifs: memNotificationRepo{store},
		tx:     memTx{store: store, transactional: transactional},
		media:  &fakeMedia{},
	}
	log := zap.NewNop()
	f.userSvc = NewUserService(f.users, f.media, log)
	f.followSvc = NewFollowService(f.users, f.notifs, f.tx, log)
	f.postSvc = NewPostService(f.posts, f.users, f.notifs, f.tx, f.media, log)
	f.feedSvc = NewFeedService(f.posts, f.users, log)
	f.notifSvc = NewNotificationService(f.notifs, f.users, log)
	return f
}
