package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chirper/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, password_hashed, full_name, bio, link, profile_img, cover_img,
	followers, following, liked_posts, created_at, updated_at`

// userRow scans the text[] edge columns.
type userRow struct {
	model.User
	FollowersArr  pq.StringArray `db:"followers"`
	FollowingArr  pq.StringArray `db:"following"`
	LikedPostsArr pq.StringArray `db:"liked_posts"`
}

func (row *userRow) toModel() *model.User {
	u := row.User
	u.Followers = nonNil(row.FollowersArr)
	u.Following = nonNil(row.FollowingArr)
	u.LikedPosts = nonNil(row.LikedPostsArr)
	return &u
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hashed, full_name, bio, link, profile_img, cover_img, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHashed,
		u.FullName,
		u.Bio,
		u.Link,
		u.ProfileImg,
		u.CoverImg,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if dup := duplicateUserErr(err); dup != nil {
			return dup
		}
		return storeErr("failed to insert user", err)
	}

	u.Followers = []string{}
	u.Following = []string{}
	u.LikedPosts = []string{}
	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg string) (*model.User, error) {
	var row userRow
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &row, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, storeErr("failed to get user", err)
	}
	return row.toModel(), nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	return r.selectMany(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, pq.Array(ids))
}

func (r *userRepository) selectMany(ctx context.Context, query string, args ...interface{}) ([]model.User, error) {
	var rows []userRow
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &rows, query, args...); err != nil {
		return nil, storeErr("failed to list users", err)
	}

	users := make([]model.User, len(rows))
	for i := range rows {
		users[i] = *rows[i].toModel()
	}
	return users, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

// ExistsByEmail checks if an email is already registered
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *userRepository) exists(ctx context.Context, query, arg string) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &exists, query, arg); err != nil {
		return false, storeErr("failed to check user existence", err)
	}
	return exists, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, password_hashed = $4, full_name = $5, bio = $6, link = $7,
		    profile_img = $8, cover_img = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := sqlx.GetContext(ctx, executor(ctx, r.db), &u.UpdatedAt, query,
		u.ID, u.Username, u.Email, u.PasswordHashed, u.FullName, u.Bio, u.Link, u.ProfileImg, u.CoverImg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrUserNotFound
		}
		if dup := duplicateUserErr(err); dup != nil {
			return dup
		}
		return storeErr("failed to update user", err)
	}
	return nil
}

// Edge columns. Only these names are interpolated into SQL.
const (
	colFollowers  = "followers"
	colFollowing  = "following"
	colLikedPosts = "liked_posts"
)

func (r *userRepository) AddFollower(ctx context.Context, userID, followerID string) (bool, error) {
	return arrayAppend(ctx, executor(ctx, r.db), "users", colFollowers, userID, followerID)
}

func (r *userRepository) RemoveFollower(ctx context.Context, userID, followerID string) (bool, error) {
	return arrayRemove(ctx, executor(ctx, r.db), "users", colFollowers, userID, followerID)
}

func (r *userRepository) AddFollowing(ctx context.Context, userID, followeeID string) (bool, error) {
	return arrayAppend(ctx, executor(ctx, r.db), "users", colFollowing, userID, followeeID)
}

func (r *userRepository) RemoveFollowing(ctx context.Context, userID, followeeID string) (bool, error) {
	return arrayRemove(ctx, executor(ctx, r.db), "users", colFollowing, userID, followeeID)
}

func (r *userRepository) AddLikedPost(ctx context.Context, userID, postID string) (bool, error) {
	return arrayAppend(ctx, executor(ctx, r.db), "users", colLikedPosts, userID, postID)
}

func (r *userRepository) RemoveLikedPost(ctx context.Context, userID, postID string) (bool, error) {
	return arrayRemove(ctx, executor(ctx, r.db), "users", colLikedPosts, userID, postID)
}

func (r *userRepository) RemoveLikedPostFromAll(ctx context.Context, postID string) error {
	query := `UPDATE users SET liked_posts = array_remove(liked_posts, $1) WHERE $1 = ANY(liked_posts)`
	if _, err := executor(ctx, r.db).ExecContext(ctx, query, postID); err != nil {
		return storeErr("failed to remove liked post", err)
	}
	return nil
}

func (r *userRepository) Sample(ctx context.Context, excludeID string, size int) ([]model.User, error) {
	return r.selectMany(ctx, `SELECT `+userColumns+` FROM users WHERE id <> $1 ORDER BY random() LIMIT $2`, excludeID, size)
}

// arrayAppend adds value to a text[] column when absent and reports whether
// the row changed.
func arrayAppend(ctx context.Context, ex sqlx.ExecerContext, table, column, id, value string) (bool, error) {
	query := fmt.Sprintf(
		`UPDATE %s SET %s = array_append(%s, $2) WHERE id = $1 AND NOT ($2 = ANY(%s))`,
		table, column, column, column)
	return rowsChanged(ctx, ex, query, "append to "+column, id, value)
}

// arrayRemove removes value from a text[] column when present.
func arrayRemove(ctx context.Context, ex sqlx.ExecerContext, table, column, id, value string) (bool, error) {
	query := fmt.Sprintf(
		`UPDATE %s SET %s = array_remove(%s, $2) WHERE id = $1 AND $2 = ANY(%s)`,
		table, column, column, column)
	return rowsChanged(ctx, ex, query, "remove from "+column, id, value)
}

func rowsChanged(ctx context.Context, ex sqlx.ExecerContext, query, op string, args ...interface{}) (bool, error) {
	result, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return false, storeErr(op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}
