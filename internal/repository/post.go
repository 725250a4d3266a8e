package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chirper/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

// NewPostgresPostRepository creates a post repository. Comments live in
// their own table and are attached on read.
func NewPostgresPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, text, img, likes, created_at, updated_at`

type postRow struct {
	model.Post
	LikesArr pq.StringArray `db:"likes"`
}

type commentRow struct {
	model.Comment
	PostID string `db:"post_id"`
}

// Create inserts a new post.
func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (id, user_id, text, img, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := executor(ctx, r.db).ExecContext(ctx, query, p.ID, p.UserID, p.Text, p.Img, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return storeErr("insert post", err)
	}

	p.Likes = []string{}
	p.Comments = []model.Comment{}
	return nil
}

// GetByID retrieves a single post with its comments.
func (r *postRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	posts, err := r.list(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, postID)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, model.ErrPostNotFound
	}
	return &posts[0], nil
}

// Delete removes a post; its comments go with it.
func (r *postRepository) Delete(ctx context.Context, postID string) error {
	result, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return storeErr("delete post", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	return r.list(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
}

func (r *postRepository) ListByAuthors(ctx context.Context, userIDs []string) ([]model.Post, error) {
	if len(userIDs) == 0 {
		return []model.Post{}, nil
	}
	return r.list(ctx, `SELECT `+postColumns+` FROM posts WHERE user_id = ANY($1) ORDER BY created_at DESC`, pq.Array(userIDs))
}

// ListByIDs retrieves multiple posts by their IDs, newest first.
func (r *postRepository) ListByIDs(ctx context.Context, ids []string) ([]model.Post, error) {
	if len(ids) == 0 {
		return []model.Post{}, nil
	}
	return r.list(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ANY($1) ORDER BY created_at DESC`, pq.Array(ids))
}

func (r *postRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Post, error) {
	q := executor(ctx, r.db)

	var rows []postRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, storeErr("list posts", err)
	}

	posts := make([]model.Post, len(rows))
	ids := make([]string, len(rows))
	for i, row := range rows {
		posts[i] = row.Post
		posts[i].Likes = nonNil(row.LikesArr)
		ids[i] = row.ID
	}

	// Fetch comments for all posts
	commentMap, err := r.getComments(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Comments = commentMap[posts[i].ID]
		if posts[i].Comments == nil {
			posts[i].Comments = []model.Comment{}
		}
	}

	return posts, nil
}

// getComments returns comments grouped by post, in insertion order.
func (r *postRepository) getComments(ctx context.Context, q sqlx.QueryerContext, postIDs []string) (map[string][]model.Comment, error) {
	result := make(map[string][]model.Comment)
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, post_id, user_id, text, created_at
		FROM comments
		WHERE post_id = ANY($1)
		ORDER BY seq
	`
	var rows []commentRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, pq.Array(postIDs)); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storeErr("get comments", err)
	}

	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.Comment)
	}
	return result, nil
}

func (r *postRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	return arrayAppend(ctx, executor(ctx, r.db), "posts", "likes", postID, userID)
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	return arrayRemove(ctx, executor(ctx, r.db), "posts", "likes", postID, userID)
}

// AddComment inserts the comment only if the post still exists.
func (r *postRepository) AddComment(ctx context.Context, postID string, c *model.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, user_id, text, created_at)
		SELECT $1, $2, $3, $4, $5
		WHERE EXISTS (SELECT 1 FROM posts WHERE id = $2)
	`
	changed, err := rowsChanged(ctx, executor(ctx, r.db), query, "insert comment", c.ID, postID, c.UserID, c.Text, c.CreatedAt)
	if err != nil {
		return err
	}
	if !changed {
		return model.ErrPostNotFound
	}

	_, err = executor(ctx, r.db).ExecContext(ctx, `UPDATE posts SET updated_at = $2 WHERE id = $1`, postID, time.Now().UTC())
	if err != nil {
		return storeErr("touch post", err)
	}
	return nil
}
