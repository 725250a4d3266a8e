package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// ConnectPostgres opens the alternate relational store.
func ConnectPostgres(dsn string, log *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("connected to postgres")
	return db, nil
}

// Unique constraint names on the users table.
const (
	UsersUsernameConstraint = "users_username_key"
	UsersEmailConstraint    = "users_email_key"
)

// Tables are created on start-up when missing. Edge sets live in text[]
// columns; comments keep insertion order through seq.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              TEXT PRIMARY KEY,
		username        TEXT NOT NULL,
		email           TEXT NOT NULL,
		password_hashed TEXT NOT NULL,
		full_name       TEXT NOT NULL,
		bio             TEXT NOT NULL DEFAULT '',
		link            TEXT NOT NULL DEFAULT '',
		profile_img     TEXT NOT NULL DEFAULT '',
		cover_img       TEXT NOT NULL DEFAULT '',
		followers       TEXT[] NOT NULL DEFAULT '{}',
		following       TEXT[] NOT NULL DEFAULT '{}',
		liked_posts     TEXT[] NOT NULL DEFAULT '{}',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_username_key UNIQUE (username),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users (id),
		text       TEXT NOT NULL DEFAULT '',
		img        TEXT NOT NULL DEFAULT '',
		likes      TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_user_created ON posts (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS comments (
		seq        BIGSERIAL PRIMARY KEY,
		id         TEXT NOT NULL UNIQUE,
		post_id    TEXT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL,
		text       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_seq ON comments (post_id, seq)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         TEXT PRIMARY KEY,
		from_user  TEXT NOT NULL,
		to_user    TEXT NOT NULL,
		type       TEXT NOT NULL CHECK (type IN ('follow', 'like')),
		read       BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_to_created ON notifications (to_user, created_at DESC)`,
}

// EnsurePostgresSchema creates any missing table or index.
func EnsurePostgresSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range postgresSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
