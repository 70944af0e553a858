package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash BYTEA NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		display_order INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS options (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL REFERENCES categories(id),
		label TEXT NOT NULL,
		is_typical BOOLEAN NOT NULL DEFAULT FALSE,
		display_order INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS annotator_categories (
		user_id TEXT NOT NULL REFERENCES users(id),
		category_id TEXT NOT NULL REFERENCES categories(id),
		PRIMARY KEY (user_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS images (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		url TEXT NOT NULL,
		is_improper BOOLEAN NOT NULL DEFAULT FALSE,
		improper_reason TEXT,
		reported_by TEXT REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS annotations (
		id TEXT PRIMARY KEY,
		image_id TEXT NOT NULL REFERENCES images(id),
		category_id TEXT NOT NULL REFERENCES categories(id),
		annotator_id TEXT NOT NULL REFERENCES users(id),
		selected_option_ids TEXT[] NOT NULL DEFAULT '{}',
		is_duplicate BOOLEAN,
		status TEXT NOT NULL,
		time_spent_seconds INT NOT NULL DEFAULT 0,
		review_status TEXT,
		review_note TEXT,
		reviewed_by TEXT REFERENCES users(id),
		reviewed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (image_id, category_id, annotator_id)
	)`,
	`CREATE TABLE IF NOT EXISTS edit_requests (
		id TEXT PRIMARY KEY,
		image_id TEXT NOT NULL REFERENCES images(id),
		annotator_id TEXT NOT NULL REFERENCES users(id),
		reason TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		consumed BOOLEAN NOT NULL DEFAULT FALSE,
		resolved_by TEXT REFERENCES users(id),
		resolved_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	// One outstanding request per (image, annotator) pair.
	`CREATE UNIQUE INDEX IF NOT EXISTS edit_requests_pending_key
		ON edit_requests (image_id, annotator_id) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS annotations_category_status_idx
		ON annotations (category_id, status)`,
	`CREATE INDEX IF NOT EXISTS annotations_image_idx
		ON annotations (image_id)`,
}

// Migrate applies the schema. Statements are additive and idempotent, so
// running them on every startup is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
