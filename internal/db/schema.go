package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ids are text so the same uuid strings work across every store
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          VARCHAR(50) NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id                    TEXT PRIMARY KEY,
		title                 VARCHAR(100) NOT NULL,
		description           VARCHAR(500) NOT NULL,
		status                TEXT NOT NULL DEFAULT 'pending'
		                      CHECK (status IN ('pending', 'in-progress', 'completed', 'on-hold', 'cancelled')),
		priority              TEXT NOT NULL DEFAULT 'medium'
		                      CHECK (priority IN ('low', 'medium', 'high', 'urgent')),
		assigned_to           TEXT NOT NULL,
		created_by            TEXT NOT NULL,
		due_date              TIMESTAMPTZ,
		completed_at          TIMESTAMPTZ,
		response              VARCHAR(1000),
		response_submitted_at TIMESTAMPTZ,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_assigned_to_status_idx ON tasks (assigned_to, status)`,
	`CREATE INDEX IF NOT EXISTS tasks_created_by_idx ON tasks (created_by)`,
	`CREATE INDEX IF NOT EXISTS tasks_created_at_idx ON tasks (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS tasks_due_date_idx ON tasks (due_date)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id            TEXT PRIMARY KEY,
		content       VARCHAR(1000) NOT NULL,
		task_id       TEXT NOT NULL,
		user_id       TEXT NOT NULL,
		is_admin_note BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS notes_task_created_at_idx ON notes (task_id, created_at DESC)`,
}

// EnsureSchema creates the tables and indexes when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
