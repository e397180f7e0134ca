package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS game_sessions (
		id              UUID PRIMARY KEY,
		owner_id        UUID,
		score           INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
		total_questions INTEGER NOT NULL,
		correct_count   INTEGER NOT NULL,
		wrong_count     INTEGER NOT NULL,
		details         JSONB NOT NULL DEFAULT '[]',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (correct_count + wrong_count = total_questions)
	)`,
	`CREATE INDEX IF NOT EXISTS game_sessions_owner_idx ON game_sessions (owner_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS game_sessions_rank_idx ON game_sessions (score DESC, created_at ASC)`,
	`CREATE TABLE IF NOT EXISTS questions (
		position INTEGER PRIMARY KEY,
		question TEXT NOT NULL,
		option_a TEXT NOT NULL,
		option_b TEXT NOT NULL,
		option_c TEXT NOT NULL,
		option_d TEXT NOT NULL,
		answer   TEXT NOT NULL
	)`,
}

var dropStatements = []string{
	`DROP TABLE IF EXISTS questions`,
	`DROP TABLE IF EXISTS game_sessions`,
	`DROP TABLE IF EXISTS users`,
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db, createStatements)
		},
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db, dropStatements)
		},
	)
}

func execAll(ctx context.Context, db *bun.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
