package postgres

import (
	"context"
	"database/sql"
)

// Schema statements applied at startup. Idempotent; compose deployments may
// apply the same DDL through migrations instead.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
        user_id       TEXT PRIMARY KEY,
        email         TEXT NOT NULL,
        display_name  TEXT,
        creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS fragments (
        fragment_id   TEXT PRIMARY KEY,
        user_id       TEXT NOT NULL REFERENCES users(user_id),
        type          TEXT NOT NULL,
        content       TEXT NOT NULL,
        media_url     TEXT,
        creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS fragments_user_time
        ON fragments (user_id, creation_time DESC)`,
	`CREATE TABLE IF NOT EXISTS insights (
        insight_id    TEXT PRIMARY KEY,
        fragment_id   TEXT NOT NULL UNIQUE REFERENCES fragments(fragment_id),
        content       TEXT NOT NULL,
        creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS daily_memories (
        memory_id     TEXT PRIMARY KEY,
        user_id       TEXT NOT NULL REFERENCES users(user_id),
        date          TIMESTAMPTZ NOT NULL,
        summary       TEXT NOT NULL,
        creation_time TIMESTAMPTZ NOT NULL DEFAULT now(),
        update_time   TIMESTAMPTZ NOT NULL DEFAULT now(),
        UNIQUE (user_id, date)
    )`,
}

// EnsureSchema applies the schema DDL. Safe to run on every startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
