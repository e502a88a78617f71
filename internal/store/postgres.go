// internal/store/postgres.go
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens a PostgreSQL pool and applies the schema.
func Connect(ctx context.Context, dsn string, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the catalog and watchlist tables if they don't exist.
// There is no foreign key from watchlist_entries to titles: entries may outlive their title.
func Migrate(ctx context.Context, db *sqlx.DB, logger *slog.Logger) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS titles (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			thumbnail_url TEXT NOT NULL DEFAULT '',
			video_url TEXT NOT NULL DEFAULT '',
			genre VARCHAR(50) NOT NULL,
			release_year INTEGER NOT NULL DEFAULT 0,
			rating VARCHAR(20) NOT NULL DEFAULT '',
			duration VARCHAR(50) NOT NULL DEFAULT '',
			featured BOOLEAN NOT NULL DEFAULT FALSE,
			type VARCHAR(10) NOT NULL DEFAULT 'movie' CHECK (type IN ('movie', 'series')),
			cast_members TEXT[],
			director TEXT NOT NULL DEFAULT '',
			maturity_rating TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS watchlist_entries (
			id BIGSERIAL PRIMARY KEY,
			viewer_id BIGINT NOT NULL,
			title_id BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (viewer_id, title_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_titles_genre ON titles(genre)`,
		`CREATE INDEX IF NOT EXISTS idx_titles_type ON titles(type)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_viewer ON watchlist_entries(viewer_id, id)`,
	}

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	logger.InfoContext(ctx, "Database migrations completed")
	return nil
}
