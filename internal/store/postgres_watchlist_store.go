// internal/store/postgres_watchlist_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sarcascoder/Netflix-clone/internal/domain"
)

// addAttempts bounds the insert/select loop when a concurrent remove deletes the row in between.
const addAttempts = 3

// PostgresWatchlistStore implements WatchlistStore on PostgreSQL.
// Pair uniqueness comes from the UNIQUE (viewer_id, title_id) constraint.
type PostgresWatchlistStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresWatchlistStore creates a watchlist store over an open, migrated database.
func NewPostgresWatchlistStore(db *sqlx.DB, logger *slog.Logger) (*PostgresWatchlistStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresWatchlistStore{db: db, logger: logger}, nil
}

// ListForViewer returns the viewer's titles ordered by entry id.
func (s *PostgresWatchlistStore) ListForViewer(ctx context.Context, viewerID int64) ([]*domain.Title, error) {
	// the inner join drops entries whose title was deleted
	query := `SELECT t.id, t.title, t.description, t.thumbnail_url, t.video_url, t.genre, t.release_year, t.rating,
	                 t.duration, t.featured, t.type, t.cast_members, t.director, t.maturity_rating
	          FROM watchlist_entries w
	          JOIN titles t ON t.id = w.title_id
	          WHERE w.viewer_id = $1
	          ORDER BY w.id`

	titles := []*domain.Title{}
	if err := s.db.SelectContext(ctx, &titles, query, viewerID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list watchlist from DB", slog.Int64("viewerID", viewerID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	return titles, nil
}

// Add inserts the pair, or returns the existing row when it is already there.
func (s *PostgresWatchlistStore) Add(ctx context.Context, viewerID, titleID int64) (*domain.WatchlistEntry, error) {
	insert := `INSERT INTO watchlist_entries (viewer_id, title_id, created_at)
	           VALUES ($1, $2, $3)
	           ON CONFLICT (viewer_id, title_id) DO NOTHING
	           RETURNING id, viewer_id, title_id, created_at`
	existing := `SELECT id, viewer_id, title_id, created_at FROM watchlist_entries WHERE viewer_id = $1 AND title_id = $2`

	for attempt := 1; attempt <= addAttempts; attempt++ {
		var entry domain.WatchlistEntry
		err := s.db.GetContext(ctx, &entry, insert, viewerID, titleID, time.Now().UTC())
		if err == nil {
			s.logger.InfoContext(ctx, "Watchlist entry created in DB", slog.Int64("viewerID", viewerID), slog.Int64("titleID", titleID))
			return &entry, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.ErrorContext(ctx, "Failed to insert watchlist entry", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to add watchlist entry: %w", err)
		}

		// conflict: the pair already exists
		err = s.db.GetContext(ctx, &entry, existing, viewerID, titleID)
		if err == nil {
			return &entry, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to load existing watchlist entry: %w", err)
		}
		s.logger.WarnContext(ctx, "Watchlist entry vanished between insert and select, retrying",
			slog.Int64("viewerID", viewerID), slog.Int64("titleID", titleID), slog.Int("attempt", attempt))
	}
	return nil, fmt.Errorf("failed to add watchlist entry after %d attempts", addAttempts)
}

// Remove deletes the pair if present.
func (s *PostgresWatchlistStore) Remove(ctx context.Context, viewerID, titleID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM watchlist_entries WHERE viewer_id = $1 AND title_id = $2`, viewerID, titleID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete watchlist entry", slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove watchlist entry: %w", err)
	}
	n, _ := result.RowsAffected()
	s.logger.DebugContext(ctx, "Watchlist remove executed", slog.Int64("viewerID", viewerID), slog.Int64("titleID", titleID), slog.Int64("rows", n))
	return nil
}
