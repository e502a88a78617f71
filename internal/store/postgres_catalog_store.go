// internal/store/postgres_catalog_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sarcascoder/Netflix-clone/internal/domain"
)

const titleColumns = `id, title, description, thumbnail_url, video_url, genre, release_year, rating, duration,
	featured, type, cast_members, director, maturity_rating`

// PostgresCatalogStore implements CatalogStore on PostgreSQL.
type PostgresCatalogStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresCatalogStore creates a catalog store over an open, migrated database.
func NewPostgresCatalogStore(db *sqlx.DB, logger *slog.Logger) (*PostgresCatalogStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresCatalogStore{db: db, logger: logger}, nil
}

// ListTitles runs the equality stage in SQL and the search stage in Go,
// so search semantics match the in-memory store exactly.
func (s *PostgresCatalogStore) ListTitles(ctx context.Context, filter domain.TitleFilter) ([]*domain.Title, error) {
	query := `SELECT ` + titleColumns + ` FROM titles`

	var (
		conditions []string
		args       []interface{}
	)
	if filter.Genre != nil {
		args = append(args, *filter.Genre)
		conditions = append(conditions, fmt.Sprintf("genre = $%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		conditions = append(conditions, fmt.Sprintf("featured = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	s.logger.DebugContext(ctx, "Executing ListTitles query", slog.String("query", query), slog.Any("args", args))
	titles := []*domain.Title{}
	if err := s.db.SelectContext(ctx, &titles, query, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list titles from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list titles: %w", err)
	}
	return filter.ApplySearch(titles), nil
}

// GetTitle returns the title or ErrTitleNotFound.
func (s *PostgresCatalogStore) GetTitle(ctx context.Context, id int64) (*domain.Title, error) {
	query := `SELECT ` + titleColumns + ` FROM titles WHERE id = $1`
	var title domain.Title
	if err := s.db.GetContext(ctx, &title, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTitleNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get title by ID from DB", slog.Int64("titleID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get title by ID: %w", err)
	}
	return &title, nil
}

// CreateTitle inserts title and returns it with the id assigned by the database.
func (s *PostgresCatalogStore) CreateTitle(ctx context.Context, title domain.Title) (*domain.Title, error) {
	query := `INSERT INTO titles (title, description, thumbnail_url, video_url, genre, release_year, rating, duration,
	              featured, type, cast_members, director, maturity_rating)
	          VALUES (:title, :description, :thumbnail_url, :video_url, :genre, :release_year, :rating, :duration,
	              :featured, :type, :cast_members, :director, :maturity_rating)
	          RETURNING id`
	if title.Type == "" {
		title.Type = domain.TypeMovie
	}

	rows, err := s.db.NamedQueryContext(ctx, query, title)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create title in DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create title: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to create title: %w", err)
		}
		return nil, errors.New("failed to create title: no id returned")
	}
	if err := rows.Scan(&title.ID); err != nil {
		return nil, fmt.Errorf("failed to scan created title id: %w", err)
	}

	s.logger.InfoContext(ctx, "Title created in DB", slog.Int64("titleID", title.ID), slog.String("title", title.Title))
	return &title, nil
}

// TitleExists reports whether id is in the catalog.
func (s *PostgresCatalogStore) TitleExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM titles WHERE id = $1)`, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to check title existence", slog.Int64("titleID", id), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to check title existence: %w", err)
	}
	return exists, nil
}

// DeleteTitle removes a title; watchlist rows that reference it stay and are skipped on listing.
func (s *PostgresCatalogStore) DeleteTitle(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete title: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrTitleNotFound
	}
	return nil
}
