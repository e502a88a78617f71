// internal/store/catalog_store.go
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sarcascoder/Netflix-clone/internal/domain"
)

var (
	ErrTitleNotFound = errors.New("title not found")
	// ErrUnknownTitle is returned when a watchlist add references a title the catalog doesn't have.
	ErrUnknownTitle = errors.New("unknown title")
)

// CatalogStore owns the set of titles.
type CatalogStore interface {
	// ListTitles returns titles in insertion order. An empty catalog yields an empty slice.
	ListTitles(ctx context.Context, filter domain.TitleFilter) ([]*domain.Title, error)
	GetTitle(ctx context.Context, id int64) (*domain.Title, error)
	CreateTitle(ctx context.Context, title domain.Title) (*domain.Title, error)
	TitleExists(ctx context.Context, id int64) (bool, error)
}

// MemoryCatalogStore keeps titles in process memory. Safe for concurrent use.
type MemoryCatalogStore struct {
	mu     sync.RWMutex
	titles []*domain.Title
	byID   map[int64]*domain.Title
	nextID int64
	logger *slog.Logger
}

// NewMemoryCatalogStore creates an empty in-memory catalog; ids start at 1.
func NewMemoryCatalogStore(logger *slog.Logger) *MemoryCatalogStore {
	return &MemoryCatalogStore{
		byID:   make(map[int64]*domain.Title),
		nextID: 1,
		logger: logger,
	}
}

// ListTitles applies the equality stage, then the search stage, and returns copies.
func (s *MemoryCatalogStore) ListTitles(ctx context.Context, filter domain.TitleFilter) ([]*domain.Title, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Title, 0, len(s.titles))
	for _, t := range s.titles {
		if filter.MatchesEquality(t) {
			matched = append(matched, t)
		}
	}
	matched = filter.ApplySearch(matched)

	out := make([]*domain.Title, len(matched))
	for i, t := range matched {
		out[i] = t.Clone()
	}
	s.logger.DebugContext(ctx, "Listed titles from memory", slog.Int("count", len(out)))
	return out, nil
}

// GetTitle returns a copy of the title or ErrTitleNotFound.
func (s *MemoryCatalogStore) GetTitle(ctx context.Context, id int64) (*domain.Title, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, ErrTitleNotFound
	}
	return t.Clone(), nil
}

// CreateTitle assigns the next id and stores a copy of title.
func (s *MemoryCatalogStore) CreateTitle(ctx context.Context, title domain.Title) (*domain.Title, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := title.Clone()
	stored.ID = s.nextID
	s.nextID++
	s.titles = append(s.titles, stored)
	s.byID[stored.ID] = stored

	s.logger.DebugContext(ctx, "Title created in memory", slog.Int64("titleID", stored.ID), slog.String("title", stored.Title))
	return stored.Clone(), nil
}

// TitleExists reports whether id is in the catalog.
func (s *MemoryCatalogStore) TitleExists(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok, nil
}

// DeleteTitle removes a title. Watchlist entries pointing at it are left alone.
func (s *MemoryCatalogStore) DeleteTitle(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrTitleNotFound
	}
	delete(s.byID, id)
	for i, t := range s.titles {
		if t.ID == id {
			s.titles = append(s.titles[:i], s.titles[i+1:]...)
			break
		}
	}
	return nil
}
