// internal/store/watchlist_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sarcascoder/Netflix-clone/internal/domain"
)

// WatchlistStore owns viewer/title membership. Add and Remove are idempotent.
type WatchlistStore interface {
	// ListForViewer returns the listed titles ordered by entry creation.
	// Entries whose title no longer exists are skipped.
	ListForViewer(ctx context.Context, viewerID int64) ([]*domain.Title, error)
	Add(ctx context.Context, viewerID, titleID int64) (*domain.WatchlistEntry, error)
	Remove(ctx context.Context, viewerID, titleID int64) error
}

type pairKey struct {
	viewerID int64
	titleID  int64
}

// MemoryWatchlistStore keeps entries in process memory and resolves titles through a CatalogStore.
type MemoryWatchlistStore struct {
	mu      sync.RWMutex
	entries map[pairKey]*domain.WatchlistEntry
	nextID  int64
	catalog CatalogStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewMemoryWatchlistStore creates an empty in-memory watchlist that resolves titles through catalog.
func NewMemoryWatchlistStore(catalog CatalogStore, logger *slog.Logger) *MemoryWatchlistStore {
	return &MemoryWatchlistStore{
		entries: make(map[pairKey]*domain.WatchlistEntry),
		nextID:  1,
		catalog: catalog,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ListForViewer returns the viewer's titles in the order they were added.
func (s *MemoryWatchlistStore) ListForViewer(ctx context.Context, viewerID int64) ([]*domain.Title, error) {
	s.mu.RLock()
	var own []domain.WatchlistEntry
	for k, e := range s.entries {
		if k.viewerID == viewerID {
			own = append(own, *e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(own, func(i, j int) bool { return own[i].ID < own[j].ID })

	titles := make([]*domain.Title, 0, len(own))
	for _, e := range own {
		t, err := s.catalog.GetTitle(ctx, e.TitleID)
		if errors.Is(err, ErrTitleNotFound) {
			s.logger.DebugContext(ctx, "Skipping watchlist entry for missing title", slog.Int64("titleID", e.TitleID))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve watchlist title %d: %w", e.TitleID, err)
		}
		titles = append(titles, t)
	}
	return titles, nil
}

// Add stores the pair, or returns the existing entry if it is already there.
func (s *MemoryWatchlistStore) Add(ctx context.Context, viewerID, titleID int64) (*domain.WatchlistEntry, error) {
	key := pairKey{viewerID: viewerID, titleID: titleID}

	// membership check and insert happen under the same write lock
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		entry := *existing
		return &entry, nil
	}
	entry := &domain.WatchlistEntry{
		ID:        s.nextID,
		ViewerID:  viewerID,
		TitleID:   titleID,
		CreatedAt: s.now(),
	}
	s.nextID++
	s.entries[key] = entry

	s.logger.DebugContext(ctx, "Watchlist entry added in memory", slog.Int64("viewerID", viewerID), slog.Int64("titleID", titleID))
	out := *entry
	return &out, nil
}

// Remove deletes the pair if present.
func (s *MemoryWatchlistStore) Remove(ctx context.Context, viewerID, titleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, pairKey{viewerID: viewerID, titleID: titleID})
	return nil
}
