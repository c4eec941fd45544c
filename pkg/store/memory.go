package store

import (
	"context"
	"sync"

	"github.com/viewdeck/viewdeck/pkg/ui"
)

// MemoryStore is the reference in-memory ViewStore. It deep-copies
// views on the way in and out so callers never share mutable state
// with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	views    map[string]*ui.View
	order    []string // creation order for List
	maxViews int
}

// NewMemoryStore creates a MemoryStore. maxViews <= 0 means no limit.
func NewMemoryStore(maxViews int) *MemoryStore {
	return &MemoryStore{
		views:    make(map[string]*ui.View),
		maxViews: maxViews,
	}
}

// Get returns a copy of the view or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, viewID string) (*ui.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view, ok := s.views[viewID]
	if !ok {
		return nil, ErrNotFound
	}
	return view.Clone(), nil
}

// List returns copies of all views in creation order.
func (s *MemoryStore) List(_ context.Context) ([]*ui.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]*ui.View, 0, len(s.order))
	for _, id := range s.order {
		if view, ok := s.views[id]; ok {
			views = append(views, view.Clone())
		}
	}
	return views, nil
}

// Save upserts the view, guarding capacity on insert.
func (s *MemoryStore) Save(_ context.Context, view *ui.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.views[view.ID]; !exists {
		if s.maxViews > 0 && len(s.views) >= s.maxViews {
			return ErrCapacityExceeded
		}
		s.order = append(s.order, view.ID)
	}
	s.views[view.ID] = view.Clone()
	return nil
}

// Delete removes the view or returns ErrNotFound.
func (s *MemoryStore) Delete(_ context.Context, viewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.views[viewID]; !ok {
		return ErrNotFound
	}
	delete(s.views, viewID)
	for i, id := range s.order {
		if id == viewID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of stored views.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}
