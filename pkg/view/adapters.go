package view

import (
	"fmt"
	"sync"

	"github.com/viewdeck/viewdeck/pkg/adapter"
)

// adapterSet is the small named registry of render adapters inside the
// Manager. Registration is open at runtime; an enabled-types allowlist
// (when non-empty) rejects everything outside it.
type adapterSet struct {
	mu       sync.RWMutex
	adapters map[string]adapter.Adapter
	order    []string
	enabled  map[string]struct{}
}

func newAdapterSet(enabledTypes []string) *adapterSet {
	s := &adapterSet{
		adapters: make(map[string]adapter.Adapter),
	}
	if len(enabledTypes) > 0 {
		s.enabled = make(map[string]struct{}, len(enabledTypes))
		for _, t := range enabledTypes {
			s.enabled[t] = struct{}{}
		}
	}
	return s
}

func (s *adapterSet) register(a adapter.Adapter) error {
	t := a.Type()
	if s.enabled != nil {
		if _, ok := s.enabled[t]; !ok {
			return fmt.Errorf("%w: %s", ErrAdapterDisabled, t)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.adapters[t]; !exists {
		s.order = append(s.order, t)
	}
	s.adapters[t] = a
	return nil
}

func (s *adapterSet) get(adapterType string) (adapter.Adapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.adapters[adapterType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAdapter, adapterType)
	}
	return a, nil
}

func (s *adapterSet) types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, len(s.order))
	copy(types, s.order)
	return types
}
