package view

import (
	"sync"

	"github.com/viewdeck/viewdeck/pkg/ui"
)

// History is a thread-safe ring buffer of accepted update events. It
// keeps a bounded sliding window for the history-query interface: when
// full, the oldest entry is overwritten. Recording never fails and
// never blocks a mutation.
type History struct {
	mu       sync.RWMutex
	entries  []ui.Update
	head     int // next write position (circular)
	count    int
	capacity int
}

// NewHistory creates a history buffer with the given capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 100
	}
	return &History{
		entries:  make([]ui.Update, capacity),
		capacity: capacity,
	}
}

// Record appends an update, evicting the oldest entry when full.
func (h *History) Record(update ui.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.head] = update
	h.head = (h.head + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	}
}

// Recent returns up to limit retained updates in chronological order,
// newest last. viewID filters to one view; empty means all views.
// limit <= 0 means no limit beyond the buffer's capacity.
func (h *History) Recent(viewID string, limit int) []ui.Update {
	h.mu.RLock()
	defer h.mu.RUnlock()

	matched := make([]ui.Update, 0, h.count)
	for i := 0; i < h.count; i++ {
		// Walk from tail (oldest) to head (newest).
		idx := (h.head - h.count + i + h.capacity) % h.capacity
		entry := h.entries[idx]
		if viewID == "" || entry.ViewID == viewID {
			matched = append(matched, entry)
		}
	}

	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched
}

// Count returns the number of retained entries.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Clear removes all entries.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.entries {
		h.entries[i] = ui.Update{}
	}
	h.head = 0
	h.count = 0
}
