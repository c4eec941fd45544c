package view

import (
	"testing"

	"github.com/viewdeck/viewdeck/pkg/ui"
)

func historyUpdate(viewID string, version int) ui.Update {
	return ui.Update{
		ViewID:  viewID,
		Action:  ui.ActionAddComponent,
		Version: version,
	}
}

func TestHistory_EvictsOldestWhenFull(t *testing.T) {
	h := NewHistory(3)

	for v := 1; v <= 5; v++ {
		h.Record(historyUpdate("v", v))
	}

	if h.Count() != 3 {
		t.Fatalf("expected 3 retained entries, got %d", h.Count())
	}
	entries := h.Recent("", 0)
	want := []int{3, 4, 5}
	for i, update := range entries {
		if update.Version != want[i] {
			t.Errorf("position %d: expected version %d, got %d", i, want[i], update.Version)
		}
	}
}

func TestHistory_WrapAroundKeepsOrder(t *testing.T) {
	h := NewHistory(4)

	// Write past the capacity twice over; order must survive wrapping.
	for v := 1; v <= 10; v++ {
		h.Record(historyUpdate("v", v))
	}

	entries := h.Recent("", 0)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	for i, update := range entries {
		if update.Version != 7+i {
			t.Errorf("position %d: expected version %d, got %d", i, 7+i, update.Version)
		}
	}
}

func TestHistory_FilterAndLimit(t *testing.T) {
	h := NewHistory(10)

	h.Record(historyUpdate("a", 2))
	h.Record(historyUpdate("b", 2))
	h.Record(historyUpdate("a", 3))
	h.Record(historyUpdate("a", 4))

	forA := h.Recent("a", 0)
	if len(forA) != 3 {
		t.Fatalf("expected 3 entries for a, got %d", len(forA))
	}

	// Limit keeps the newest entries, still oldest-first.
	limited := h.Recent("a", 2)
	if len(limited) != 2 || limited[0].Version != 3 || limited[1].Version != 4 {
		t.Errorf("expected versions [3 4], got %v", limited)
	}
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(5)
	h.Record(historyUpdate("v", 2))
	h.Clear()

	if h.Count() != 0 {
		t.Errorf("expected empty history, got %d", h.Count())
	}
	if entries := h.Recent("", 0); len(entries) != 0 {
		t.Errorf("expected no entries, got %v", entries)
	}
}
