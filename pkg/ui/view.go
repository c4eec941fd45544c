package ui

import "time"

// View is the aggregate root: a named, versioned tree of components
// plus layout and metadata. Version starts at 1 on creation and is
// incremented by exactly 1 on every accepted mutation. The manager
// computes versions; stores only persist what they are handed.
type View struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Components []*Component   `json:"components"`
	Layout     map[string]any `json:"layout"`
	Metadata   map[string]any `json:"metadata"`
	Version    int            `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Clone returns a deep copy of the view. Stores and the manager hand
// out clones so readers never observe a partially-applied mutation.
func (v *View) Clone() *View {
	if v == nil {
		return nil
	}
	clone := &View{
		ID:        v.ID,
		Name:      v.Name,
		Layout:    cloneAnyMap(v.Layout),
		Metadata:  cloneAnyMap(v.Metadata),
		Version:   v.Version,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
	if v.Components != nil {
		clone.Components = make([]*Component, len(v.Components))
		for i, c := range v.Components {
			clone.Components[i] = c.Clone()
		}
	}
	return clone
}

// ComponentCount returns the total number of component nodes in the
// view, counting nested children.
func (v *View) ComponentCount() int {
	return CountComponents(v.Components)
}
