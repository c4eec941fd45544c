package ui

import (
	"time"
)

// ComponentType identifies a component's kind. Built-in types are
// registered at startup; custom tags may be registered at runtime.
type ComponentType string

// Built-in component types.
const (
	TypeText     ComponentType = "text"
	TypeChart    ComponentType = "chart"
	TypeTable    ComponentType = "table"
	TypeForm     ComponentType = "form"
	TypeButton   ComponentType = "button"
	TypeImage    ComponentType = "image"
	TypeCard     ComponentType = "card"
	TypeList     ComponentType = "list"
	TypeMetric   ComponentType = "metric"
	TypeProgress ComponentType = "progress"
	TypeAlert    ComponentType = "alert"
)

// Component is a node in a view's component tree. Children are owned
// exclusively by their parent: no sharing, no cycles.
type Component struct {
	ID        string            `json:"id"`
	Type      ComponentType     `json:"type"`
	Props     map[string]any    `json:"props"`
	Styles    map[string]string `json:"styles"`
	Children  []*Component      `json:"children,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Clone returns a deep copy of the component and its subtree.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	clone := &Component{
		ID:        c.ID,
		Type:      c.Type,
		Props:     cloneAnyMap(c.Props),
		Styles:    cloneStringMap(c.Styles),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if len(c.Children) > 0 {
		clone.Children = make([]*Component, len(c.Children))
		for i, child := range c.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

// Count returns the number of nodes in the subtree rooted at c,
// including c itself.
func (c *Component) Count() int {
	if c == nil {
		return 0
	}
	n := 1
	for _, child := range c.Children {
		n += child.Count()
	}
	return n
}

// FindComponent searches a component list depth-first for the given id.
// Returns nil if no node matches.
func FindComponent(components []*Component, id string) *Component {
	for _, c := range components {
		if c.ID == id {
			return c
		}
		if found := FindComponent(c.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// RemoveComponent removes the node with the given id (and its subtree)
// from wherever it sits in the component list. It returns the modified
// list and whether a node was removed.
func RemoveComponent(components []*Component, id string) ([]*Component, bool) {
	for i, c := range components {
		if c.ID == id {
			return append(components[:i:i], components[i+1:]...), true
		}
		if children, ok := RemoveComponent(c.Children, id); ok {
			c.Children = children
			return components, true
		}
	}
	return components, false
}

// CountComponents returns the total node count across a component list.
func CountComponents(components []*Component) int {
	n := 0
	for _, c := range components {
		n += c.Count()
	}
	return n
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	clone := make(map[string]any, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	clone := make(map[string]string, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}
