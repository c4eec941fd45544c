// Package adapter projects view aggregates into client-consumable
// output formats. Adapters are pure: they read the view, never mutate
// it, and carry no state of their own.
package adapter

import (
	"time"

	"github.com/viewdeck/viewdeck/pkg/ui"
)

// Adapter types registered by default.
const (
	TypeJSON = "json"
	TypeHTML = "html"
)

// Result is one rendered projection of a view or component.
type Result struct {
	AdapterType string         `json:"adapter_type"`
	Content     []byte         `json:"content"`
	ContentType string         `json:"content_type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	RenderedAt  time.Time      `json:"rendered_at"`
}

// Adapter renders views and components into one output format.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Type is the stable name the adapter is resolved by.
	Type() string

	// ContentType is the MIME type of rendered content.
	ContentType() string

	// RenderView projects a whole view.
	RenderView(view *ui.View) (*Result, error)

	// RenderComponent projects a single component subtree.
	RenderComponent(component *ui.Component) (*Result, error)
}
