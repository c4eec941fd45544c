package adapter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/viewdeck/viewdeck/pkg/ui"
)

// JSON is the identity projection: it encodes the view aggregate as-is
// for frontends that interpret the component tree themselves. The
// output is lossless — decoding it yields an equal tree.
type JSON struct{}

// NewJSON creates the JSON adapter.
func NewJSON() *JSON {
	return &JSON{}
}

func (a *JSON) Type() string {
	return TypeJSON
}

func (a *JSON) ContentType() string {
	return "application/json"
}

// RenderView encodes the whole view.
func (a *JSON) RenderView(view *ui.View) (*Result, error) {
	content, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("adapter: encode view %s: %w", view.ID, err)
	}
	return &Result{
		AdapterType: a.Type(),
		Content:     content,
		ContentType: a.ContentType(),
		Metadata: map[string]any{
			"view_id":         view.ID,
			"version":         view.Version,
			"component_count": len(view.Components),
		},
		RenderedAt: time.Now().UTC(),
	}, nil
}

// RenderComponent encodes a single component subtree.
func (a *JSON) RenderComponent(component *ui.Component) (*Result, error) {
	content, err := json.Marshal(component)
	if err != nil {
		return nil, fmt.Errorf("adapter: encode component %s: %w", component.ID, err)
	}
	return &Result{
		AdapterType: a.Type(),
		Content:     content,
		ContentType: a.ContentType(),
		RenderedAt:  time.Now().UTC(),
	}, nil
}
