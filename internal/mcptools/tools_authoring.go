package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/viewdeck/viewdeck/pkg/ui"
	"github.com/viewdeck/viewdeck/pkg/view"
)

type createViewInput struct {
	Name          string `json:"name" jsonschema:"display name for the view"`
	ViewID        string `json:"view_id,omitempty" jsonschema:"optional custom ID (auto-generated if not provided)"`
	LayoutType    string `json:"layout_type,omitempty" jsonschema:"layout type (flex or grid)"`
	LayoutColumns int    `json:"layout_columns,omitempty" jsonschema:"number of columns for grid layout"`
}

type createViewOutput struct {
	Created bool     `json:"created"`
	View    *ui.View `json:"view"`
}

type deleteViewInput struct {
	ViewID string `json:"view_id" jsonschema:"the view ID to delete"`
}

type deleteViewOutput struct {
	Deleted bool   `json:"deleted"`
	ViewID  string `json:"view_id"`
}

type addComponentInput struct {
	ViewID        string            `json:"view_id" jsonschema:"target view ID"`
	ComponentType string            `json:"component_type" jsonschema:"type of component (text, chart, table, metric, etc.)"`
	Props         map[string]any    `json:"props,omitempty" jsonschema:"component properties (varies by type)"`
	Styles        map[string]string `json:"styles,omitempty" jsonschema:"CSS styles to apply"`
	ComponentID   string            `json:"component_id,omitempty" jsonschema:"optional custom component ID"`
	Position      *int              `json:"position,omitempty" jsonschema:"optional position in the component list"`
}

type addComponentOutput struct {
	Added       bool          `json:"added"`
	Component   *ui.Component `json:"component"`
	ViewVersion int           `json:"view_version"`
}

type updateComponentInput struct {
	ViewID      string            `json:"view_id" jsonschema:"view containing the component"`
	ComponentID string            `json:"component_id" jsonschema:"component to update"`
	Props       map[string]any    `json:"props,omitempty" jsonschema:"properties to update (merged with existing)"`
	Styles      map[string]string `json:"styles,omitempty" jsonschema:"styles to update (merged with existing)"`
}

type updateComponentOutput struct {
	Updated   bool          `json:"updated"`
	Component *ui.Component `json:"component"`
}

type removeComponentInput struct {
	ViewID      string `json:"view_id" jsonschema:"view containing the component"`
	ComponentID string `json:"component_id" jsonschema:"component to remove"`
}

type removeComponentOutput struct {
	Removed     bool   `json:"removed"`
	ComponentID string `json:"component_id"`
	ViewID      string `json:"view_id"`
}

type pushViewInput struct {
	ViewID string `json:"view_id" jsonschema:"view to push"`
}

type pushViewOutput struct {
	Pushed     bool   `json:"pushed"`
	ViewID     string `json:"view_id"`
	Recipients int    `json:"recipients"`
}

type createDashboardInput struct {
	Name    string           `json:"name" jsonschema:"dashboard name"`
	Metrics []map[string]any `json:"metrics,omitempty" jsonschema:"metric configs [{label, value, unit, trend}]"`
	Charts  []map[string]any `json:"charts,omitempty" jsonschema:"chart configs [{title, chart_type, data}]"`
	Tables  []map[string]any `json:"tables,omitempty" jsonschema:"table configs [{columns, rows}]"`
}

type createDashboardOutput struct {
	Created         bool     `json:"created"`
	ViewID          string   `json:"view_id"`
	ViewName        string   `json:"view_name"`
	ComponentsAdded int      `json:"components_added"`
	ComponentIDs    []string `json:"component_ids"`
}

func (s *Server) registerAuthoringTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_create_view",
		Description: "Create a new view. Requires authoring to be enabled.",
	}, s.createView)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_delete_view",
		Description: "Delete a view. Requires authoring to be enabled.",
	}, s.deleteView)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_add_component",
		Description: "Add a component to a view and push the update to subscribed clients. Requires authoring to be enabled.",
	}, s.addComponent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_update_component",
		Description: "Update a component's properties or styles and push the update. Requires authoring to be enabled.",
	}, s.updateComponent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_remove_component",
		Description: "Remove a component from a view and push the update. Requires authoring to be enabled.",
	}, s.removeComponent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_push_view",
		Description: "Push the full view state to all subscribed clients to force a refresh.",
	}, s.pushView)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_create_dashboard",
		Description: "Create a complete dashboard with metrics, charts and tables in one call. Requires authoring to be enabled.",
	}, s.createDashboard)
}

func (s *Server) createView(ctx context.Context, _ *mcp.CallToolRequest, input createViewInput) (*mcp.CallToolResult, createViewOutput, error) {
	layoutType := input.LayoutType
	if layoutType == "" {
		layoutType = "flex"
	}
	layout := map[string]any{"type": layoutType}
	if layoutType == "grid" {
		columns := input.LayoutColumns
		if columns <= 0 {
			columns = 1
		}
		layout["columns"] = columns
	}

	v, err := s.manager.CreateView(ctx, input.Name, input.ViewID, layout, nil)
	if err != nil {
		return nil, createViewOutput{}, err
	}
	return nil, createViewOutput{Created: true, View: v}, nil
}

func (s *Server) deleteView(ctx context.Context, _ *mcp.CallToolRequest, input deleteViewInput) (*mcp.CallToolResult, deleteViewOutput, error) {
	if err := s.manager.DeleteView(ctx, input.ViewID); err != nil {
		return nil, deleteViewOutput{}, err
	}
	return nil, deleteViewOutput{Deleted: true, ViewID: input.ViewID}, nil
}

func (s *Server) addComponent(ctx context.Context, _ *mcp.CallToolRequest, input addComponentInput) (*mcp.CallToolResult, addComponentOutput, error) {
	component, err := s.manager.AddComponent(ctx, input.ViewID, view.AddComponentParams{
		Type:        ui.ComponentType(input.ComponentType),
		Props:       input.Props,
		Styles:      input.Styles,
		ComponentID: input.ComponentID,
		Position:    input.Position,
	})
	if err != nil {
		return nil, addComponentOutput{}, err
	}

	v, err := s.manager.GetView(ctx, input.ViewID)
	if err != nil {
		return nil, addComponentOutput{}, err
	}
	return nil, addComponentOutput{
		Added:       true,
		Component:   component,
		ViewVersion: v.Version,
	}, nil
}

func (s *Server) updateComponent(ctx context.Context, _ *mcp.CallToolRequest, input updateComponentInput) (*mcp.CallToolResult, updateComponentOutput, error) {
	component, err := s.manager.UpdateComponent(ctx, input.ViewID, input.ComponentID, input.Props, input.Styles)
	if err != nil {
		return nil, updateComponentOutput{}, err
	}
	return nil, updateComponentOutput{Updated: true, Component: component}, nil
}

func (s *Server) removeComponent(ctx context.Context, _ *mcp.CallToolRequest, input removeComponentInput) (*mcp.CallToolResult, removeComponentOutput, error) {
	if err := s.manager.RemoveComponent(ctx, input.ViewID, input.ComponentID); err != nil {
		return nil, removeComponentOutput{}, err
	}
	return nil, removeComponentOutput{
		Removed:     true,
		ComponentID: input.ComponentID,
		ViewID:      input.ViewID,
	}, nil
}

func (s *Server) pushView(ctx context.Context, _ *mcp.CallToolRequest, input pushViewInput) (*mcp.CallToolResult, pushViewOutput, error) {
	recipients, err := s.manager.PushView(ctx, input.ViewID)
	if err != nil {
		return nil, pushViewOutput{}, err
	}
	return nil, pushViewOutput{
		Pushed:     true,
		ViewID:     input.ViewID,
		Recipients: recipients,
	}, nil
}

func (s *Server) createDashboard(ctx context.Context, _ *mcp.CallToolRequest, input createDashboardInput) (*mcp.CallToolResult, createDashboardOutput, error) {
	v, err := s.manager.CreateView(ctx, input.Name, "", map[string]any{
		"type":    "grid",
		"columns": 3,
	}, nil)
	if err != nil {
		return nil, createDashboardOutput{}, err
	}

	sections := []struct {
		componentType ui.ComponentType
		configs       []map[string]any
	}{
		{ui.TypeMetric, input.Metrics},
		{ui.TypeChart, input.Charts},
		{ui.TypeTable, input.Tables},
	}

	var componentIDs []string
	for _, section := range sections {
		for _, props := range section.configs {
			component, err := s.manager.AddComponent(ctx, v.ID, view.AddComponentParams{
				Type:  section.componentType,
				Props: props,
			})
			if err != nil {
				return nil, createDashboardOutput{}, err
			}
			componentIDs = append(componentIDs, component.ID)
		}
	}

	return nil, createDashboardOutput{
		Created:         true,
		ViewID:          v.ID,
		ViewName:        input.Name,
		ComponentsAdded: len(componentIDs),
		ComponentIDs:    componentIDs,
	}, nil
}
