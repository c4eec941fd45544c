package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/viewdeck/viewdeck/pkg/registry"
	"github.com/viewdeck/viewdeck/pkg/ui"
)

type emptyInput struct{}

type viewSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ComponentCount int    `json:"component_count" jsonschema:"number of top-level components"`
	Version        int    `json:"version"`
	UpdatedAt      string `json:"updated_at"`
}

type listViewsOutput struct {
	Views []viewSummary `json:"views"`
	Total int           `json:"total"`
}

type getViewInput struct {
	ViewID  string `json:"view_id" jsonschema:"the view ID to retrieve"`
	Adapter string `json:"adapter,omitempty" jsonschema:"render adapter to use (json or html)"`
}

type renderOutput struct {
	AdapterType string         `json:"adapter_type"`
	Content     string         `json:"content" jsonschema:"the rendered view payload"`
	ContentType string         `json:"content_type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type registryOutput struct {
	ComponentTypes []*registry.Definition `json:"component_types"`
	Total          int                    `json:"total"`
}

type adaptersOutput struct {
	Adapters []string `json:"adapters"`
	Default  string   `json:"default"`
}

type historyInput struct {
	ViewID string `json:"view_id,omitempty" jsonschema:"optional view ID to filter history"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of updates to return (default 50)"`
}

type historyOutput struct {
	Updates []ui.Update `json:"updates" jsonschema:"recent updates in chronological order, newest last"`
	Count   int         `json:"count"`
}

func (s *Server) registerQueryTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_list_views",
		Description: "List all available views with their IDs, names, versions and component counts.",
	}, s.listViews)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_get_view",
		Description: "Get a view by ID, rendered through an adapter (json by default).",
	}, s.getView)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_get_component_registry",
		Description: "Get the registered component types with their schemas and default props.",
	}, s.getComponentRegistry)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_get_push_channel_status",
		Description: "Get connected push clients and their view subscriptions.",
	}, s.getPushChannelStatus)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_list_adapters",
		Description: "List the render adapters views can be projected through.",
	}, s.listAdapters)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_get_view_history",
		Description: "Get recent view updates, optionally filtered by view ID.",
	}, s.getViewHistory)
}

func (s *Server) listViews(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, listViewsOutput, error) {
	views, err := s.manager.ListViews(ctx)
	if err != nil {
		return nil, listViewsOutput{}, err
	}

	out := listViewsOutput{
		Views: make([]viewSummary, 0, len(views)),
		Total: len(views),
	}
	for _, v := range views {
		out.Views = append(out.Views, viewSummary{
			ID:             v.ID,
			Name:           v.Name,
			ComponentCount: len(v.Components),
			Version:        v.Version,
			UpdatedAt:      v.UpdatedAt.Format(timeFormat),
		})
	}
	return nil, out, nil
}

func (s *Server) getView(ctx context.Context, _ *mcp.CallToolRequest, input getViewInput) (*mcp.CallToolResult, renderOutput, error) {
	result, err := s.manager.Render(ctx, input.ViewID, input.Adapter)
	if err != nil {
		return nil, renderOutput{}, err
	}
	return nil, renderOutput{
		AdapterType: result.AdapterType,
		Content:     string(result.Content),
		ContentType: result.ContentType,
		Metadata:    result.Metadata,
	}, nil
}

func (s *Server) getComponentRegistry(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, registryOutput, error) {
	defs := s.manager.Registry().List()
	return nil, registryOutput{ComponentTypes: defs, Total: len(defs)}, nil
}

func (s *Server) getPushChannelStatus(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, pushStatusOutput, error) {
	channel := s.manager.Channel()
	if channel == nil {
		return nil, pushStatusOutput{}, nil
	}
	status := channel.Status()
	return nil, pushStatusOutput{
		ConnectedClients: status.ConnectedClients,
		Clients:          status.Clients,
	}, nil
}

func (s *Server) listAdapters(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, adaptersOutput, error) {
	return nil, adaptersOutput{
		Adapters: s.manager.Adapters(),
		Default:  s.manager.DefaultAdapter(),
	}, nil
}

func (s *Server) getViewHistory(_ context.Context, _ *mcp.CallToolRequest, input historyInput) (*mcp.CallToolResult, historyOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	updates := s.manager.History(input.ViewID, limit)
	return nil, historyOutput{Updates: updates, Count: len(updates)}, nil
}

const timeFormat = "2006-01-02T15:04:05Z07:00"
