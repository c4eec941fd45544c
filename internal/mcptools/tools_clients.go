package mcptools

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/viewdeck/viewdeck/pkg/push"
	"github.com/viewdeck/viewdeck/pkg/ui"
)

// errPushDisabled is returned by client tools when no push channel is
// configured.
var errPushDisabled = errors.New("mcptools: push channel disabled")

type pushStatusOutput struct {
	ConnectedClients int                 `json:"connected_clients"`
	Clients          []push.ClientStatus `json:"clients"`
}

type connectClientInput struct {
	ClientID    string   `json:"client_id" jsonschema:"unique identifier for the client"`
	SubscribeTo []string `json:"subscribe_to,omitempty" jsonschema:"view IDs to subscribe to (use * for all)"`
}

type connectClientOutput struct {
	Connected    bool     `json:"connected"`
	ClientID     string   `json:"client_id"`
	SubscribedTo []string `json:"subscribed_to"`
}

type disconnectClientInput struct {
	ClientID string `json:"client_id" jsonschema:"client to disconnect"`
}

type disconnectClientOutput struct {
	Disconnected bool   `json:"disconnected"`
	ClientID     string `json:"client_id"`
}

type subscribeInput struct {
	ClientID string `json:"client_id" jsonschema:"client to subscribe"`
	ViewID   string `json:"view_id" jsonschema:"view to subscribe to (use * for all views)"`
}

type subscribeOutput struct {
	Subscribed bool   `json:"subscribed"`
	ClientID   string `json:"client_id"`
	ViewID     string `json:"view_id"`
}

func (s *Server) registerClientTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_connect_client",
		Description: "Register a client connection for receiving updates. Pair with a websocket or SSE connection for delivery.",
	}, s.connectClient)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_disconnect_client",
		Description: "Disconnect a client and drop its subscriptions.",
	}, s.disconnectClient)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ui_subscribe",
		Description: "Subscribe a client to a view's updates.",
	}, s.subscribe)
}

func (s *Server) connectClient(_ context.Context, _ *mcp.CallToolRequest, input connectClientInput) (*mcp.CallToolResult, connectClientOutput, error) {
	channel := s.manager.Channel()
	if channel == nil {
		return nil, connectClientOutput{}, errPushDisabled
	}

	client, err := channel.Connect(input.ClientID, ui.ChannelCallback, nil)
	if err != nil {
		return nil, connectClientOutput{}, err
	}
	for _, viewID := range input.SubscribeTo {
		if err := channel.Subscribe(input.ClientID, viewID); err != nil {
			return nil, connectClientOutput{}, err
		}
	}

	return nil, connectClientOutput{
		Connected:    true,
		ClientID:     input.ClientID,
		SubscribedTo: client.Subscriptions(),
	}, nil
}

func (s *Server) disconnectClient(_ context.Context, _ *mcp.CallToolRequest, input disconnectClientInput) (*mcp.CallToolResult, disconnectClientOutput, error) {
	channel := s.manager.Channel()
	if channel == nil {
		return nil, disconnectClientOutput{}, errPushDisabled
	}
	if err := channel.Disconnect(input.ClientID); err != nil {
		return nil, disconnectClientOutput{}, err
	}
	return nil, disconnectClientOutput{Disconnected: true, ClientID: input.ClientID}, nil
}

func (s *Server) subscribe(_ context.Context, _ *mcp.CallToolRequest, input subscribeInput) (*mcp.CallToolResult, subscribeOutput, error) {
	channel := s.manager.Channel()
	if channel == nil {
		return nil, subscribeOutput{}, errPushDisabled
	}
	if err := channel.Subscribe(input.ClientID, input.ViewID); err != nil {
		return nil, subscribeOutput{}, err
	}
	return nil, subscribeOutput{
		Subscribed: true,
		ClientID:   input.ClientID,
		ViewID:     input.ViewID,
	}, nil
}
