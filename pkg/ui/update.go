package ui

import "time"

// Action describes the kind of mutation an Update carries.
type Action string

// Update actions.
const (
	ActionFull            Action = "full"
	ActionAddComponent    Action = "add_component"
	ActionUpdateComponent Action = "update_component"
	ActionRemoveComponent Action = "remove_component"
)

// Update is an immutable record of one accepted mutation. Version is
// the view's version after the mutation was applied.
type Update struct {
	ViewID    string         `json:"view_id"`
	Action    Action         `json:"action"`
	Payload   map[string]any `json:"payload"`
	Version   int            `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
}

// ChannelType identifies how a connected client receives updates.
type ChannelType string

// Client channel types.
const (
	ChannelCallback  ChannelType = "callback"
	ChannelWebSocket ChannelType = "websocket"
	ChannelSSE       ChannelType = "sse"
)

// WildcardView subscribes a client to every view, present and future.
const WildcardView = "*"
