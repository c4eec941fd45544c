// Package push tracks connected clients and their view subscriptions
// and fans accepted mutations out to them. Delivery is best-effort:
// a failing or stalled subscriber never blocks the publisher or the
// originating mutation.
package push

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/viewdeck/viewdeck/pkg/metrics"
	"github.com/viewdeck/viewdeck/pkg/ui"
)

// Sentinel errors for subscription bookkeeping.
var (
	// ErrClientNotFound is returned when a client id is not connected.
	ErrClientNotFound = errors.New("push: client not found")

	// ErrMaxClientsReached is returned when connecting would exceed the
	// configured client limit.
	ErrMaxClientsReached = errors.New("push: max clients reached")
)

// Config holds configuration for the push channel.
type Config struct {
	// MaxClients is the maximum number of connected clients.
	// 0 means no limit.
	MaxClients int

	// QueueSize is the per-client update queue depth. A full queue
	// drops the update for that client. Default: 64.
	QueueSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxClients: 0,
		QueueSize:  64,
	}
}

// Channel manages client connections and update fan-out. It is safe
// for concurrent use and maintains its own synchronization discipline,
// independent of the view store's.
type Channel struct {
	mu      sync.RWMutex
	clients map[string]*Client
	config  *Config
	logger  *slog.Logger
}

// NewChannel creates a push channel.
func NewChannel(config *Config, logger *slog.Logger) *Channel {
	if config == nil {
		config = DefaultConfig()
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		clients: make(map[string]*Client),
		config:  config,
		logger:  logger.With("component", "push_channel"),
	}
}

// Connect registers a client with an empty subscription set.
// Re-connecting an existing client id replaces its prior record.
// handler may be nil; if set, a goroutine drains the client's queue
// into it (callback-style delivery).
func (ch *Channel) Connect(clientID string, channelType ui.ChannelType, handler DeliveryFunc) (*Client, error) {
	ch.mu.Lock()

	prior, replacing := ch.clients[clientID]
	if !replacing && ch.config.MaxClients > 0 && len(ch.clients) >= ch.config.MaxClients {
		ch.mu.Unlock()
		return nil, ErrMaxClientsReached
	}

	client := newClient(clientID, channelType, ch.config.QueueSize, handler, ch.logger)
	ch.clients[clientID] = client
	ch.mu.Unlock()

	if replacing {
		prior.close()
	}
	metrics.RecordClientConnect()

	ch.logger.Info("client connected",
		"client_id", clientID,
		"channel_type", string(channelType),
		"replaced", replacing)
	return client, nil
}

// Disconnect removes a client or returns ErrClientNotFound.
func (ch *Channel) Disconnect(clientID string) error {
	ch.mu.Lock()
	client, ok := ch.clients[clientID]
	if ok {
		delete(ch.clients, clientID)
	}
	ch.mu.Unlock()

	if !ok {
		return ErrClientNotFound
	}
	client.close()
	metrics.RecordClientDisconnect()

	ch.logger.Info("client disconnected", "client_id", clientID)
	return nil
}

// Subscribe adds a view id (or the wildcard) to the client's set.
func (ch *Channel) Subscribe(clientID, viewID string) error {
	ch.mu.RLock()
	client, ok := ch.clients[clientID]
	ch.mu.RUnlock()

	if !ok {
		return ErrClientNotFound
	}
	client.subscribe(viewID)
	ch.logger.Debug("client subscribed", "client_id", clientID, "view_id", viewID)
	return nil
}

// Unsubscribe removes a view id from the client's set.
func (ch *Channel) Unsubscribe(clientID, viewID string) error {
	ch.mu.RLock()
	client, ok := ch.clients[clientID]
	ch.mu.RUnlock()

	if !ok {
		return ErrClientNotFound
	}
	client.unsubscribe(viewID)
	return nil
}

// Publish delivers the update to every client subscribed to the
// update's view or the wildcard. Delivery is fire-and-forget per
// client: a full queue drops the update for that client and is
// recorded, never raised. Returns the number of clients the update
// was queued for.
func (ch *Channel) Publish(update ui.Update) int {
	ch.mu.RLock()
	subscribers := make([]*Client, 0, len(ch.clients))
	for _, client := range ch.clients {
		if client.subscribedTo(update.ViewID) {
			subscribers = append(subscribers, client)
		}
	}
	ch.mu.RUnlock()

	recipients := 0
	for _, client := range subscribers {
		if client.deliver(update) {
			recipients++
		} else {
			metrics.RecordDeliveryFailure()
			ch.logger.Warn("delivery failed, update dropped",
				"client_id", client.ID,
				"view_id", update.ViewID,
				"action", string(update.Action))
		}
	}

	metrics.RecordPublish(recipients)
	ch.logger.Debug("update published",
		"view_id", update.ViewID,
		"action", string(update.Action),
		"version", update.Version,
		"recipients", recipients)
	return recipients
}

// Client returns the connection record for a client id.
func (ch *Channel) Client(clientID string) (*Client, error) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	client, ok := ch.clients[clientID]
	if !ok {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// Status reports connected clients and their subscriptions.
func (ch *Channel) Status() Status {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	status := Status{
		ConnectedClients: len(ch.clients),
		Clients:          make([]ClientStatus, 0, len(ch.clients)),
	}
	for _, client := range ch.clients {
		status.Clients = append(status.Clients, client.status())
	}
	return status
}

// Status is a point-in-time snapshot of the channel.
type Status struct {
	ConnectedClients int            `json:"connected_clients"`
	Clients          []ClientStatus `json:"clients"`
}

// ClientStatus describes one connected client.
type ClientStatus struct {
	ClientID        string   `json:"client_id"`
	ChannelType     string   `json:"channel_type"`
	SubscribedViews []string `json:"subscribed_views"`
	ConnectedAt     string   `json:"connected_at"`
}
