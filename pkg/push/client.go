package push

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/viewdeck/viewdeck/pkg/ui"
)

// DeliveryFunc receives updates for a callback-style client. Errors
// are logged, never propagated to the publisher.
type DeliveryFunc func(ui.Update) error

// Client is one connected consumer and its subscription set. Each
// client owns a bounded queue; transports (websocket, SSE) drain
// Updates(), callback clients are drained internally.
type Client struct {
	ID          string
	Type        ui.ChannelType
	ConnectedAt time.Time

	mu            sync.RWMutex
	subscriptions map[string]struct{}

	queue chan ui.Update
	done  chan struct{}
	once  sync.Once
}

func newClient(id string, channelType ui.ChannelType, queueSize int, handler DeliveryFunc, logger *slog.Logger) *Client {
	c := &Client{
		ID:            id,
		Type:          channelType,
		ConnectedAt:   time.Now().UTC(),
		subscriptions: make(map[string]struct{}),
		queue:         make(chan ui.Update, queueSize),
		done:          make(chan struct{}),
	}
	if handler != nil {
		go c.drain(handler, logger)
	}
	return c
}

// Updates returns the client's receive channel. Transports must also
// select on Done so a disconnect unblocks them.
func (c *Client) Updates() <-chan ui.Update {
	return c.queue
}

// Done is closed when the client is disconnected or replaced.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Subscriptions returns the subscribed view ids, sorted.
func (c *Client) Subscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.subscriptions))
	for id := range c.subscriptions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Client) subscribe(viewID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[viewID] = struct{}{}
}

func (c *Client) unsubscribe(viewID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, viewID)
}

func (c *Client) subscribedTo(viewID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.subscriptions[ui.WildcardView]; ok {
		return true
	}
	_, ok := c.subscriptions[viewID]
	return ok
}

// deliver queues the update without blocking. Returns false when the
// client's queue is full or the client is closed.
func (c *Client) deliver(update ui.Update) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.queue <- update:
		return true
	default:
		return false
	}
}

// drain feeds queued updates to a callback handler until close.
func (c *Client) drain(handler DeliveryFunc, logger *slog.Logger) {
	for {
		select {
		case update := <-c.queue:
			if err := handler(update); err != nil {
				logger.Warn("callback delivery error",
					"client_id", c.ID,
					"view_id", update.ViewID,
					"error", err)
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *Client) status() ClientStatus {
	return ClientStatus{
		ClientID:        c.ID,
		ChannelType:     string(c.Type),
		SubscribedViews: c.Subscriptions(),
		ConnectedAt:     c.ConnectedAt.Format(time.RFC3339),
	}
}
