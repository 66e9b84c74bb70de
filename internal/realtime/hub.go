package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains user_id -> set of connections and delivers feed events.
// Uses Redis pub/sub for horizontal scaling: local delivery + publish to
// Redis so other instances reach the user's connections they hold.
type Hub struct {
	// userID -> map[clientID]*Client
	feeds  map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]func() // cancel Redis subscription per user
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
	sub    Subscriber
}

// Publisher publishes a feed event to Redis for cross-instance delivery.
type Publisher interface {
	PublishFeedEvent(userID uuid.UUID, event string, payload []byte) error
}

// Subscriber subscribes to a user's feed channel and invokes the handler
// for incoming events.
type Subscriber interface {
	SubscribeFeed(userID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		feeds:  make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a connection to the user's feed. The first connection
// for a user starts the Redis subscription for that user's channel.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.feeds[c.UserID] == nil {
		h.feeds[c.UserID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeFeed(c.UserID, func(event string, payload []byte) {
				h.deliverLocal(c.UserID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.UserID] = cancel
			}
		}
	}
	h.feeds[c.UserID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("feed client connected", zap.String("client_id", c.ID), zap.String("user_id", c.UserID.String()))
}

// Unregister removes a connection. The Redis subscription is cancelled
// when the user's last connection closes.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.feeds[c.UserID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.feeds, c.UserID)
			if cancel, ok := h.subs[c.UserID]; ok {
				cancel()
				delete(h.subs, c.UserID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("feed client disconnected", zap.String("client_id", c.ID), zap.String("user_id", c.UserID.String()))
}

// deliverLocal sends an event to the user's connections on this instance.
func (h *Hub) deliverLocal(userID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.feeds[userID]
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// PublishToUser pushes a feed event to all of the user's connections
// across instances. With Redis available, publish only: the subscriber
// callback performs the local delivery once, avoiding duplicates.
func (h *Hub) PublishToUser(userID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		_ = h.pub.PublishFeedEvent(userID, event, data)
		return
	}
	h.deliverLocal(userID, event, json.RawMessage(data))
}

// ConnectionCount returns the number of live connections for a user on
// this instance.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.feeds[userID])
}
