package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"cosmossdk.io/log"
	"github.com/google/uuid"

	"github.com/openalpha/hwmvault/api/middleware"
	"github.com/openalpha/hwmvault/metrics"
)

// Channel names
const (
	ChannelVault       = "vault"
	ChannelPrice       = "price"
	ChannelWithdrawals = "withdrawals"
	// ChannelHolderPrefix is followed by a bech32 address
	ChannelHolderPrefix = "holder:"
)

// Hub maintains the set of active clients and fans out channel updates
type Hub struct {
	clients  map[*Client]bool
	channels map[string]map[*Client]bool // channel -> clients

	register    chan *Client
	unregister  chan *Client
	subscribe   chan *SubscriptionRequest
	unsubscribe chan *SubscriptionRequest

	mu   sync.RWMutex
	done chan struct{}

	config  *HubConfig
	metrics *metrics.Collector
	logger  log.Logger
}

// HubConfig contains hub configuration
type HubConfig struct {
	MaxSubscriptions int
	// MessageRateLimit is inbound messages per second per client
	MessageRateLimit int
}

// DefaultHubConfig returns default hub configuration
func DefaultHubConfig() *HubConfig {
	return &HubConfig{
		MaxSubscriptions: 20,
		MessageRateLimit: 20,
	}
}

// SubscriptionRequest represents a subscription change
type SubscriptionRequest struct {
	Client  *Client
	Channel string
}

// NewHub creates a new Hub
func NewHub(config *HubConfig, collector *metrics.Collector, logger log.Logger) *Hub {
	if config == nil {
		config = DefaultHubConfig()
	}
	return &Hub{
		clients:     make(map[*Client]bool),
		channels:    make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan *SubscriptionRequest, 256),
		unsubscribe: make(chan *SubscriptionRequest, 256),
		done:        make(chan struct{}),
		config:      config,
		metrics:     collector,
		logger:      logger.With("module", "ws-hub"),
	}
}

// Run processes registrations until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case req := <-h.subscribe:
			h.handleSubscription(req)
		case req := <-h.unsubscribe:
			h.handleUnsubscription(req)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	h.metrics.RecordWSConnection(1)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for channel, clients := range h.channels {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}
	close(client.send)
	h.metrics.RecordWSConnection(-1)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.conn.Close()
		h.metrics.RecordWSConnection(-1)
	}
	h.clients = make(map[*Client]bool)
	h.channels = make(map[string]map[*Client]bool)
}

func (h *Hub) handleSubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[req.Client] {
		return
	}
	if _, ok := h.channels[req.Channel]; !ok {
		h.channels[req.Channel] = make(map[*Client]bool)
	}
	h.channels[req.Channel][req.Client] = true
	req.Client.enqueue(&WSMessage{Type: "subscribed", Channel: req.Channel})
}

func (h *Hub) handleUnsubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[req.Client] {
		return
	}
	if clients, ok := h.channels[req.Channel]; ok {
		delete(clients, req.Client)
		if len(clients) == 0 {
			delete(h.channels, req.Channel)
		}
	}
	req.Client.enqueue(&WSMessage{Type: "unsubscribed", Channel: req.Channel})
}

// BroadcastToChannel sends a message to all clients subscribed to a channel.
// Slow clients whose buffer is full miss the update.
func (h *Hub) BroadcastToChannel(channel string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to encode broadcast", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.channels[channel] {
		select {
		case client.send <- data:
			h.metrics.RecordWSMessage(metricChannel(channel))
		default:
		}
	}
}

// metricChannel folds per-holder channels into one label
func metricChannel(channel string) string {
	if strings.HasPrefix(channel, ChannelHolderPrefix) {
		return ChannelHolderPrefix + "*"
	}
	return channel
}

// ActiveChannels returns channels with at least one subscriber
func (h *Hub) ActiveChannels() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.channels))
	for channel := range h.channels {
		out = append(out, channel)
	}
	return out
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetChannelClientCount returns the number of clients in a channel
func (h *Hub) GetChannelClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// ServeWS handles WebSocket upgrade requests
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(h, conn, uuid.NewString(), middleware.ClientIP(r))
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// WSMessage is a server to client message
type WSMessage struct {
	Type    string      `json:"type"`
	Channel string      `json:"channel,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
