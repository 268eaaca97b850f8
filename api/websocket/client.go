package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1024

	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// pool state is public; any origin may read it
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is a WebSocket connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	id string
	ip string

	subscriptions map[string]bool
	subMu         sync.Mutex

	messageCount int
	lastReset    time.Time
}

// ClientMessage is a client to server message
type ClientMessage struct {
	Action  string `json:"action"` // "subscribe", "unsubscribe", "ping"
	Channel string `json:"channel"`
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, id, ip string) *Client {
	return &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, sendBufferSize),
		id:            id,
		ip:            ip,
		subscriptions: make(map[string]bool),
		lastReset:     time.Now(),
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read failed", "client", c.id, "ip", c.ip, "error", err)
			}
			return
		}

		if !c.checkRateLimit() {
			c.sendError("rate_limit_exceeded", "too many messages")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("invalid_message", "failed to parse message")
			continue
		}
		c.handleMessage(&msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// one JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.hub.done:
			return
		}
	}
}

func (c *Client) handleMessage(msg *ClientMessage) {
	switch msg.Action {
	case "subscribe":
		c.handleSubscribe(msg.Channel)
	case "unsubscribe":
		c.handleUnsubscribe(msg.Channel)
	case "ping":
		c.enqueue(&WSMessage{Type: "pong", Data: map[string]int64{"timestamp": time.Now().UnixMilli()}})
	default:
		c.sendError("unknown_action", "unknown action: "+msg.Action)
	}
}

func (c *Client) handleSubscribe(channel string) {
	if !validChannel(channel) {
		c.sendError("invalid_channel", "unknown channel: "+channel)
		return
	}

	c.subMu.Lock()
	if !c.subscriptions[channel] && len(c.subscriptions) >= c.hub.config.MaxSubscriptions {
		c.subMu.Unlock()
		c.sendError("subscription_limit", "maximum subscription limit reached")
		return
	}
	c.subscriptions[channel] = true
	c.subMu.Unlock()

	select {
	case c.hub.subscribe <- &SubscriptionRequest{Client: c, Channel: channel}:
	case <-c.hub.done:
	}
}

func (c *Client) handleUnsubscribe(channel string) {
	c.subMu.Lock()
	delete(c.subscriptions, channel)
	c.subMu.Unlock()

	select {
	case c.hub.unsubscribe <- &SubscriptionRequest{Client: c, Channel: channel}:
	case <-c.hub.done:
	}
}

func validChannel(channel string) bool {
	switch channel {
	case ChannelVault, ChannelPrice, ChannelWithdrawals:
		return true
	}
	addr, ok := strings.CutPrefix(channel, ChannelHolderPrefix)
	if !ok {
		return false
	}
	_, err := sdk.AccAddressFromBech32(addr)
	return err == nil
}

func (c *Client) checkRateLimit() bool {
	now := time.Now()
	if now.Sub(c.lastReset) >= time.Second {
		c.messageCount = 0
		c.lastReset = now
	}
	c.messageCount++
	return c.messageCount <= c.hub.config.MessageRateLimit
}

func (c *Client) sendError(code, message string) {
	c.enqueue(&WSMessage{
		Type: "error",
		Data: map[string]string{"code": code, "message": message},
	})
}

// enqueue drops the message when the buffer is full
func (c *Client) enqueue(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
