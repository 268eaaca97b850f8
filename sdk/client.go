package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openalpha/hwmvault/api/types"
)

// Client reads a vault API server. It implements types.VaultService so a
// remote pool can stand in wherever a local one is expected.
type Client struct {
	baseURL    string
	wsPath     string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

var _ types.VaultService = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithWSPath sets the websocket path. Nodes serve the feed on /v1/vault/ws,
// the standalone server on /ws.
func WithWSPath(path string) Option {
	return func(c *Client) { c.wsPath = path }
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		wsPath:     "/ws",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dialer:     websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", types.ErrNotFound, body.Error)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", types.ErrInvalidArgument, body.Error)
		}
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Vault implements types.VaultService
func (c *Client) Vault(ctx context.Context) (*types.VaultResponse, error) {
	var out types.VaultResponse
	if err := c.get(ctx, "/v1/vault", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Price implements types.VaultService
func (c *Client) Price(ctx context.Context) (*types.PriceResponse, error) {
	var out types.PriceResponse
	if err := c.get(ctx, "/v1/vault/price", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Holder implements types.VaultService
func (c *Client) Holder(ctx context.Context, address string) (*types.HolderResponse, error) {
	var out types.HolderResponse
	if err := c.get(ctx, "/v1/vault/holders/"+url.PathEscape(address), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Withdrawals implements types.VaultService. A zero limit uses the server
// default.
func (c *Client) Withdrawals(ctx context.Context, offset, limit uint64) (*types.WithdrawalsResponse, error) {
	q := url.Values{}
	if offset > 0 {
		q.Set("offset", strconv.FormatUint(offset, 10))
	}
	if limit > 0 {
		q.Set("limit", strconv.FormatUint(limit, 10))
	}
	var out types.WithdrawalsResponse
	if err := c.get(ctx, "/v1/vault/withdrawals", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Request implements types.VaultService
func (c *Client) Request(ctx context.Context, handle string) (*types.RequestResponse, error) {
	var out types.RequestResponse
	if err := c.get(ctx, "/v1/vault/requests/"+url.PathEscape(handle), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update is a message from the websocket feed
type Update struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Subscribe opens the websocket feed and subscribes to channels. The returned
// channel is closed when ctx is done or the connection drops.
func (c *Client) Subscribe(ctx context.Context, channels ...string) (<-chan Update, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + c.wsPath
	conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	for _, ch := range channels {
		msg := map[string]string{"action": "subscribe", "channel": ch}
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("subscribe %s: %w", ch, err)
		}
	}

	out := make(chan Update, 16)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(out)
		for {
			var u Update
			if err := conn.ReadJSON(&u); err != nil {
				return
			}
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
