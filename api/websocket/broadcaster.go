package websocket

import (
	"context"
	"reflect"
	"strings"
	"time"

	"cosmossdk.io/log"

	"github.com/openalpha/hwmvault/api/types"
)

// Broadcaster polls the vault service and publishes changes to the hub
type Broadcaster struct {
	hub      *Hub
	service  types.VaultService
	interval time.Duration
	logger   log.Logger

	// last payload per channel; only touched by the polling goroutine
	last map[string]interface{}
}

// NewBroadcaster creates a broadcaster polling every interval
func NewBroadcaster(hub *Hub, service types.VaultService, interval time.Duration, logger log.Logger) *Broadcaster {
	return &Broadcaster{
		hub:      hub,
		service:  service,
		interval: interval,
		logger:   logger.With("module", "ws-broadcaster"),
		last:     make(map[string]interface{}),
	}
}

// Run polls until ctx is done
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.Tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Tick publishes every subscribed channel whose payload changed since the
// previous tick. Channels without subscribers are not queried.
func (b *Broadcaster) Tick(ctx context.Context) {
	active := b.hub.ActiveChannels()
	live := make(map[string]bool, len(active))
	for _, channel := range active {
		live[channel] = true
		data, key, err := b.fetch(ctx, channel)
		if err != nil {
			b.logger.Debug("channel fetch failed", "channel", channel, "error", err)
			continue
		}
		if prev, ok := b.last[channel]; ok && reflect.DeepEqual(prev, key) {
			continue
		}
		b.last[channel] = key
		b.hub.BroadcastToChannel(channel, &WSMessage{Type: "update", Channel: channel, Data: data})
	}
	// a channel that loses all subscribers starts fresh when resubscribed
	for channel := range b.last {
		if !live[channel] {
			delete(b.last, channel)
		}
	}
}

// fetch returns the payload for channel and its comparison key, which
// leaves out timestamps
func (b *Broadcaster) fetch(ctx context.Context, channel string) (interface{}, interface{}, error) {
	switch channel {
	case ChannelVault:
		v, err := b.service.Vault(ctx)
		if err != nil {
			return nil, nil, err
		}
		key := *v
		key.Timestamp = 0
		return v, key, nil
	case ChannelPrice:
		p, err := b.service.Price(ctx)
		if err != nil {
			return nil, nil, err
		}
		key := *p
		key.Timestamp = 0
		return p, key, nil
	case ChannelWithdrawals:
		w, err := b.service.Withdrawals(ctx, 0, 0)
		if err != nil {
			return nil, nil, err
		}
		return w, *w, nil
	}
	h, err := b.service.Holder(ctx, strings.TrimPrefix(channel, ChannelHolderPrefix))
	if err != nil {
		return nil, nil, err
	}
	return h, *h, nil
}
