package keeper

import (
	"context"
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"
)

// Messenger delivers remote value queries to linked pool instances. Replies
// arrive out of band through MsgReplyCrossDomain.
type Messenger interface {
	Quote(ctx context.Context, payload, options []byte) (sdk.Coins, error)
	Send(ctx context.Context, payload []byte, destinations []string, options []byte, fee sdk.Coins) (string, error)
}

// handleNamespace scopes loopback correlation handles
var handleNamespace = uuid.MustParse("6f1c9a52-3c1e-4b8e-9a57-0d7b1f3e2c44")

// SentMessage is a query handed to the LoopbackMessenger
type SentMessage struct {
	Handle       string    `json:"handle"`
	Payload      []byte    `json:"payload"`
	Destinations []string  `json:"destinations"`
	Options      []byte    `json:"options,omitempty"`
	Fee          sdk.Coins `json:"fee"`
}

// LoopbackMessenger keeps queries in process for single-node deployments and
// tests. Handles are name-based UUIDs of the payload so every node derives the
// same one.
type LoopbackMessenger struct {
	mu        sync.Mutex
	fee       sdk.Coins
	sent      []SentMessage
	listeners []func(SentMessage)
}

// NewLoopbackMessenger creates a messenger that quotes a flat fee
func NewLoopbackMessenger(fee sdk.Coins) *LoopbackMessenger {
	return &LoopbackMessenger{fee: fee}
}

// Quote implements Messenger
func (m *LoopbackMessenger) Quote(_ context.Context, _, _ []byte) (sdk.Coins, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fee, nil
}

// Send implements Messenger
func (m *LoopbackMessenger) Send(_ context.Context, payload []byte, destinations []string, options []byte, fee sdk.Coins) (string, error) {
	msg := SentMessage{
		Handle:       uuid.NewSHA1(handleNamespace, payload).String(),
		Payload:      payload,
		Destinations: append([]string(nil), destinations...),
		Options:      options,
		Fee:          fee,
	}

	m.mu.Lock()
	m.sent = append(m.sent, msg)
	listeners := append([]func(SentMessage){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(msg)
	}
	return msg.Handle, nil
}

// OnSend registers fn to observe every sent query
func (m *LoopbackMessenger) OnSend(fn func(SentMessage)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Sent returns the queries sent so far
func (m *LoopbackMessenger) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}
