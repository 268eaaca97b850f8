package relayer

import (
	"encoding/json"

	"cosmossdk.io/log"
	"github.com/nats-io/nats.go"

	vaultkeeper "github.com/openalpha/hwmvault/x/vault/keeper"
)

// Publisher is the subset of *nats.Conn the query publisher uses
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// QueryPublisher forwards queries sent by the node's messenger to the relayer
// bus. Publishing is best effort: a lost query ends in the request expiring
// and its assets being recoverable.
type QueryPublisher struct {
	pub    Publisher
	logger log.Logger
}

// NewQueryPublisher creates a publisher on pub
func NewQueryPublisher(pub Publisher, logger log.Logger) *QueryPublisher {
	return &QueryPublisher{pub: pub, logger: logger.With("module", "relayer-publisher")}
}

// Forward publishes m on QuerySubject. It matches the messenger's OnSend
// listener signature.
func (p *QueryPublisher) Forward(m vaultkeeper.SentMessage) {
	bz, err := json.Marshal(Query{
		Handle:       m.Handle,
		Destinations: m.Destinations,
		Payload:      m.Payload,
	})
	if err != nil {
		p.logger.Error("encode query", "handle", m.Handle, "error", err)
		return
	}
	if err := p.pub.Publish(QuerySubject, bz); err != nil {
		p.logger.Error("publish query", "handle", m.Handle, "error", err)
		return
	}
	p.logger.Debug("query published", "handle", m.Handle, "domains", len(m.Destinations))
}
