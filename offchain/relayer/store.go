package relayer

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	storetypes "cosmossdk.io/store/types"
	dbm "github.com/cosmos/cosmos-db"
)

var pendingPrefix = []byte("pending/")

// Pending collects remote values for one handle until every destination has
// answered or the deadline passes
type Pending struct {
	ID           string            `json:"id"`
	Handle       string            `json:"handle"`
	Destinations []string          `json:"destinations"`
	Values       map[string]string `json:"values"`
	Failed       bool              `json:"failed"`
	FailReason   string            `json:"fail_reason,omitempty"`
	ReceivedAt   time.Time         `json:"received_at"`
	Deadline     time.Time         `json:"deadline"`
	Attempts     int               `json:"attempts"`
}

// Complete reports whether every destination has answered
func (p *Pending) Complete() bool {
	for _, d := range p.Destinations {
		if _, ok := p.Values[d]; !ok {
			return false
		}
	}
	return len(p.Destinations) > 0
}

// Missing returns the destinations that have not answered, sorted
func (p *Pending) Missing() []string {
	var out []string
	for _, d := range p.Destinations {
		if _, ok := p.Values[d]; !ok {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}

// OrderedValues returns the values in destination order
func (p *Pending) OrderedValues() []string {
	out := make([]string, 0, len(p.Destinations))
	for _, d := range p.Destinations {
		out = append(out, p.Values[d])
	}
	return out
}

// PendingStore persists pending aggregations so a restart does not drop a
// handle mid-collection
type PendingStore struct {
	db dbm.DB
}

// NewPendingStore wraps db
func NewPendingStore(db dbm.DB) *PendingStore {
	return &PendingStore{db: db}
}

// OpenPendingStore opens a store under dir with the given cosmos-db backend
func OpenPendingStore(dir, backend string) (*PendingStore, error) {
	db, err := dbm.NewDB("relayer", dbm.BackendType(backend), dir)
	if err != nil {
		return nil, fmt.Errorf("open pending store: %w", err)
	}
	return NewPendingStore(db), nil
}

func pendingKey(handle string) []byte {
	return append(append([]byte{}, pendingPrefix...), []byte(handle)...)
}

// Get loads the aggregation for handle
func (s *PendingStore) Get(handle string) (*Pending, bool, error) {
	bz, err := s.db.Get(pendingKey(handle))
	if err != nil {
		return nil, false, err
	}
	if bz == nil {
		return nil, false, nil
	}
	var p Pending
	if err := json.Unmarshal(bz, &p); err != nil {
		return nil, false, fmt.Errorf("decode pending %s: %w", handle, err)
	}
	return &p, true, nil
}

// Put stores p
func (s *PendingStore) Put(p *Pending) error {
	bz, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.db.SetSync(pendingKey(p.Handle), bz)
}

// Delete removes handle
func (s *PendingStore) Delete(handle string) error {
	return s.db.DeleteSync(pendingKey(handle))
}

// All returns every pending aggregation in handle order
func (s *PendingStore) All() ([]*Pending, error) {
	iter, err := s.db.Iterator(pendingPrefix, storetypes.PrefixEndBytes(pendingPrefix))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []*Pending
	for ; iter.Valid(); iter.Next() {
		var p Pending
		if err := json.Unmarshal(iter.Value(), &p); err != nil {
			return nil, fmt.Errorf("decode pending %s: %w", iter.Key(), err)
		}
		out = append(out, &p)
	}
	return out, iter.Error()
}

// Close closes the underlying database
func (s *PendingStore) Close() error {
	return s.db.Close()
}
