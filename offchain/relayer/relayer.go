package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/openalpha/hwmvault/metrics"
	"github.com/openalpha/hwmvault/x/vault/types"
)

// ErrUnknownHandle is returned for values of handles the relayer never saw
var ErrUnknownHandle = errors.New("unknown handle")

// Relayer collects remote values per handle and replies to the pool as its
// coordinator
type Relayer struct {
	cfg       *Config
	store     *PendingStore
	submitter ReplySubmitter
	metrics   *metrics.Collector
	logger    log.Logger
	now       func() time.Time

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	subs   []*nats.Subscription
	wg     sync.WaitGroup
}

// New creates a relayer. collector may be nil.
func New(cfg *Config, store *PendingStore, submitter ReplySubmitter, collector *metrics.Collector, logger log.Logger) *Relayer {
	return &Relayer{
		cfg:       cfg,
		store:     store,
		submitter: submitter,
		metrics:   collector,
		logger:    logger.With("module", "relayer"),
		now:       time.Now,
		ctx:       context.Background(),
	}
}

// HandleQuery starts collecting values for q. Queries for a handle already
// being collected are ignored; the node may publish the same query more than
// once.
func (r *Relayer) HandleQuery(q Query) error {
	if q.Handle == "" || len(q.Destinations) == 0 {
		return fmt.Errorf("query needs a handle and destinations")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok, err := r.store.Get(q.Handle); err != nil || ok {
		return err
	}
	now := r.now()
	p := &Pending{
		ID:           uuid.NewString(),
		Handle:       q.Handle,
		Destinations: dedupe(q.Destinations),
		Values:       make(map[string]string),
		ReceivedAt:   now,
		Deadline:     now.Add(r.cfg.ReplyDeadline),
	}
	if err := r.store.Put(p); err != nil {
		return err
	}
	r.logger.Info("collecting remote values", "handle", p.Handle, "id", p.ID, "domains", len(p.Destinations))
	r.updatePending()
	return nil
}

// HandleValue records one domain's answer and replies once the handle is
// complete or a domain reported failure
func (r *Relayer) HandleValue(handle string, v Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok, err := r.store.Get(handle)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}
	if !contains(p.Destinations, v.Domain) {
		return fmt.Errorf("domain %q is not a destination of %s", v.Domain, handle)
	}

	switch {
	case !v.Success:
		p.Failed = true
		p.FailReason = fmt.Sprintf("%s: %s", v.Domain, v.Error)
	default:
		amount, ok := math.NewIntFromString(v.Value)
		if !ok || amount.IsNegative() {
			p.Failed = true
			p.FailReason = fmt.Sprintf("%s: bad value %q", v.Domain, v.Value)
		} else {
			p.Values[v.Domain] = amount.String()
		}
	}
	if err := r.store.Put(p); err != nil {
		return err
	}

	if p.Failed || p.Complete() {
		return r.reply(p)
	}
	return nil
}

// Sweep fails handles past their deadline and retries replies that could not
// be submitted earlier. It returns the number of replies submitted.
func (r *Relayer) Sweep() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.store.All()
	if err != nil {
		return 0, err
	}
	now := r.now()
	submitted := 0
	for _, p := range all {
		if !p.Failed && !p.Complete() {
			if now.Before(p.Deadline) {
				continue
			}
			p.Failed = true
			p.FailReason = fmt.Sprintf("deadline passed, missing %v", p.Missing())
		}
		if err := r.reply(p); err != nil {
			r.logger.Error("reply failed", "handle", p.Handle, "attempts", p.Attempts, "error", err)
			continue
		}
		submitted++
	}
	return submitted, nil
}

// reply submits p's outcome and forgets it on success. Callers hold r.mu.
func (r *Relayer) reply(p *Pending) error {
	msg := &types.MsgReplyCrossDomain{
		Coordinator: r.cfg.Coordinator,
		Handle:      p.Handle,
		Success:     !p.Failed,
	}
	if !p.Failed {
		msg.RemoteValues = p.OrderedValues()
	}
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	p.Attempts++
	if err := r.submitter.SubmitReply(r.ctx, msg); err != nil {
		if errors.Is(err, ErrReplyRejected) {
			r.logger.Error("reply rejected, dropping handle", "handle", p.Handle, "attempts", p.Attempts, "error", err)
			if delErr := r.store.Delete(p.Handle); delErr != nil {
				return errors.Join(err, delErr)
			}
			r.updatePending()
			return err
		}
		if putErr := r.store.Put(p); putErr != nil {
			return errors.Join(err, putErr)
		}
		return err
	}

	latency := float64(r.now().Sub(p.ReceivedAt).Microseconds()) / 1000.0
	if r.metrics != nil {
		r.metrics.RecordRelayerReply(msg.Success, latency)
	}
	r.logger.Info("reply submitted",
		"handle", p.Handle,
		"success", msg.Success,
		"reason", p.FailReason,
		"attempts", p.Attempts,
		"latency_ms", latency,
	)
	if err := r.store.Delete(p.Handle); err != nil {
		return err
	}
	r.updatePending()
	return nil
}

func (r *Relayer) updatePending() {
	if r.metrics == nil {
		return
	}
	if all, err := r.store.All(); err == nil {
		r.metrics.RelayerPending.Set(float64(len(all)))
	}
}

// Start subscribes to the query and value subjects and runs the deadline
// sweeper until ctx is done or Stop is called
func (r *Relayer) Start(ctx context.Context, nc *nats.Conn) error {
	r.mu.Lock()
	r.ctx, r.cancel = context.WithCancel(ctx)
	runCtx := r.ctx
	r.mu.Unlock()

	querySub, err := nc.Subscribe(QuerySubject, func(m *nats.Msg) {
		r.dispatchQuery(m.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", QuerySubject, err)
	}

	valueSub, err := nc.Subscribe(ValueSubjectPrefix+"*", func(m *nats.Msg) {
		r.dispatchValue(m.Subject, m.Data)
	})
	if err != nil {
		_ = querySub.Unsubscribe()
		return fmt.Errorf("subscribe %s: %w", ValueSubjectPrefix, err)
	}

	r.mu.Lock()
	r.subs = []*nats.Subscription{querySub, valueSub}
	r.mu.Unlock()

	r.wg.Add(1)
	go r.sweepLoop(runCtx)

	r.logger.Info("relayer started", "nats", nc.ConnectedUrl(), "worker", r.cfg.WorkerIndex, "workers", r.cfg.WorkerCount)
	return nil
}

// Owns reports whether this worker aggregates handle
func (r *Relayer) Owns(handle string) bool {
	if r.cfg.WorkerCount <= 1 {
		return true
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(handle))
	return int(h.Sum32()%uint32(r.cfg.WorkerCount)) == r.cfg.WorkerIndex
}

func (r *Relayer) dispatchQuery(data []byte) {
	var q Query
	if err := json.Unmarshal(data, &q); err != nil {
		r.logger.Error("bad query", "error", err)
		return
	}
	if !r.Owns(q.Handle) {
		return
	}
	if err := r.HandleQuery(q); err != nil {
		r.logger.Error("query rejected", "handle", q.Handle, "error", err)
	}
}

func (r *Relayer) dispatchValue(subject string, data []byte) {
	handle, ok := handleFromSubject(subject)
	if !ok || !r.Owns(handle) {
		return
	}
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		r.logger.Error("bad value", "handle", handle, "error", err)
		return
	}
	if err := r.HandleValue(handle, v); err != nil {
		r.logger.Error("value rejected", "handle", handle, "domain", v.Domain, "error", err)
	}
}

func (r *Relayer) sweepLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(); err != nil {
				r.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// Stop unsubscribes and waits for the sweeper to exit
func (r *Relayer) Stop() error {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	var errs []error
	for _, s := range subs {
		if err := s.Unsubscribe(); err != nil {
			errs = append(errs, err)
		}
	}
	r.wg.Wait()
	return errors.Join(errs...)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
