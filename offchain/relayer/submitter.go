package relayer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/tx"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// ReplySubmitter delivers coordinator replies to the chain
type ReplySubmitter interface {
	// SubmitReply broadcasts a single reply
	SubmitReply(ctx context.Context, msg *types.MsgReplyCrossDomain) error

	// GetStatus returns the submitter status
	GetStatus() SubmitterStatus
}

// SubmitterStatus represents the status of a submitter
type SubmitterStatus struct {
	Connected         bool
	LastSubmitTime    time.Time
	LastError         string
	TotalSubmissions  int64
	FailedSubmissions int64
}

// MockSubmitter records replies in memory
type MockSubmitter struct {
	mu              sync.Mutex
	replies         []*types.MsgReplyCrossDomain
	status          SubmitterStatus
	simulateFailure bool
	rejectErr       error
}

// NewMockSubmitter creates a new mock submitter
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{
		status: SubmitterStatus{Connected: true},
	}
}

// SubmitReply records msg
func (s *MockSubmitter) SubmitReply(_ context.Context, msg *types.MsgReplyCrossDomain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.simulateFailure {
		s.status.FailedSubmissions++
		s.status.LastError = "simulated failure"
		return fmt.Errorf("simulated failure")
	}
	if s.rejectErr != nil {
		s.status.FailedSubmissions++
		s.status.LastError = s.rejectErr.Error()
		return s.rejectErr
	}

	s.replies = append(s.replies, msg)
	s.status.TotalSubmissions++
	s.status.LastSubmitTime = time.Now()
	return nil
}

// GetStatus returns the mock submitter status
func (s *MockSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Replies returns all submitted replies
func (s *MockSubmitter) Replies() []*types.MsgReplyCrossDomain {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*types.MsgReplyCrossDomain(nil), s.replies...)
}

// SetSimulateFailure enables or disables failure simulation
func (s *MockSubmitter) SetSimulateFailure(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateFailure = fail
}

// SetRejection makes every submission fail with err until reset with nil
func (s *MockSubmitter) SetRejection(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectErr = err
}

// ErrReplyRejected marks a reply the chain refused for good: the request is
// gone or already answered, so resubmitting cannot succeed.
var ErrReplyRejected = errors.New("reply rejected")

// broadcastFunc signs and broadcasts msg and returns the node's CheckTx result
type broadcastFunc func(ctx context.Context, msg sdk.Msg) (*sdk.TxResponse, error)

// ChainSubmitter signs replies with the coordinator key and broadcasts them
type ChainSubmitter struct {
	broadcast     broadcastFunc
	retryAttempts int
	retryDelay    time.Duration

	mu     sync.Mutex
	status SubmitterStatus
}

// ChainSubmitterConfig holds configuration for ChainSubmitter
type ChainSubmitterConfig struct {
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultChainSubmitterConfig returns default configuration
func DefaultChainSubmitterConfig() ChainSubmitterConfig {
	return ChainSubmitterConfig{
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// NewChainSubmitter creates a submitter broadcasting through clientCtx. The
// context must carry the coordinator's key as --from.
func NewChainSubmitter(clientCtx client.Context, txf tx.Factory, cfg ChainSubmitterConfig) *ChainSubmitter {
	return newChainSubmitter(txBroadcaster(clientCtx.WithSkipConfirmation(true), txf), cfg)
}

func newChainSubmitter(broadcast broadcastFunc, cfg ChainSubmitterConfig) *ChainSubmitter {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 1
	}
	return &ChainSubmitter{
		broadcast:     broadcast,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		status:        SubmitterStatus{Connected: true},
	}
}

// txBroadcaster builds, signs and sync-broadcasts a single-message tx. Unlike
// tx.BroadcastTx it hands back the response so the caller sees CheckTx codes.
func txBroadcaster(clientCtx client.Context, txf tx.Factory) broadcastFunc {
	return func(ctx context.Context, msg sdk.Msg) (*sdk.TxResponse, error) {
		cctx := clientCtx.WithCmdContext(ctx)
		f, err := txf.Prepare(cctx)
		if err != nil {
			return nil, err
		}
		if f.SimulateAndExecute() {
			_, adjusted, err := tx.CalculateGas(cctx, f, msg)
			if err != nil {
				return nil, err
			}
			f = f.WithGas(adjusted)
		}
		builder, err := f.BuildUnsignedTx(msg)
		if err != nil {
			return nil, err
		}
		if err := tx.Sign(ctx, f, cctx.FromName, builder, true); err != nil {
			return nil, err
		}
		txBytes, err := cctx.TxConfig.TxEncoder()(builder.GetTx())
		if err != nil {
			return nil, err
		}
		return cctx.BroadcastTx(txBytes)
	}
}

// checkResponse turns a non-zero CheckTx code into an error
func checkResponse(res *sdk.TxResponse) error {
	if res == nil {
		return errors.New("empty broadcast response")
	}
	if res.Code == 0 {
		return nil
	}
	err := fmt.Errorf("tx %s failed: codespace %s code %d: %s", res.TxHash, res.Codespace, res.Code, res.RawLog)
	if res.Codespace == types.ModuleName &&
		(res.Code == types.ErrRequestNotFound.ABCICode() || res.Code == types.ErrInvalidRequestState.ABCICode()) {
		return fmt.Errorf("%w: %w", ErrReplyRejected, err)
	}
	return err
}

// SubmitReply broadcasts msg, retrying transient failures. A tx the node
// accepts into its mempool counts as submitted.
func (s *ChainSubmitter) SubmitReply(ctx context.Context, msg *types.MsgReplyCrossDomain) error {
	var lastErr error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		res, err := s.broadcast(ctx, msg)
		if err == nil {
			err = checkResponse(res)
		}
		if err == nil {
			s.mu.Lock()
			s.status.TotalSubmissions++
			s.status.LastSubmitTime = time.Now()
			s.mu.Unlock()
			return nil
		}
		lastErr = err
		if errors.Is(err, ErrReplyRejected) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}

	s.mu.Lock()
	s.status.FailedSubmissions++
	s.status.LastError = lastErr.Error()
	s.mu.Unlock()
	if errors.Is(lastErr, ErrReplyRejected) {
		return lastErr
	}
	return fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// GetStatus returns the submitter status
func (s *ChainSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
