package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	apitypes "github.com/openalpha/hwmvault/api/types"
	"github.com/openalpha/hwmvault/x/vault/keeper"
	vaulttypes "github.com/openalpha/hwmvault/x/vault/types"
)

// ContextProvider returns a context over the latest committed state
type ContextProvider func() (sdk.Context, error)

// KeeperService implements VaultService by querying a vault keeper
type KeeperService struct {
	keeper    *keeper.Keeper
	query     *keeper.QueryServer
	contextFn ContextProvider
}

var _ apitypes.VaultService = (*KeeperService)(nil)

// NewKeeperService creates a service reading k through contextFn
func NewKeeperService(k *keeper.Keeper, contextFn ContextProvider) *KeeperService {
	return &KeeperService{
		keeper:    k,
		query:     keeper.NewQueryServerImpl(k),
		contextFn: contextFn,
	}
}

func (s *KeeperService) sdkContext(ctx context.Context) (sdk.Context, error) {
	sdkCtx, err := s.contextFn()
	if err != nil {
		return sdk.Context{}, fmt.Errorf("query context: %w", err)
	}
	return sdkCtx.WithContext(ctx), nil
}

// Vault implements VaultService
func (s *KeeperService) Vault(ctx context.Context) (*apitypes.VaultResponse, error) {
	sdkCtx, err := s.sdkContext(ctx)
	if err != nil {
		return nil, err
	}
	sum, err := s.query.Vault(sdkCtx)
	if err != nil {
		return nil, err
	}
	p := sum.Params
	return &apitypes.VaultResponse{
		Denom:             p.Denom,
		TotalAssets:       intString(sum.TotalAssets),
		TotalSupply:       intString(sum.TotalSupply),
		PricePerShare:     intString(sum.PricePerShare),
		IdleBalance:       intString(sum.IdleBalance),
		Positive:          intString(sum.Positive),
		Debt:              intString(sum.Debt),
		Healthy:           sum.Healthy,
		FailedModules:     sum.FailedModules,
		Modules:           sum.Modules,
		Paused:            sum.Paused,
		QueueEnabled:      p.QueueEnabled,
		CrossDomain:       p.CrossDomainEnabled(),
		PerformanceFeeBps: p.PerformanceFeeBps,
		WithdrawalFeeBps:  p.WithdrawalFeeBps,
		AssetDecimals:     p.AssetDecimals,
		ShareDecimals:     p.ShareDecimals(),
		Timestamp:         nowMillis(),
	}, nil
}

// Price implements VaultService
func (s *KeeperService) Price(ctx context.Context) (*apitypes.PriceResponse, error) {
	sdkCtx, err := s.sdkContext(ctx)
	if err != nil {
		return nil, err
	}
	price, err := s.query.PricePerShare(sdkCtx)
	if err != nil {
		return nil, err
	}
	dec := s.query.Params(sdkCtx).AssetDecimals
	return &apitypes.PriceResponse{
		PricePerShare: intString(price),
		AssetDecimals: dec,
		Display:       displayAmount(price, dec),
		Timestamp:     nowMillis(),
	}, nil
}

// Holder implements VaultService
func (s *KeeperService) Holder(ctx context.Context, address string) (*apitypes.HolderResponse, error) {
	if _, err := sdk.AccAddressFromBech32(address); err != nil {
		return nil, fmt.Errorf("%w: %s", apitypes.ErrInvalidArgument, err)
	}
	sdkCtx, err := s.sdkContext(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.query.Holder(sdkCtx, address)
	if err != nil {
		return nil, err
	}
	resp := &apitypes.HolderResponse{
		Address: view.Address,
		Balance: intString(view.Balance),
		Locked:  intString(view.Locked),
		Mark:    intString(view.Mark),
		Value:   intString(view.Value),
		CapSet:  view.CapSet,
	}
	if view.CapSet {
		resp.CapRemaining = intString(view.CapRemaining)
	}
	if view.Withdrawal != nil {
		w := withdrawalResponse(*view.Withdrawal, sdkCtx.BlockTime())
		resp.Withdrawal = &w
	}
	return resp, nil
}

// Withdrawals implements VaultService
func (s *KeeperService) Withdrawals(ctx context.Context, offset, limit uint64) (*apitypes.WithdrawalsResponse, error) {
	sdkCtx, err := s.sdkContext(ctx)
	if err != nil {
		return nil, err
	}
	page, total, err := s.query.Withdrawals(sdkCtx, offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]apitypes.WithdrawalResponse, len(page))
	for i, w := range page {
		out[i] = withdrawalResponse(w, sdkCtx.BlockTime())
	}
	return &apitypes.WithdrawalsResponse{Withdrawals: out, Total: total}, nil
}

// Request implements VaultService
func (s *KeeperService) Request(ctx context.Context, handle string) (*apitypes.RequestResponse, error) {
	sdkCtx, err := s.sdkContext(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.query.Request(sdkCtx, handle)
	if errors.Is(err, vaulttypes.ErrRequestNotFound) {
		return nil, fmt.Errorf("%w: %s", apitypes.ErrNotFound, handle)
	}
	if err != nil {
		return nil, err
	}
	params := s.query.Params(sdkCtx)
	resp := &apitypes.RequestResponse{
		Handle:        req.Handle,
		Initiator:     req.Initiator,
		Action:        string(req.Action),
		Status:        string(req.Status),
		CreatedAt:     req.CreatedAt,
		FulfilledAt:   req.FulfilledAt,
		FinalizedAt:   req.FinalizedAt,
		LocalSnapshot: intString(req.LocalSnapshot),
		RemoteValue:   intString(req.RemoteValue),
		Recoverable:   req.Recoverable(sdkCtx.BlockTime(), params.CrossDomainGraceWindow),
	}
	if !req.Escrow.IsZero() {
		resp.Escrow = req.Escrow.String()
	}
	if !req.LockedShares.IsNil() && req.LockedShares.IsPositive() {
		resp.LockedShares = req.LockedShares.String()
	}
	return resp, nil
}

func withdrawalResponse(w vaulttypes.WithdrawalRequest, now time.Time) apitypes.WithdrawalResponse {
	return apitypes.WithdrawalResponse{
		Holder:    w.Holder,
		Requester: w.Requester,
		Shares:    intString(w.Shares),
		CreatedAt: w.CreatedAt,
		ExpiresAt: w.ExpiresAt,
		Matured:   w.Matured(now),
	}
}

// ============================================================================
// Standalone mode
// ============================================================================

// Standalone is an in-memory pool for running the API without a node
type Standalone struct {
	*KeeperService

	Keeper *keeper.Keeper
	Bank   *MemoryBank

	mu  sync.Mutex
	ctx sdk.Context
}

// NewStandalone creates an in-memory pool with params
func NewStandalone(params vaulttypes.Params, authority string, logger log.Logger) (*Standalone, error) {
	storeKey := storetypes.NewKVStoreKey(vaulttypes.StoreKey)
	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	if err := stateStore.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	cdc := codec.NewProtoCodec(codectypes.NewInterfaceRegistry())
	bank := NewMemoryBank()
	k := keeper.NewKeeper(
		cdc,
		storeKey,
		bank,
		keeper.NewFixedPriceOracle(nil),
		keeper.NewLoopbackMessenger(sdk.NewCoins()),
		authority,
		logger,
	)

	s := &Standalone{
		Keeper: k,
		Bank:   bank,
		ctx: sdk.NewContext(stateStore, cmtproto.Header{
			Time:   time.Now().UTC(),
			Height: 1,
		}, false, logger),
	}
	gs := vaulttypes.DefaultGenesis()
	gs.Params = params
	if err := k.InitGenesis(s.ctx, *gs); err != nil {
		return nil, err
	}
	s.KeeperService = NewKeeperService(k, s.Context)
	return s, nil
}

// Context returns the current context
func (s *Standalone) Context() (sdk.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx, nil
}

// Advance moves block time and height forward
func (s *Standalone) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = s.ctx.WithBlockTime(s.ctx.BlockTime().Add(d)).WithBlockHeight(s.ctx.BlockHeight() + 1)
}

// Do runs fn against the pool under the standalone lock
func (s *Standalone) Do(fn func(ctx sdk.Context, k *keeper.Keeper) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ctx, s.Keeper)
}

// Yield credits the pool account without issuing shares
func (s *Standalone) Yield(amount math.Int) {
	ctx, _ := s.Context()
	pool := authtypes.NewModuleAddress(vaulttypes.ModuleName)
	s.Bank.Fund(pool, sdk.NewCoins(sdk.NewCoin(s.Keeper.GetParams(ctx).Denom, amount)))
}
