package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// QueryServer defines the vault QueryServer
type QueryServer struct {
	keeper *Keeper
}

// NewQueryServerImpl creates a new QueryServer instance
func NewQueryServerImpl(keeper *Keeper) *QueryServer {
	return &QueryServer{keeper: keeper}
}

// VaultSummary is the pool-level view returned by Vault
type VaultSummary struct {
	TotalAssets   math.Int     `json:"total_assets"`
	TotalSupply   math.Int     `json:"total_supply"`
	PricePerShare math.Int     `json:"price_per_share"`
	IdleBalance   math.Int     `json:"idle_balance"`
	Positive      math.Int     `json:"positive"`
	Debt          math.Int     `json:"debt"`
	Healthy       bool         `json:"healthy"`
	FailedModules []string     `json:"failed_modules,omitempty"`
	Modules       []string     `json:"modules"`
	Paused        bool         `json:"paused"`
	Params        types.Params `json:"params"`
}

// HolderView is a holder's position with its current value
type HolderView struct {
	types.Holder
	Value      math.Int                 `json:"value"`
	Withdrawal *types.WithdrawalRequest `json:"withdrawal,omitempty"`
}

// Vault returns the pool summary. The aggregation is lenient so a failing
// valuation module is reported rather than failing the query.
func (q *QueryServer) Vault(ctx context.Context) (*VaultSummary, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	idle := q.keeper.IdleBalance(sdkCtx)
	res, err := q.keeper.Aggregate(sdkCtx, idle, PolicyLenient)
	if err != nil {
		return nil, err
	}
	supply := q.keeper.GetTotalSupply(sdkCtx)
	params := q.keeper.GetParams(sdkCtx)
	price, err := types.PricePerShare(supply, res.Total, params.AssetDecimals, params.DecimalsOffset)
	if err != nil {
		return nil, err
	}

	modules := q.keeper.ValuationModules()
	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.Name()
	}
	return &VaultSummary{
		TotalAssets:   res.Total,
		TotalSupply:   supply,
		PricePerShare: price,
		IdleBalance:   idle,
		Positive:      res.Positive,
		Debt:          res.Debt,
		Healthy:       res.Success,
		FailedModules: res.Failed,
		Modules:       names,
		Paused:        q.keeper.IsPaused(sdkCtx),
		Params:        params,
	}, nil
}

// PricePerShare returns the strict share price
func (q *QueryServer) PricePerShare(ctx context.Context) (math.Int, error) {
	return q.keeper.PricePerShare(sdk.UnwrapSDKContext(ctx))
}

// Holder returns addr's position
func (q *QueryServer) Holder(ctx context.Context, addr string) (*HolderView, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	h, err := q.keeper.GetHolder(sdkCtx, addr)
	if err != nil {
		return nil, err
	}
	view := &HolderView{Holder: *h, Value: math.ZeroInt()}
	if h.Balance.IsPositive() {
		if view.Value, err = q.keeper.ConvertToAssets(sdkCtx, h.Balance); err != nil {
			return nil, err
		}
	}
	if req, ok := q.keeper.GetWithdrawalRequest(sdkCtx, addr); ok {
		view.Withdrawal = &req
	}
	return view, nil
}

// Holders returns holders with pagination
func (q *QueryServer) Holders(ctx context.Context, offset, limit uint64) ([]types.Holder, uint64, error) {
	all := q.keeper.GetAllHolders(sdk.UnwrapSDKContext(ctx))
	page, total := paginate(all, offset, limit)
	return page, total, nil
}

// Withdrawals returns the live withdrawal requests, earliest expiry first
func (q *QueryServer) Withdrawals(ctx context.Context, offset, limit uint64) ([]types.WithdrawalRequest, uint64, error) {
	all := q.keeper.PendingWithdrawals(sdk.UnwrapSDKContext(ctx))
	page, total := paginate(all, offset, limit)
	return page, total, nil
}

// Request returns a cross-domain request by handle
func (q *QueryServer) Request(ctx context.Context, handle string) (*types.CrossDomainRequest, error) {
	req, ok := q.keeper.GetCrossDomainRequest(sdk.UnwrapSDKContext(ctx), handle)
	if !ok {
		return nil, types.ErrRequestNotFound.Wrap(handle)
	}
	return &req, nil
}

// Requests returns cross-domain requests, optionally filtered by status
func (q *QueryServer) Requests(ctx context.Context, status types.RequestStatus) ([]types.CrossDomainRequest, error) {
	all := q.keeper.GetAllCrossDomainRequests(sdk.UnwrapSDKContext(ctx))
	if status == "" {
		return all, nil
	}
	var out []types.CrossDomainRequest
	for _, r := range all {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

// Allowance returns spender's allowance over owner
func (q *QueryServer) Allowance(ctx context.Context, owner, spender string) math.Int {
	return q.keeper.Allowance(sdk.UnwrapSDKContext(ctx), owner, spender)
}

// Params returns the module parameters
func (q *QueryServer) Params(ctx context.Context) types.Params {
	return q.keeper.GetParams(sdk.UnwrapSDKContext(ctx))
}

func paginate[T any](all []T, offset, limit uint64) ([]T, uint64) {
	total := uint64(len(all))
	if offset >= total {
		return []T{}, total
	}
	end := offset + limit
	if end > total || limit == 0 {
		end = total
	}
	return all[offset:end], total
}
