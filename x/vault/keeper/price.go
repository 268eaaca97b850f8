package keeper

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// poolState is a consistent view of supply and NAV for one conversion
type poolState struct {
	params types.Params
	supply math.Int
	assets math.Int
}

// loadPoolState reads supply and NAV. A zero NAV with outstanding shares
// would price every share at zero, so it is refused.
func (k *Keeper) loadPoolState(ctx sdk.Context) (poolState, error) {
	assets, err := k.TotalAssets(ctx)
	if err != nil {
		return poolState{}, err
	}
	s := poolState{
		params: k.GetParams(ctx),
		supply: k.GetTotalSupply(ctx),
		assets: assets,
	}
	if s.assets.IsZero() && s.supply.IsPositive() {
		return poolState{}, errors.Wrapf(types.ErrZeroNAV, "supply %s", s.supply)
	}
	return s, nil
}

func (s poolState) toShares(assets math.Int, rounding types.Rounding) (math.Int, error) {
	return types.ConvertToShares(assets, s.supply, s.assets, s.params.DecimalsOffset, rounding)
}

func (s poolState) toAssets(shares math.Int, rounding types.Rounding) (math.Int, error) {
	return types.ConvertToAssets(shares, s.supply, s.assets, s.params.DecimalsOffset, rounding)
}

func (s poolState) price() (math.Int, error) {
	return types.PricePerShare(s.supply, s.assets, s.params.AssetDecimals, s.params.DecimalsOffset)
}

// PricePerShare returns the asset value of one whole share
func (k *Keeper) PricePerShare(ctx sdk.Context) (math.Int, error) {
	s, err := k.loadPoolState(ctx)
	if err != nil {
		return math.Int{}, err
	}
	return s.price()
}

// ConvertToShares converts assets at the current NAV, rounding down
func (k *Keeper) ConvertToShares(ctx sdk.Context, assets math.Int) (math.Int, error) {
	s, err := k.loadPoolState(ctx)
	if err != nil {
		return math.Int{}, err
	}
	return s.toShares(assets, types.RoundFloor)
}

// ConvertToAssets converts shares at the current NAV, rounding down
func (k *Keeper) ConvertToAssets(ctx sdk.Context, shares math.Int) (math.Int, error) {
	s, err := k.loadPoolState(ctx)
	if err != nil {
		return math.Int{}, err
	}
	return s.toAssets(shares, types.RoundFloor)
}

// PreviewDeposit returns shares issued for assets
func (k *Keeper) PreviewDeposit(ctx sdk.Context, assets math.Int) (math.Int, error) {
	return k.preview(ctx, assets, true, types.RoundFloor)
}

// PreviewMint returns assets charged for shares
func (k *Keeper) PreviewMint(ctx sdk.Context, shares math.Int) (math.Int, error) {
	return k.preview(ctx, shares, false, types.RoundCeil)
}

// PreviewWithdraw returns shares burned for assets
func (k *Keeper) PreviewWithdraw(ctx sdk.Context, assets math.Int) (math.Int, error) {
	return k.preview(ctx, assets, true, types.RoundCeil)
}

// PreviewRedeem returns assets paid for shares
func (k *Keeper) PreviewRedeem(ctx sdk.Context, shares math.Int) (math.Int, error) {
	return k.preview(ctx, shares, false, types.RoundFloor)
}

func (k *Keeper) preview(ctx sdk.Context, amount math.Int, toShares bool, rounding types.Rounding) (math.Int, error) {
	s, err := k.loadPoolState(ctx)
	if err != nil {
		return math.Int{}, err
	}
	if toShares {
		return s.toShares(amount, rounding)
	}
	return s.toAssets(amount, rounding)
}
