package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// FeeAccrual is the outcome of one high-water-mark checkpoint
type FeeAccrual struct {
	Holder         string
	Price          math.Int
	Fee            math.Int
	ProtocolFee    math.Int
	PoolFee        math.Int
	ProtocolShares math.Int
	PoolShares     math.Int
	OldMark        math.Int
	NewMark        math.Int
}

// AccrueFees checkpoints holder's performance fee
func (k *Keeper) AccrueFees(goCtx context.Context, holder string) (FeeAccrual, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.whenNotPaused(ctx); err != nil {
		return FeeAccrual{}, err
	}
	return k.accrue(ctx, holder)
}

// checkpointHolders accrues every active holder under the stored params so
// gains made before a fee change are charged at the rate in force when they
// were made
func (k *Keeper) checkpointHolders(ctx sdk.Context) error {
	for _, h := range k.GetAllHolders(ctx) {
		if h.IsEmpty() {
			continue
		}
		if _, err := k.accrue(ctx, h.Address); err != nil {
			return err
		}
	}
	return nil
}

// feeTermsChanged reports whether next charges fees differently from prev
func feeTermsChanged(prev, next types.Params) bool {
	return prev.PerformanceFeeBps != next.PerformanceFeeBps ||
		prev.FeeRecipient != next.FeeRecipient ||
		prev.ProtocolFeeRecipient != next.ProtocolFeeRecipient ||
		prev.ProtocolFeeRateBps != next.ProtocolFeeRateBps
}

// accrue charges the fee on holder's gain above its mark and advances the
// mark. Fee shares are minted before the caller computes its own share
// delta. Empty holders and holders at or above the current price are left
// untouched.
func (k *Keeper) accrue(ctx sdk.Context, addr string) (FeeAccrual, error) {
	res := FeeAccrual{
		Holder:         addr,
		Fee:            math.ZeroInt(),
		ProtocolFee:    math.ZeroInt(),
		PoolFee:        math.ZeroInt(),
		ProtocolShares: math.ZeroInt(),
		PoolShares:     math.ZeroInt(),
	}
	h, err := k.GetHolder(ctx, addr)
	if err != nil {
		return res, err
	}
	res.OldMark, res.NewMark = h.Mark, h.Mark
	if h.IsEmpty() {
		return res, nil
	}

	s, err := k.loadPoolState(ctx)
	if err != nil {
		return res, err
	}
	current, err := s.price()
	if err != nil {
		return res, err
	}
	res.Price = current
	if current.LTE(h.Mark) {
		return res, nil
	}

	params := s.params
	if !params.FeesEnabled() {
		params.PerformanceFeeBps = 0
	}
	res.Fee, err = types.PerformanceFee(h.Balance, h.Mark, current, params.AssetDecimals, params.DecimalsOffset, params.PerformanceFeeBps)
	if err != nil {
		return res, err
	}
	res.ProtocolFee, res.PoolFee = types.SplitFee(res.Fee, params.ProtocolFeeRateBps, params.ProtocolFeeRecipient != "")

	scale := types.Pow10(params.ShareDecimals())
	if res.ProtocolShares, err = types.MulDiv(res.ProtocolFee, scale, current, types.RoundFloor); err != nil {
		return res, err
	}
	if res.PoolShares, err = types.MulDiv(res.PoolFee, scale, current, types.RoundFloor); err != nil {
		return res, err
	}

	newMark := current
	minted := res.ProtocolShares.Add(res.PoolShares)
	if minted.IsPositive() {
		// marks land on the diluted price the shares trade at after the mint
		s.supply = s.supply.Add(minted)
		if newMark, err = s.price(); err != nil {
			return res, err
		}
		if res.ProtocolShares.IsPositive() {
			if err := k.mintShares(ctx, params.ProtocolFeeRecipient, res.ProtocolShares, newMark); err != nil {
				return res, err
			}
		}
		if res.PoolShares.IsPositive() {
			if err := k.mintShares(ctx, params.FeeRecipient, res.PoolShares, newMark); err != nil {
				return res, err
			}
		}
		// a recipient may be the holder itself
		if h, err = k.GetHolder(ctx, addr); err != nil {
			return res, err
		}
	}

	h.AdvanceMark(newMark)
	res.NewMark = h.Mark
	if err := k.setHolder(ctx, h); err != nil {
		return res, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_fee_accrued",
			sdk.NewAttribute("holder", addr),
			sdk.NewAttribute("price", current.String()),
			sdk.NewAttribute("fee", res.Fee.String()),
			sdk.NewAttribute("protocol_fee", res.ProtocolFee.String()),
			sdk.NewAttribute("pool_fee", res.PoolFee.String()),
			sdk.NewAttribute("protocol_shares", res.ProtocolShares.String()),
			sdk.NewAttribute("pool_shares", res.PoolShares.String()),
			sdk.NewAttribute("old_mark", res.OldMark.String()),
			sdk.NewAttribute("new_mark", res.NewMark.String()),
		),
	)
	if res.Fee.IsPositive() {
		k.logger.Info("performance fee accrued",
			"holder", addr,
			"fee", res.Fee.String(),
			"shares", minted.String(),
			"mark", res.NewMark.String(),
		)
	}
	return res, nil
}
