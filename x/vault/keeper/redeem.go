package keeper

import (
	"context"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// exitOpts carries the parts of an exit that differ between direct calls and
// finalized cross-domain requests
type exitOpts struct {
	spendAllowance bool
	// maxShares bounds the shares burned when set
	maxShares math.Int
}

// Withdraw burns owner's shares for exactly assets, rounding shares up
func (k *Keeper) Withdraw(goCtx context.Context, caller, receiver, owner string, assets math.Int) (math.Int, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.checkDirectExit(ctx); err != nil {
		return math.Int{}, err
	}
	return k.withdraw(ctx, caller, receiver, owner, assets, exitOpts{spendAllowance: true})
}

// Redeem burns exactly shares of owner, paying the rounded-down assets
func (k *Keeper) Redeem(goCtx context.Context, caller, receiver, owner string, shares math.Int) (math.Int, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.checkDirectExit(ctx); err != nil {
		return math.Int{}, err
	}
	return k.redeem(ctx, caller, receiver, owner, shares, exitOpts{spendAllowance: true})
}

func (k *Keeper) checkDirectExit(ctx sdk.Context) error {
	if err := k.checkDirect(ctx); err != nil {
		return err
	}
	if k.GetParams(ctx).QueueEnabled {
		return types.ErrQueueEnabled
	}
	return nil
}

func (k *Keeper) withdraw(ctx sdk.Context, caller, receiver, owner string, assets math.Int, opts exitOpts) (math.Int, error) {
	if assets.IsNil() || !assets.IsPositive() {
		return math.Int{}, errors.Wrap(types.ErrZeroAmount, "withdraw")
	}
	if _, err := k.accrue(ctx, owner); err != nil {
		return math.Int{}, err
	}
	s, err := k.loadPoolState(ctx)
	if err != nil {
		return math.Int{}, err
	}
	shares, err := s.toShares(assets, types.RoundCeil)
	if err != nil {
		return math.Int{}, err
	}
	if err := k.exit(ctx, caller, receiver, owner, shares, assets, opts); err != nil {
		return math.Int{}, err
	}
	return shares, nil
}

func (k *Keeper) redeem(ctx sdk.Context, caller, receiver, owner string, shares math.Int, opts exitOpts) (math.Int, error) {
	if shares.IsNil() || !shares.IsPositive() {
		return math.Int{}, errors.Wrap(types.ErrZeroAmount, "redeem")
	}
	if _, err := k.accrue(ctx, owner); err != nil {
		return math.Int{}, err
	}
	s, err := k.loadPoolState(ctx)
	if err != nil {
		return math.Int{}, err
	}
	assets, err := s.toAssets(shares, types.RoundFloor)
	if err != nil {
		return math.Int{}, err
	}
	if !assets.IsPositive() {
		return math.Int{}, errors.Wrapf(types.ErrZeroAmount, "redeem of %s pays nothing", shares)
	}
	if err := k.exit(ctx, caller, receiver, owner, shares, assets, opts); err != nil {
		return math.Int{}, err
	}
	return assets, nil
}

// exit burns shares from owner and pays assets to receiver
func (k *Keeper) exit(ctx sdk.Context, caller, receiver, owner string, shares, assets math.Int, opts exitOpts) error {
	if !opts.maxShares.IsNil() && shares.GT(opts.maxShares) {
		return errors.Wrapf(types.ErrInsufficientShares, "exit needs %s shares, %s reserved", shares, opts.maxShares)
	}
	if opts.spendAllowance {
		if err := k.spendAllowance(ctx, owner, caller, shares); err != nil {
			return err
		}
	}
	h, err := k.GetHolder(ctx, owner)
	if err != nil {
		return err
	}
	if err := k.burnShares(ctx, h, shares); err != nil {
		return err
	}
	h.RestoreCap(assets)
	if err := k.setHolder(ctx, h); err != nil {
		return err
	}
	if err := k.payout(ctx, receiver, assets); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_withdraw",
			sdk.NewAttribute("sender", caller),
			sdk.NewAttribute("receiver", receiver),
			sdk.NewAttribute("owner", owner),
			sdk.NewAttribute("assets", assets.String()),
			sdk.NewAttribute("shares", shares.String()),
		),
	)
	k.logger.Info("withdraw", "owner", owner, "assets", assets.String(), "shares", shares.String())
	return nil
}

// payout sends base assets from the pool account
func (k *Keeper) payout(ctx sdk.Context, receiver string, assets math.Int) error {
	if assets.IsZero() {
		return nil
	}
	addr, err := sdk.AccAddressFromBech32(receiver)
	if err != nil {
		return err
	}
	coins := sdk.NewCoins(sdk.NewCoin(k.GetParams(ctx).Denom, assets))
	return k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, addr, coins)
}
