package keeper

import (
	"context"
	"strings"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// assetSource is where deposited assets come from: an account, or the
// escrow account when a cross-domain request is finalized
type assetSource struct {
	account string
	escrow  bool
}

func fromAccount(addr string) assetSource { return assetSource{account: addr} }

func (k *Keeper) pull(ctx sdk.Context, src assetSource, coins sdk.Coins) error {
	if src.escrow {
		return k.bankKeeper.SendCoinsFromModuleToModule(ctx, types.EscrowModuleName, types.ModuleName, coins)
	}
	addr, err := sdk.AccAddressFromBech32(src.account)
	if err != nil {
		return err
	}
	return k.bankKeeper.SendCoinsFromAccountToModule(ctx, addr, types.ModuleName, coins)
}

// checkDirect gates entry points that move value outside the coordinator
func (k *Keeper) checkDirect(ctx sdk.Context) error {
	if err := k.whenNotPaused(ctx); err != nil {
		return err
	}
	if k.GetParams(ctx).CrossDomainEnabled() {
		return types.ErrCrossDomainRequired
	}
	return nil
}

// Deposit takes assets from caller and issues shares to receiver
func (k *Keeper) Deposit(goCtx context.Context, caller, receiver string, assets math.Int) (math.Int, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.checkDirect(ctx); err != nil {
		return math.Int{}, err
	}
	return k.deposit(ctx, fromAccount(caller), receiver, assets)
}

// Mint issues exactly shares to receiver, charging caller the rounded-up assets
func (k *Keeper) Mint(goCtx context.Context, caller, receiver string, shares math.Int) (math.Int, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.checkDirect(ctx); err != nil {
		return math.Int{}, err
	}
	return k.mint(ctx, fromAccount(caller), receiver, shares, math.Int{})
}

// MultiAssetDeposit takes several supported assets from caller, valued in
// base units at oracle prices, and issues shares to receiver
func (k *Keeper) MultiAssetDeposit(goCtx context.Context, caller, receiver string, denoms []string, amounts []math.Int) (math.Int, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.checkDirect(ctx); err != nil {
		return math.Int{}, err
	}
	coins, err := k.depositCoins(ctx, denoms, amounts)
	if err != nil {
		return math.Int{}, err
	}
	return k.multiAssetDeposit(ctx, fromAccount(caller), receiver, coins)
}

// depositCoins validates a multi-asset deposit before anything is touched
func (k *Keeper) depositCoins(ctx sdk.Context, denoms []string, amounts []math.Int) (sdk.Coins, error) {
	if len(denoms) != len(amounts) {
		return nil, errors.Wrapf(types.ErrLengthMismatch, "%d denoms, %d amounts", len(denoms), len(amounts))
	}
	if len(denoms) == 0 {
		return nil, errors.Wrap(types.ErrZeroAmount, "no assets")
	}
	params := k.GetParams(ctx)
	coins := sdk.NewCoins()
	for i, denom := range denoms {
		if amounts[i].IsNil() || !amounts[i].IsPositive() {
			return nil, errors.Wrapf(types.ErrZeroAmount, "%s amount", denom)
		}
		if _, ok := params.Asset(denom); !ok {
			return nil, errors.Wrap(types.ErrUnsupportedAsset, denom)
		}
		coins = coins.Add(sdk.NewCoin(denom, amounts[i]))
	}
	return coins, nil
}

func (k *Keeper) deposit(ctx sdk.Context, src assetSource, receiver string, assets math.Int) (math.Int, error) {
	if assets.IsNil() || !assets.IsPositive() {
		return math.Int{}, errors.Wrap(types.ErrZeroAmount, "deposit")
	}
	if _, err := k.accrue(ctx, receiver); err != nil {
		return math.Int{}, err
	}
	s, err := k.loadPoolState(ctx)
	if err != nil {
		return math.Int{}, err
	}
	shares, err := s.toShares(assets, types.RoundFloor)
	if err != nil {
		return math.Int{}, err
	}
	if !shares.IsPositive() {
		return math.Int{}, errors.Wrapf(types.ErrZeroAmount, "deposit of %s issues no shares", assets)
	}
	if err := k.issue(ctx, s, receiver, shares, assets); err != nil {
		return math.Int{}, err
	}
	if err := k.pull(ctx, src, sdk.NewCoins(sdk.NewCoin(s.params.Denom, assets))); err != nil {
		return math.Int{}, err
	}

	k.emitDeposit(ctx, src.account, receiver, assets, shares)
	return shares, nil
}

// mint issues shares for ceil-rounded assets. A non-nil maxAssets bounds the charge.
func (k *Keeper) mint(ctx sdk.Context, src assetSource, receiver string, shares, maxAssets math.Int) (math.Int, error) {
	if shares.IsNil() || !shares.IsPositive() {
		return math.Int{}, errors.Wrap(types.ErrZeroAmount, "mint")
	}
	if _, err := k.accrue(ctx, receiver); err != nil {
		return math.Int{}, err
	}
	s, err := k.loadPoolState(ctx)
	if err != nil {
		return math.Int{}, err
	}
	assets, err := s.toAssets(shares, types.RoundCeil)
	if err != nil {
		return math.Int{}, err
	}
	if !maxAssets.IsNil() && assets.GT(maxAssets) {
		return math.Int{}, errors.Wrapf(types.ErrSlippageExceeded, "mint costs %s, max %s", assets, maxAssets)
	}
	if err := k.issue(ctx, s, receiver, shares, assets); err != nil {
		return math.Int{}, err
	}
	if err := k.pull(ctx, src, sdk.NewCoins(sdk.NewCoin(s.params.Denom, assets))); err != nil {
		return math.Int{}, err
	}

	k.emitDeposit(ctx, src.account, receiver, assets, shares)
	return assets, nil
}

func (k *Keeper) multiAssetDeposit(ctx sdk.Context, src assetSource, receiver string, coins sdk.Coins) (math.Int, error) {
	params := k.GetParams(ctx)
	value := math.ZeroInt()
	for _, c := range coins {
		asset, ok := params.Asset(c.Denom)
		if !ok {
			return math.Int{}, errors.Wrap(types.ErrUnsupportedAsset, c.Denom)
		}
		v, err := k.valueInBase(ctx, params, asset, c.Amount)
		if err != nil {
			return math.Int{}, err
		}
		value = value.Add(v)
	}

	if _, err := k.accrue(ctx, receiver); err != nil {
		return math.Int{}, err
	}
	s, err := k.loadPoolState(ctx)
	if err != nil {
		return math.Int{}, err
	}
	shares, err := s.toShares(value, types.RoundFloor)
	if err != nil {
		return math.Int{}, err
	}
	if !shares.IsPositive() {
		return math.Int{}, errors.Wrapf(types.ErrZeroAmount, "deposit worth %s issues no shares", value)
	}
	if err := k.issue(ctx, s, receiver, shares, value); err != nil {
		return math.Int{}, err
	}
	if err := k.pull(ctx, src, coins); err != nil {
		return math.Int{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_multi_asset_deposit",
			sdk.NewAttribute("sender", src.account),
			sdk.NewAttribute("receiver", receiver),
			sdk.NewAttribute("coins", coins.String()),
			sdk.NewAttribute("value", value.String()),
			sdk.NewAttribute("shares", shares.String()),
		),
	)
	k.logger.Info("multi-asset deposit", "receiver", receiver, "denoms", strings.Join(coinDenoms(coins), ","), "shares", shares.String())
	return shares, nil
}

// issue checks capacity and credits shares to the beneficial depositor
func (k *Keeper) issue(ctx sdk.Context, s poolState, receiver string, shares, value math.Int) error {
	if limit := s.params.TotalDepositCap; limit.IsPositive() && s.assets.Add(value).GT(limit) {
		return errors.Wrapf(types.ErrDepositCapExceeded, "pool NAV %s + %s exceeds %s", s.assets, value, limit)
	}
	price, err := s.price()
	if err != nil {
		return err
	}
	h, err := k.GetHolder(ctx, receiver)
	if err != nil {
		return err
	}
	h.EnsureCap(s.params.DefaultDepositCap)
	if err := h.ConsumeCap(value); err != nil {
		return err
	}
	if err := h.Credit(shares, price); err != nil {
		return err
	}
	if err := k.setHolder(ctx, h); err != nil {
		return err
	}
	k.setTotalSupply(ctx, s.supply.Add(shares))
	return nil
}

func (k *Keeper) emitDeposit(ctx sdk.Context, sender, receiver string, assets, shares math.Int) {
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_deposit",
			sdk.NewAttribute("sender", sender),
			sdk.NewAttribute("receiver", receiver),
			sdk.NewAttribute("assets", assets.String()),
			sdk.NewAttribute("shares", shares.String()),
		),
	)
	k.logger.Info("deposit", "receiver", receiver, "assets", assets.String(), "shares", shares.String())
}

func coinDenoms(coins sdk.Coins) []string {
	out := make([]string, len(coins))
	for i, c := range coins {
		out[i] = c.Denom
	}
	return out
}
