package keeper

import (
	"context"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// SetDepositCap sets holder's deposit capacity
func (k *Keeper) SetDepositCap(goCtx context.Context, authority, holder string, limit math.Int) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.checkAuthority(authority); err != nil {
		return err
	}
	if limit.IsNil() || limit.IsNegative() {
		return errors.Wrap(types.ErrInvalidParams, "negative deposit cap")
	}
	h, err := k.GetHolder(ctx, holder)
	if err != nil {
		return err
	}
	h.EnsureCap(k.GetParams(ctx).DefaultDepositCap)
	h.SetCap(limit)
	if err := k.setHolder(ctx, h); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_deposit_cap_set",
			sdk.NewAttribute("holder", holder),
			sdk.NewAttribute("cap", h.CapInitial.String()),
			sdk.NewAttribute("remaining", h.CapRemaining.String()),
		),
	)
	k.logger.Info("deposit cap set", "holder", holder, "cap", limit.String(), "remaining", h.CapRemaining.String())
	return nil
}

// DepositCapacity returns holder's initial and remaining capacity. ok is
// false when the ledger does not apply to holder.
func (k *Keeper) DepositCapacity(ctx sdk.Context, holder string) (initial, remaining math.Int, ok bool) {
	h, err := k.GetHolder(ctx, holder)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), false
	}
	h.EnsureCap(k.GetParams(ctx).DefaultDepositCap)
	return h.CapInitial, h.CapRemaining, h.CapSet
}
