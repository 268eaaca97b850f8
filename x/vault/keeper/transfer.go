package keeper

import (
	"context"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// Transfer moves shares from sender to recipient
func (k *Keeper) Transfer(goCtx context.Context, from, to string, shares math.Int) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.whenNotPaused(ctx); err != nil {
		return err
	}
	return k.transfer(ctx, from, to, shares)
}

// TransferFrom moves shares on behalf of from using spender's allowance
func (k *Keeper) TransferFrom(goCtx context.Context, spender, from, to string, shares math.Int) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.whenNotPaused(ctx); err != nil {
		return err
	}
	if err := k.spendAllowance(ctx, from, spender, shares); err != nil {
		return err
	}
	return k.transfer(ctx, from, to, shares)
}

// Approve sets spender's allowance over owner's shares
func (k *Keeper) Approve(goCtx context.Context, owner, spender string, shares math.Int) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if shares.IsNil() || shares.IsNegative() {
		return errors.Wrap(types.ErrZeroAmount, "allowance")
	}
	k.setAllowance(ctx, owner, spender, shares)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_approval",
			sdk.NewAttribute("owner", owner),
			sdk.NewAttribute("spender", spender),
			sdk.NewAttribute("shares", shares.String()),
		),
	)
	return nil
}

// transfer checkpoints both sides, then moves shares. The recipient's mark
// becomes the balance-weighted average of its own and the sender's.
func (k *Keeper) transfer(ctx sdk.Context, from, to string, shares math.Int) error {
	if shares.IsNil() || !shares.IsPositive() {
		return errors.Wrap(types.ErrZeroAmount, "transfer")
	}
	if _, err := k.accrue(ctx, from); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	if _, err := k.accrue(ctx, to); err != nil {
		return err
	}

	sender, err := k.GetHolder(ctx, from)
	if err != nil {
		return err
	}
	senderMark := sender.Mark
	if err := sender.Debit(shares); err != nil {
		return err
	}
	if err := k.setHolder(ctx, sender); err != nil {
		return err
	}

	receiver, err := k.GetHolder(ctx, to)
	if err != nil {
		return err
	}
	if err := receiver.Receive(shares, senderMark); err != nil {
		return err
	}
	if err := k.setHolder(ctx, receiver); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_transfer",
			sdk.NewAttribute("from", from),
			sdk.NewAttribute("to", to),
			sdk.NewAttribute("shares", shares.String()),
			sdk.NewAttribute("receiver_mark", receiver.Mark.String()),
		),
	)
	return nil
}
