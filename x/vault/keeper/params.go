package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// GetParams returns the module params, or defaults when unset
func (k *Keeper) GetParams(ctx sdk.Context) types.Params {
	bz := k.GetStore(ctx).Get(ParamsKey)
	if bz == nil {
		return types.DefaultParams()
	}
	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		return types.DefaultParams()
	}
	return params
}

// SetParams validates and stores params
func (k *Keeper) SetParams(ctx sdk.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(params)
	if err != nil {
		return err
	}
	k.GetStore(ctx).Set(ParamsKey, bz)
	return nil
}

// UpdateParams replaces params. When the fee terms change, every holder is
// checkpointed under the old terms first, so a new rate only applies to gains
// made after the update.
func (k *Keeper) UpdateParams(goCtx context.Context, authority string, params types.Params) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.checkAuthority(authority); err != nil {
		return err
	}
	if err := k.setParamsCheckpointed(ctx, params); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_params_updated",
			sdk.NewAttribute("performance_fee_bps", fmt.Sprintf("%d", params.PerformanceFeeBps)),
			sdk.NewAttribute("withdrawal_fee_bps", fmt.Sprintf("%d", params.WithdrawalFeeBps)),
			sdk.NewAttribute("queue_enabled", fmt.Sprintf("%t", params.QueueEnabled)),
		),
	)
	k.logger.Info("params updated", "params", params.String())
	return nil
}

// setParamsCheckpointed validates params, settles accrued fees under the
// stored terms if the fee terms change, then stores params
func (k *Keeper) setParamsCheckpointed(ctx sdk.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if feeTermsChanged(k.GetParams(ctx), params) {
		if err := k.checkpointHolders(ctx); err != nil {
			return err
		}
	}
	return k.SetParams(ctx, params)
}
