package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// InitGenesis loads the vault state. Supply is derived from holder balances.
func (k *Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	if err := k.SetParams(ctx, gs.Params); err != nil {
		return err
	}
	store := k.GetStore(ctx)
	if gs.Paused {
		store.Set(PausedKey, []byte{1})
	}
	for i := range gs.Holders {
		if err := k.setHolder(ctx, &gs.Holders[i]); err != nil {
			return err
		}
	}
	k.setTotalSupply(ctx, gs.TotalSupply())
	for _, a := range gs.Allowances {
		k.setAllowance(ctx, a.Owner, a.Spender, a.Amount)
	}
	for _, w := range gs.Withdrawals {
		k.setWithdrawalRequest(ctx, w)
	}
	for _, r := range gs.Requests {
		k.setCrossDomainRequest(ctx, r)
	}
	for _, name := range gs.UnsafeModules {
		store.Set(unsafeModuleKey(name), []byte{1})
	}

	k.logger.Info("vault genesis loaded",
		"holders", len(gs.Holders),
		"supply", gs.TotalSupply().String(),
		"requests", len(gs.Requests),
	)
	return nil
}

// ExportGenesis returns the vault state
func (k *Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	return &types.GenesisState{
		Params:        k.GetParams(ctx),
		Paused:        k.IsPaused(ctx),
		Holders:       k.GetAllHolders(ctx),
		Allowances:    k.GetAllAllowances(ctx),
		Withdrawals:   k.PendingWithdrawals(ctx),
		Requests:      k.GetAllCrossDomainRequests(ctx),
		UnsafeModules: k.UnsafeModules(ctx),
	}
}
