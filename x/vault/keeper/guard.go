package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// nonReentrant holds the guard for the duration of fn
func (k *Keeper) nonReentrant(ctx sdk.Context, fn func() error) error {
	store := k.GetStore(ctx)
	if store.Has(GuardKey) {
		return types.ErrReentrant
	}
	store.Set(GuardKey, []byte{1})
	defer store.Delete(GuardKey)
	return fn()
}

// IsPaused reports whether value-moving operations are halted
func (k *Keeper) IsPaused(ctx sdk.Context) bool {
	return k.GetStore(ctx).Has(PausedKey)
}

func (k *Keeper) whenNotPaused(ctx sdk.Context) error {
	if k.IsPaused(ctx) {
		return types.ErrPaused
	}
	return nil
}

// Pause halts all value-moving entry points
func (k *Keeper) Pause(goCtx context.Context, authority string) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.checkAuthority(authority); err != nil {
		return err
	}
	k.GetStore(ctx).Set(PausedKey, []byte{1})
	ctx.EventManager().EmitEvent(sdk.NewEvent("vault_paused"))
	k.logger.Info("vault paused", "block", ctx.BlockHeight())
	return nil
}

// Unpause resumes operations. It refuses while any registered module is
// flagged unsafe.
func (k *Keeper) Unpause(goCtx context.Context, authority string) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.checkAuthority(authority); err != nil {
		return err
	}
	if !k.IsPaused(ctx) {
		return types.ErrNotPaused
	}
	for _, m := range k.registry.Modules() {
		if k.IsModuleUnsafe(ctx, m.Name()) {
			return errors.Wrap(types.ErrUnsafeModule, m.Name())
		}
	}
	k.GetStore(ctx).Delete(PausedKey)
	ctx.EventManager().EmitEvent(sdk.NewEvent("vault_unpaused"))
	k.logger.Info("vault unpaused", "block", ctx.BlockHeight())
	return nil
}

func unsafeModuleKey(name string) []byte {
	return append(append([]byte{}, UnsafeModuleKeyPrefix...), []byte(name)...)
}

// IsModuleUnsafe reports whether name is flagged unsafe
func (k *Keeper) IsModuleUnsafe(ctx sdk.Context, name string) bool {
	return k.GetStore(ctx).Has(unsafeModuleKey(name))
}

// FlagModule sets or clears the unsafe flag on a valuation module
func (k *Keeper) FlagModule(goCtx context.Context, authority, name string, unsafe bool) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.checkAuthority(authority); err != nil {
		return err
	}
	if unsafe {
		k.GetStore(ctx).Set(unsafeModuleKey(name), []byte{1})
	} else {
		k.GetStore(ctx).Delete(unsafeModuleKey(name))
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_module_flagged",
			sdk.NewAttribute("module", name),
			sdk.NewAttribute("unsafe", fmt.Sprintf("%t", unsafe)),
		),
	)
	k.logger.Info("valuation module flagged", "module", name, "unsafe", unsafe)
	return nil
}

// UnsafeModules lists flagged module names
func (k *Keeper) UnsafeModules(ctx sdk.Context) []string {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), UnsafeModuleKeyPrefix)
	defer iterator.Close()

	var names []string
	for ; iterator.Valid(); iterator.Next() {
		names = append(names, string(iterator.Key()[len(UnsafeModuleKeyPrefix):]))
	}
	return names
}
