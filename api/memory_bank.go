package api

import (
	"context"
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
)

// MemoryBank is a bank keeper holding balances in memory, keyed by bech32
// address. Module accounts use their derived addresses.
type MemoryBank struct {
	mu       sync.RWMutex
	balances map[string]sdk.Coins
}

// NewMemoryBank creates an empty bank
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{balances: make(map[string]sdk.Coins)}
}

func (b *MemoryBank) send(from, to sdk.AccAddress, amt sdk.Coins) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	have := b.balances[from.String()]
	if !have.IsAllGTE(amt) {
		return sdkerrors.ErrInsufficientFunds.Wrapf("%s has %s, needs %s", from, have, amt)
	}
	b.balances[from.String()] = have.Sub(amt...)
	b.balances[to.String()] = b.balances[to.String()].Add(amt...)
	return nil
}

// SendCoinsFromAccountToModule implements the vault BankKeeper
func (b *MemoryBank) SendCoinsFromAccountToModule(_ context.Context, sender sdk.AccAddress, module string, amt sdk.Coins) error {
	return b.send(sender, authtypes.NewModuleAddress(module), amt)
}

// SendCoinsFromModuleToAccount implements the vault BankKeeper
func (b *MemoryBank) SendCoinsFromModuleToAccount(_ context.Context, module string, recipient sdk.AccAddress, amt sdk.Coins) error {
	return b.send(authtypes.NewModuleAddress(module), recipient, amt)
}

// SendCoinsFromModuleToModule implements the vault BankKeeper
func (b *MemoryBank) SendCoinsFromModuleToModule(_ context.Context, from, to string, amt sdk.Coins) error {
	return b.send(authtypes.NewModuleAddress(from), authtypes.NewModuleAddress(to), amt)
}

// GetBalance implements the vault BankKeeper
func (b *MemoryBank) GetBalance(_ context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return sdk.NewCoin(denom, b.balances[addr.String()].AmountOf(denom))
}

// Fund mints coins to addr
func (b *MemoryBank) Fund(addr sdk.AccAddress, amt sdk.Coins) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[addr.String()] = b.balances[addr.String()].Add(amt...)
}
