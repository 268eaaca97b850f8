package keeper

import (
	"encoding/json"

	"cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// Store key prefixes
var (
	ParamsKey             = []byte{0x01}
	SupplyKey             = []byte{0x02}
	PausedKey             = []byte{0x03}
	GuardKey              = []byte{0x04}
	InFlightKey           = []byte{0x05}
	RequestSeqKey         = []byte{0x06}
	HolderKeyPrefix       = []byte{0x10}
	AllowanceKeyPrefix    = []byte{0x11}
	WithdrawalKeyPrefix   = []byte{0x12}
	RequestKeyPrefix      = []byte{0x13}
	UnsafeModuleKeyPrefix = []byte{0x14}
)

// Keeper manages the vault module state
type Keeper struct {
	cdc        codec.BinaryCodec
	storeKey   storetypes.StoreKey
	bankKeeper types.BankKeeper
	oracle     types.PriceOracle
	messenger  Messenger
	registry   *ModuleRegistry
	logger     log.Logger
	authority  string
}

// NewKeeper creates a new vault keeper. The supported-asset valuation module
// is always registered first.
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	bankKeeper types.BankKeeper,
	oracle types.PriceOracle,
	messenger Messenger,
	authority string,
	logger log.Logger,
) *Keeper {
	k := &Keeper{
		cdc:        cdc,
		storeKey:   storeKey,
		bankKeeper: bankKeeper,
		oracle:     oracle,
		messenger:  messenger,
		registry:   NewModuleRegistry(),
		authority:  authority,
		logger:     logger.With("module", "x/vault"),
	}
	if err := k.registry.Register(newHoldingsModule(k)); err != nil {
		panic(err)
	}
	return k
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the governance authority address
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// Registry returns the valuation module registry
func (k *Keeper) Registry() *ModuleRegistry {
	return k.registry
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// ModuleAddress is the account holding pool assets
func (k *Keeper) ModuleAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(types.ModuleName)
}

// EscrowAddress is the account holding assets of pending cross-domain requests
func (k *Keeper) EscrowAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(types.EscrowModuleName)
}

func (k *Keeper) checkAuthority(addr string) error {
	if addr != k.authority {
		return errors.Wrapf(types.ErrUnauthorized, "expected %s, got %s", k.authority, addr)
	}
	return nil
}

// ============ Supply ============

// GetTotalSupply returns the total share supply
func (k *Keeper) GetTotalSupply(ctx sdk.Context) math.Int {
	bz := k.GetStore(ctx).Get(SupplyKey)
	if bz == nil {
		return math.ZeroInt()
	}
	var supply math.Int
	if err := json.Unmarshal(bz, &supply); err != nil {
		return math.ZeroInt()
	}
	return supply
}

func (k *Keeper) setTotalSupply(ctx sdk.Context, supply math.Int) {
	bz, _ := json.Marshal(supply)
	k.GetStore(ctx).Set(SupplyKey, bz)
}

// ============ Holders ============

func holderKey(addr string) []byte {
	return append(append([]byte{}, HolderKeyPrefix...), []byte(addr)...)
}

// GetHolder loads a holder record, returning an empty holder when none exists.
// Corrupt records are rejected rather than repaired.
func (k *Keeper) GetHolder(ctx sdk.Context, addr string) (*types.Holder, error) {
	bz := k.GetStore(ctx).Get(holderKey(addr))
	if bz == nil {
		return types.NewHolder(addr), nil
	}
	var h types.Holder
	if err := json.Unmarshal(bz, &h); err != nil {
		return nil, errors.Wrapf(types.ErrCorruptHolder, "%s: %s", addr, err)
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return &h, nil
}

// setHolder persists h; empty holders without a capacity ledger are pruned
func (k *Keeper) setHolder(ctx sdk.Context, h *types.Holder) error {
	if err := h.Validate(); err != nil {
		return err
	}
	store := k.GetStore(ctx)
	if h.IsEmpty() && !h.CapSet {
		store.Delete(holderKey(h.Address))
		return nil
	}
	bz, err := json.Marshal(h)
	if err != nil {
		return err
	}
	store.Set(holderKey(h.Address), bz)
	return nil
}

// GetAllHolders returns all stored holders
func (k *Keeper) GetAllHolders(ctx sdk.Context) []types.Holder {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, HolderKeyPrefix)
	defer iterator.Close()

	var holders []types.Holder
	for ; iterator.Valid(); iterator.Next() {
		var h types.Holder
		if err := json.Unmarshal(iterator.Value(), &h); err != nil {
			continue
		}
		holders = append(holders, h)
	}
	return holders
}

// BalanceOf returns the share balance of addr
func (k *Keeper) BalanceOf(ctx sdk.Context, addr string) math.Int {
	h, err := k.GetHolder(ctx, addr)
	if err != nil {
		return math.ZeroInt()
	}
	return h.Balance
}

// mintShares issues fee shares to addr at price and grows supply. An active
// recipient blends price into its mark so the new shares carry no gain.
func (k *Keeper) mintShares(ctx sdk.Context, addr string, shares, price math.Int) error {
	h, err := k.GetHolder(ctx, addr)
	if err != nil {
		return err
	}
	if err := h.Receive(shares, price); err != nil {
		return err
	}
	if err := k.setHolder(ctx, h); err != nil {
		return err
	}
	k.setTotalSupply(ctx, k.GetTotalSupply(ctx).Add(shares))
	return nil
}

// burnShares debits spendable shares from h and shrinks supply. The caller
// persists h.
func (k *Keeper) burnShares(ctx sdk.Context, h *types.Holder, shares math.Int) error {
	if err := h.Debit(shares); err != nil {
		return err
	}
	k.setTotalSupply(ctx, k.GetTotalSupply(ctx).Sub(shares))
	return nil
}

// ============ Allowances ============

func allowanceKey(owner, spender string) []byte {
	key := append(append([]byte{}, AllowanceKeyPrefix...), []byte(owner)...)
	key = append(key, '/')
	return append(key, []byte(spender)...)
}

// Allowance returns the shares spender may move from owner
func (k *Keeper) Allowance(ctx sdk.Context, owner, spender string) math.Int {
	bz := k.GetStore(ctx).Get(allowanceKey(owner, spender))
	if bz == nil {
		return math.ZeroInt()
	}
	var a types.Allowance
	if err := json.Unmarshal(bz, &a); err != nil {
		return math.ZeroInt()
	}
	return a.Amount
}

func (k *Keeper) setAllowance(ctx sdk.Context, owner, spender string, amount math.Int) {
	store := k.GetStore(ctx)
	if amount.IsZero() {
		store.Delete(allowanceKey(owner, spender))
		return
	}
	bz, _ := json.Marshal(types.Allowance{Owner: owner, Spender: spender, Amount: amount})
	store.Set(allowanceKey(owner, spender), bz)
}

// spendAllowance charges shares against spender's allowance over owner.
// Owners acting for themselves spend nothing.
func (k *Keeper) spendAllowance(ctx sdk.Context, owner, spender string, shares math.Int) error {
	if owner == spender {
		return nil
	}
	current := k.Allowance(ctx, owner, spender)
	if current.LT(shares) {
		return errors.Wrapf(types.ErrInsufficientAllowance, "%s over %s: have %s, need %s", spender, owner, current, shares)
	}
	k.setAllowance(ctx, owner, spender, current.Sub(shares))
	return nil
}

// GetAllAllowances returns all allowances
func (k *Keeper) GetAllAllowances(ctx sdk.Context) []types.Allowance {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, AllowanceKeyPrefix)
	defer iterator.Close()

	var out []types.Allowance
	for ; iterator.Valid(); iterator.Next() {
		var a types.Allowance
		if err := json.Unmarshal(iterator.Value(), &a); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out
}
