package keeper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/huandu/skiplist"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// WithdrawalPayout describes a finalized withdrawal
type WithdrawalPayout struct {
	Shares    math.Int
	Gross     math.Int
	Fee       math.Int
	FeeShares math.Int
	Net       math.Int
}

func withdrawalKey(holder string) []byte {
	return append(append([]byte{}, WithdrawalKeyPrefix...), []byte(holder)...)
}

// GetWithdrawalRequest returns holder's live request
func (k *Keeper) GetWithdrawalRequest(ctx sdk.Context, holder string) (types.WithdrawalRequest, bool) {
	bz := k.GetStore(ctx).Get(withdrawalKey(holder))
	if bz == nil {
		return types.WithdrawalRequest{}, false
	}
	var req types.WithdrawalRequest
	if err := json.Unmarshal(bz, &req); err != nil {
		return types.WithdrawalRequest{}, false
	}
	return req, true
}

func (k *Keeper) setWithdrawalRequest(ctx sdk.Context, req types.WithdrawalRequest) {
	bz, _ := json.Marshal(req)
	k.GetStore(ctx).Set(withdrawalKey(req.Holder), bz)
}

// RequestWithdrawal locks the shares worth assets for holder until the timelock expires.
// A caller other than holder spends its allowance. Requests only lock shares,
// so they stay local in a cross-domain pool; the payout goes through the
// coordinator.
func (k *Keeper) RequestWithdrawal(goCtx context.Context, caller, holder string, assets math.Int) (types.WithdrawalRequest, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.whenNotPaused(ctx); err != nil {
		return types.WithdrawalRequest{}, err
	}
	params := k.GetParams(ctx)
	if !params.QueueEnabled {
		return types.WithdrawalRequest{}, types.ErrQueueDisabled
	}
	if assets.IsNil() || !assets.IsPositive() {
		return types.WithdrawalRequest{}, errors.Wrap(types.ErrZeroAmount, "withdrawal request")
	}
	if _, exists := k.GetWithdrawalRequest(ctx, holder); exists {
		return types.WithdrawalRequest{}, errors.Wrap(types.ErrRequestExists, holder)
	}

	shares, err := k.withdrawalShares(ctx, params, holder, assets)
	if err != nil {
		return types.WithdrawalRequest{}, err
	}
	h, err := k.GetHolder(ctx, holder)
	if err != nil {
		return types.WithdrawalRequest{}, err
	}
	if params.CrossDomainEnabled() {
		// local NAV understates the pool, so cap the lock at what the holder has
		shares = math.MinInt(shares, h.Spendable())
		if !shares.IsPositive() {
			return types.WithdrawalRequest{}, errors.Wrapf(types.ErrInsufficientShares, "%s has no spendable shares", holder)
		}
	}
	if err := k.spendAllowance(ctx, holder, caller, shares); err != nil {
		return types.WithdrawalRequest{}, err
	}
	if err := h.Lock(shares); err != nil {
		return types.WithdrawalRequest{}, err
	}
	if err := k.setHolder(ctx, h); err != nil {
		return types.WithdrawalRequest{}, err
	}

	now := ctx.BlockTime()
	req := types.WithdrawalRequest{
		Holder:    holder,
		Requester: caller,
		Shares:    shares,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(params.WithdrawalTimelock).Unix(),
	}
	k.setWithdrawalRequest(ctx, req)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_withdrawal_requested",
			sdk.NewAttribute("holder", holder),
			sdk.NewAttribute("requester", caller),
			sdk.NewAttribute("shares", shares.String()),
			sdk.NewAttribute("expires_at", fmt.Sprintf("%d", req.ExpiresAt)),
		),
	)
	k.logger.Info("withdrawal requested",
		"holder", holder,
		"shares", shares.String(),
		"expires_at", time.Unix(req.ExpiresAt, 0).UTC().Format(time.RFC3339),
	)
	return req, nil
}

// withdrawalShares sizes a request for assets. A cross-domain pool only knows
// its local NAV here, so fees are left to the settlement checkpoint and a pool
// with nothing held locally locks the holder's whole balance.
func (k *Keeper) withdrawalShares(ctx sdk.Context, params types.Params, holder string, assets math.Int) (math.Int, error) {
	if !params.CrossDomainEnabled() {
		if _, err := k.accrue(ctx, holder); err != nil {
			return math.Int{}, err
		}
	}
	s, err := k.loadPoolState(ctx)
	switch {
	case errors.IsOf(err, types.ErrZeroNAV) && params.CrossDomainEnabled():
		h, err := k.GetHolder(ctx, holder)
		if err != nil {
			return math.Int{}, err
		}
		return h.Spendable(), nil
	case err != nil:
		return math.Int{}, err
	}
	return s.toShares(assets, types.RoundCeil)
}

// FinalizeWithdrawal burns a matured request's shares and pays the net amount
// to receiver. The withdrawal fee stays in the pool as fee-recipient shares.
func (k *Keeper) FinalizeWithdrawal(goCtx context.Context, caller, holder, receiver string) (WithdrawalPayout, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	var payout WithdrawalPayout
	err := k.nonReentrant(ctx, func() error {
		var err error
		payout, err = k.finalizeWithdrawal(ctx, caller, holder, receiver)
		return err
	})
	return payout, err
}

func (k *Keeper) finalizeWithdrawal(ctx sdk.Context, caller, holder, receiver string) (WithdrawalPayout, error) {
	if err := k.checkDirect(ctx); err != nil {
		return WithdrawalPayout{}, err
	}
	return k.settleWithdrawal(ctx, caller, holder, receiver)
}

// settleWithdrawal pays out holder's matured request at the current NAV,
// which is the frozen snapshot when run by the coordinator
func (k *Keeper) settleWithdrawal(ctx sdk.Context, caller, holder, receiver string) (WithdrawalPayout, error) {
	req, ok := k.GetWithdrawalRequest(ctx, holder)
	if !ok {
		return WithdrawalPayout{}, errors.Wrapf(types.ErrRequestNotFound, "withdrawal for %s", holder)
	}
	if caller != req.Holder && caller != req.Requester {
		return WithdrawalPayout{}, errors.Wrapf(types.ErrUnauthorized, "%s cannot finalize for %s", caller, holder)
	}
	if !req.Matured(ctx.BlockTime()) {
		return WithdrawalPayout{}, errors.Wrapf(types.ErrTimelockActive, "expires at %d", req.ExpiresAt)
	}

	if _, err := k.accrue(ctx, holder); err != nil {
		return WithdrawalPayout{}, err
	}
	s, err := k.loadPoolState(ctx)
	if err != nil {
		return WithdrawalPayout{}, err
	}
	p := WithdrawalPayout{Shares: req.Shares, FeeShares: math.ZeroInt()}
	if p.Gross, err = s.toAssets(req.Shares, types.RoundFloor); err != nil {
		return WithdrawalPayout{}, err
	}
	if p.Fee, err = types.MulDiv(p.Gross, math.NewInt(int64(s.params.WithdrawalFeeBps)), math.NewInt(types.BasisPoints), types.RoundCeil); err != nil {
		return WithdrawalPayout{}, err
	}
	if p.Fee.IsPositive() && s.params.FeesEnabled() {
		if p.FeeShares, err = s.toShares(p.Fee, types.RoundFloor); err != nil {
			return WithdrawalPayout{}, err
		}
	}
	p.Net = p.Gross.Sub(p.Fee)
	price, err := s.price()
	if err != nil {
		return WithdrawalPayout{}, err
	}

	h, err := k.GetHolder(ctx, holder)
	if err != nil {
		return WithdrawalPayout{}, err
	}
	h.Unlock(req.Shares)
	if err := k.burnShares(ctx, h, req.Shares); err != nil {
		return WithdrawalPayout{}, err
	}
	h.RestoreCap(p.Net)
	if err := k.setHolder(ctx, h); err != nil {
		return WithdrawalPayout{}, err
	}
	k.GetStore(ctx).Delete(withdrawalKey(holder))

	if p.FeeShares.IsPositive() {
		if err := k.mintShares(ctx, s.params.FeeRecipient, p.FeeShares, price); err != nil {
			return WithdrawalPayout{}, err
		}
	}
	if err := k.payout(ctx, receiver, p.Net); err != nil {
		return WithdrawalPayout{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_withdrawal_finalized",
			sdk.NewAttribute("holder", holder),
			sdk.NewAttribute("receiver", receiver),
			sdk.NewAttribute("shares", p.Shares.String()),
			sdk.NewAttribute("gross", p.Gross.String()),
			sdk.NewAttribute("fee", p.Fee.String()),
			sdk.NewAttribute("net", p.Net.String()),
		),
	)
	k.logger.Info("withdrawal finalized",
		"holder", holder,
		"net", p.Net.String(),
		"fee", p.Fee.String(),
	)
	return p, nil
}

// ClearRequest cancels holder's request and releases its shares
func (k *Keeper) ClearRequest(goCtx context.Context, caller, holder string) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	req, ok := k.GetWithdrawalRequest(ctx, holder)
	if !ok {
		return errors.Wrapf(types.ErrRequestNotFound, "withdrawal for %s", holder)
	}
	if caller != req.Holder && caller != req.Requester {
		return errors.Wrapf(types.ErrUnauthorized, "%s cannot clear request of %s", caller, holder)
	}
	h, err := k.GetHolder(ctx, holder)
	if err != nil {
		return err
	}
	h.Unlock(req.Shares)
	if err := k.setHolder(ctx, h); err != nil {
		return err
	}
	k.GetStore(ctx).Delete(withdrawalKey(holder))

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_withdrawal_cleared",
			sdk.NewAttribute("holder", holder),
			sdk.NewAttribute("shares", req.Shares.String()),
		),
	)
	return nil
}

// ============ Queue ordering ============

// queueKey orders requests by expiry, then holder
type queueKey struct {
	expiresAt int64
	holder    string
}

type queueKeyAsc struct{}

// Compare implements skiplist.Comparable
func (queueKeyAsc) Compare(lhs, rhs interface{}) int {
	l, r := lhs.(queueKey), rhs.(queueKey)
	switch {
	case l.expiresAt < r.expiresAt:
		return -1
	case l.expiresAt > r.expiresAt:
		return 1
	}
	return strings.Compare(l.holder, r.holder)
}

// CalcScore implements skiplist.Comparable
func (queueKeyAsc) CalcScore(key interface{}) float64 {
	return float64(key.(queueKey).expiresAt)
}

// withdrawalQueue loads all live requests ordered by expiry
func (k *Keeper) withdrawalQueue(ctx sdk.Context) *skiplist.SkipList {
	list := skiplist.New(queueKeyAsc{})
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), WithdrawalKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var req types.WithdrawalRequest
		if err := json.Unmarshal(iterator.Value(), &req); err != nil {
			continue
		}
		list.Set(queueKey{expiresAt: req.ExpiresAt, holder: req.Holder}, req)
	}
	return list
}

// PendingWithdrawals returns all live requests, earliest expiry first
func (k *Keeper) PendingWithdrawals(ctx sdk.Context) []types.WithdrawalRequest {
	list := k.withdrawalQueue(ctx)
	out := make([]types.WithdrawalRequest, 0, list.Len())
	for elem := list.Front(); elem != nil; elem = elem.Next() {
		out = append(out, elem.Value.(types.WithdrawalRequest))
	}
	return out
}

// MaturedWithdrawals returns requests whose timelock has expired at now
func (k *Keeper) MaturedWithdrawals(ctx sdk.Context, now time.Time) []types.WithdrawalRequest {
	var out []types.WithdrawalRequest
	list := k.withdrawalQueue(ctx)
	for elem := list.Front(); elem != nil; elem = elem.Next() {
		req := elem.Value.(types.WithdrawalRequest)
		if !req.Matured(now) {
			break
		}
		out = append(out, req)
	}
	return out
}
