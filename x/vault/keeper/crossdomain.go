package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

func requestKey(handle string) []byte {
	return append(append([]byte{}, RequestKeyPrefix...), []byte(handle)...)
}

// GetCrossDomainRequest returns the request stored under handle
func (k *Keeper) GetCrossDomainRequest(ctx sdk.Context, handle string) (types.CrossDomainRequest, bool) {
	bz := k.GetStore(ctx).Get(requestKey(handle))
	if bz == nil {
		return types.CrossDomainRequest{}, false
	}
	var req types.CrossDomainRequest
	if err := json.Unmarshal(bz, &req); err != nil {
		return types.CrossDomainRequest{}, false
	}
	return req, true
}

func (k *Keeper) setCrossDomainRequest(ctx sdk.Context, req types.CrossDomainRequest) {
	bz, _ := json.Marshal(req)
	k.GetStore(ctx).Set(requestKey(req.Handle), bz)
}

// GetAllCrossDomainRequests returns every stored request
func (k *Keeper) GetAllCrossDomainRequests(ctx sdk.Context) []types.CrossDomainRequest {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), RequestKeyPrefix)
	defer iterator.Close()

	var out []types.CrossDomainRequest
	for ; iterator.Valid(); iterator.Next() {
		var req types.CrossDomainRequest
		if err := json.Unmarshal(iterator.Value(), &req); err != nil {
			continue
		}
		out = append(out, req)
	}
	return out
}

// inFlightRequest returns the request currently being finalized
func (k *Keeper) inFlightRequest(ctx sdk.Context) (types.CrossDomainRequest, bool) {
	handle := k.GetStore(ctx).Get(InFlightKey)
	if handle == nil {
		return types.CrossDomainRequest{}, false
	}
	return k.GetCrossDomainRequest(ctx, string(handle))
}

func (k *Keeper) nextRequestSeq(ctx sdk.Context) uint64 {
	store := k.GetStore(ctx)
	var seq uint64
	if bz := store.Get(RequestSeqKey); bz != nil {
		seq = binary.BigEndian.Uint64(bz)
	}
	store.Set(RequestSeqKey, binary.BigEndian.AppendUint64(nil, seq+1))
	return seq
}

// CreateRequest defers action until every remote domain has reported its
// value. Deposit-style actions escrow the caller's assets; withdraw-style
// actions lock the owner's shares.
func (k *Keeper) CreateRequest(goCtx context.Context, initiator string, action types.ActionType, payload types.ActionPayload, options []byte) (types.CrossDomainRequest, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	var req types.CrossDomainRequest
	err := k.nonReentrant(ctx, func() error {
		var err error
		req, err = k.createRequest(ctx, initiator, action, payload, options)
		return err
	})
	return req, err
}

func (k *Keeper) createRequest(ctx sdk.Context, initiator string, action types.ActionType, payload types.ActionPayload, options []byte) (types.CrossDomainRequest, error) {
	if err := k.whenNotPaused(ctx); err != nil {
		return types.CrossDomainRequest{}, err
	}
	params := k.GetParams(ctx)
	if !params.CrossDomainEnabled() || k.messenger == nil {
		return types.CrossDomainRequest{}, types.ErrCrossDomainDisabled
	}
	if err := payload.ValidateFor(action); err != nil {
		return types.CrossDomainRequest{}, err
	}
	switch action {
	case types.ActionFeeUpdate:
		if err := k.checkAuthority(initiator); err != nil {
			return types.CrossDomainRequest{}, err
		}
	case types.ActionWithdraw, types.ActionRedeem:
		if params.QueueEnabled {
			return types.CrossDomainRequest{}, types.ErrQueueEnabled
		}
	case types.ActionFinalizeWithdrawal:
		if !params.QueueEnabled {
			return types.CrossDomainRequest{}, types.ErrQueueDisabled
		}
		queued, ok := k.GetWithdrawalRequest(ctx, payload.Owner)
		if !ok {
			return types.CrossDomainRequest{}, errors.Wrapf(types.ErrRequestNotFound, "withdrawal for %s", payload.Owner)
		}
		if initiator != queued.Holder && initiator != queued.Requester {
			return types.CrossDomainRequest{}, errors.Wrapf(types.ErrUnauthorized, "%s cannot finalize for %s", initiator, payload.Owner)
		}
		if !queued.Matured(ctx.BlockTime()) {
			return types.CrossDomainRequest{}, errors.Wrapf(types.ErrTimelockActive, "expires at %d", queued.ExpiresAt)
		}
	}

	local, err := k.LocalAssets(ctx)
	if err != nil {
		return types.CrossDomainRequest{}, err
	}
	now := ctx.BlockTime().Unix()
	query := types.RemoteValueQuery{
		Pool:      k.ModuleAddress().String(),
		Nonce:     k.nextRequestSeq(ctx),
		Initiator: initiator,
		Action:    action,
		CreatedAt: now,
	}

	fee, err := k.messenger.Quote(ctx, query.Bytes(), options)
	if err != nil {
		return types.CrossDomainRequest{}, errors.Wrapf(types.ErrCrossDomainDisabled, "quote: %s", err)
	}
	initiatorAddr, err := sdk.AccAddressFromBech32(initiator)
	if err != nil {
		return types.CrossDomainRequest{}, err
	}
	if !fee.IsZero() {
		if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, initiatorAddr, authtypes.FeeCollectorName, fee); err != nil {
			return types.CrossDomainRequest{}, err
		}
	}

	req := types.CrossDomainRequest{
		Initiator:     initiator,
		Action:        action,
		Payload:       payload,
		CreatedAt:     now,
		Status:        types.RequestStatusCreated,
		LocalSnapshot: local,
		RemoteValue:   math.ZeroInt(),
		LockedShares:  math.ZeroInt(),
	}
	if err := k.reserve(ctx, &req, initiatorAddr); err != nil {
		return types.CrossDomainRequest{}, err
	}

	handle, err := k.messenger.Send(ctx, query.Bytes(), params.RemoteDomains, options, fee)
	if err != nil {
		return types.CrossDomainRequest{}, errors.Wrapf(types.ErrCrossDomainDisabled, "send: %s", err)
	}
	if _, exists := k.GetCrossDomainRequest(ctx, handle); exists || handle == "" {
		return types.CrossDomainRequest{}, errors.Wrapf(types.ErrInvalidRequestState, "handle %q already used", handle)
	}
	req.Handle = handle
	k.setCrossDomainRequest(ctx, req)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_cross_domain_created",
			sdk.NewAttribute("handle", handle),
			sdk.NewAttribute("initiator", initiator),
			sdk.NewAttribute("action", string(action)),
			sdk.NewAttribute("local_snapshot", local.String()),
			sdk.NewAttribute("fee", fee.String()),
		),
	)
	k.logger.Info("cross-domain request created", "handle", handle, "action", action, "local", local.String())
	return req, nil
}

// reserve escrows assets or locks shares for req
func (k *Keeper) reserve(ctx sdk.Context, req *types.CrossDomainRequest, initiator sdk.AccAddress) error {
	params := k.GetParams(ctx)
	p := req.Payload
	switch req.Action {
	case types.ActionDeposit:
		req.Escrow = sdk.NewCoins(sdk.NewCoin(params.Denom, p.Assets))
	case types.ActionMint:
		req.Escrow = sdk.NewCoins(sdk.NewCoin(params.Denom, p.MaxAssets))
	case types.ActionMultiAssetDeposit:
		coins, err := k.depositCoins(ctx, p.Denoms, p.Amounts)
		if err != nil {
			return err
		}
		req.Escrow = coins
	case types.ActionWithdraw, types.ActionRedeem:
		shares := p.Shares
		if req.Action == types.ActionWithdraw {
			// local NAV understates the pool, so this over-reserves
			s, err := k.loadPoolState(ctx)
			if err != nil {
				return err
			}
			if shares, err = s.toShares(p.Assets, types.RoundCeil); err != nil {
				return err
			}
		}
		h, err := k.GetHolder(ctx, p.Owner)
		if err != nil {
			return err
		}
		if req.Action == types.ActionWithdraw {
			shares = math.MinInt(shares, h.Spendable())
		}
		if !shares.IsPositive() {
			return errors.Wrapf(types.ErrInsufficientShares, "%s has no spendable shares", p.Owner)
		}
		if err := k.spendAllowance(ctx, p.Owner, req.Initiator, shares); err != nil {
			return err
		}
		if err := h.Lock(shares); err != nil {
			return err
		}
		if err := k.setHolder(ctx, h); err != nil {
			return err
		}
		req.LockedShares = shares
	}

	if !req.Escrow.IsZero() {
		return k.bankKeeper.SendCoinsFromAccountToModule(ctx, initiator, types.EscrowModuleName, req.Escrow)
	}
	return nil
}

// Reply records the remote values for handle. Only the coordinator may reply.
// A failed reply leaves the request waiting.
func (k *Keeper) Reply(goCtx context.Context, caller, handle string, remoteValuesUSD []math.Int, success bool) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	params := k.GetParams(ctx)
	if params.Coordinator == "" || caller != params.Coordinator {
		return errors.Wrapf(types.ErrUnauthorized, "%s is not the coordinator", caller)
	}
	req, ok := k.GetCrossDomainRequest(ctx, handle)
	if !ok {
		return errors.Wrap(types.ErrRequestNotFound, handle)
	}
	if req.Status != types.RequestStatusCreated {
		return errors.Wrapf(types.ErrInvalidRequestState, "%s is %s", handle, req.Status)
	}

	if !success {
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				"vault_cross_domain_reply_failed",
				sdk.NewAttribute("handle", handle),
			),
		)
		k.logger.Warn("cross-domain reply reported failure", "handle", handle)
		return nil
	}

	totalUSD := math.ZeroInt()
	for _, v := range remoteValuesUSD {
		if v.IsNil() || v.IsNegative() {
			return errors.Wrapf(types.ErrInvalidRequestState, "remote value %v", v)
		}
		var err error
		if totalUSD, err = totalUSD.SafeAdd(v); err != nil {
			return errors.Wrapf(types.ErrArithmeticOverflow, "remote values: %s", err)
		}
	}
	price, err := k.assetPrice(ctx, params.Denom)
	if err != nil {
		return err
	}
	remote, err := types.USDToAssets(totalUSD, price, params.AssetDecimals)
	if err != nil {
		return err
	}
	if _, err := req.LocalSnapshot.SafeAdd(remote); err != nil {
		return errors.Wrapf(types.ErrArithmeticOverflow, "snapshot: %s", err)
	}

	req.RemoteValue = remote
	req.Status = types.RequestStatusFulfilled
	req.FulfilledAt = ctx.BlockTime().Unix()
	k.setCrossDomainRequest(ctx, req)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_cross_domain_fulfilled",
			sdk.NewAttribute("handle", handle),
			sdk.NewAttribute("remote_usd", totalUSD.String()),
			sdk.NewAttribute("remote_value", remote.String()),
			sdk.NewAttribute("snapshot", req.Snapshot().String()),
		),
	)
	k.logger.Info("cross-domain request fulfilled", "handle", handle, "snapshot", req.Snapshot().String())
	return nil
}

// FinalizeRequest executes a fulfilled request against its frozen NAV. On
// any failure the request is left exactly as it was.
func (k *Keeper) FinalizeRequest(goCtx context.Context, caller, handle string) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	return k.nonReentrant(ctx, func() error {
		return k.finalizeRequest(ctx, caller, handle)
	})
}

func (k *Keeper) finalizeRequest(ctx sdk.Context, caller, handle string) error {
	if err := k.whenNotPaused(ctx); err != nil {
		return err
	}
	params := k.GetParams(ctx)
	req, ok := k.GetCrossDomainRequest(ctx, handle)
	if !ok {
		return errors.Wrap(types.ErrRequestNotFound, handle)
	}
	if caller != req.Initiator && caller != params.Coordinator {
		return errors.Wrapf(types.ErrUnauthorized, "%s cannot finalize %s", caller, handle)
	}
	switch req.Status {
	case types.RequestStatusCreated:
		return errors.Wrap(types.ErrRequestNotFulfilled, handle)
	case types.RequestStatusFinalized:
		return errors.Wrap(types.ErrAlreadyFinalized, handle)
	case types.RequestStatusExpired:
		return errors.Wrap(types.ErrGraceWindowExpired, handle)
	case types.RequestStatusFulfilled:
	default:
		return errors.Wrapf(types.ErrInvalidRequestState, "%s is %s", handle, req.Status)
	}
	if !req.WithinGrace(ctx.BlockTime(), params.CrossDomainGraceWindow) {
		return errors.Wrapf(types.ErrGraceWindowExpired, "%s deadline %d", handle, req.GraceDeadline(params.CrossDomainGraceWindow))
	}
	store := k.GetStore(ctx)
	if store.Has(InFlightKey) {
		return errors.Wrapf(types.ErrFinalizeInFlight, "%s", store.Get(InFlightKey))
	}

	cacheCtx, write := ctx.CacheContext()
	cacheCtx.KVStore(k.storeKey).Set(InFlightKey, []byte(handle))
	if err := k.dispatch(cacheCtx, req); err != nil {
		return err
	}
	cacheCtx.KVStore(k.storeKey).Delete(InFlightKey)
	req.Status = types.RequestStatusFinalized
	req.FinalizedAt = ctx.BlockTime().Unix()
	k.setCrossDomainRequest(cacheCtx, req)
	write()

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_cross_domain_finalized",
			sdk.NewAttribute("handle", handle),
			sdk.NewAttribute("action", string(req.Action)),
			sdk.NewAttribute("snapshot", req.Snapshot().String()),
		),
	)
	k.logger.Info("cross-domain request finalized", "handle", handle, "action", req.Action)
	return nil
}

// dispatch runs the deferred action. TotalAssets returns the request's
// snapshot for the duration.
func (k *Keeper) dispatch(ctx sdk.Context, req types.CrossDomainRequest) error {
	p := req.Payload
	escrow := assetSource{account: req.Initiator, escrow: true}
	switch req.Action {
	case types.ActionDeposit:
		_, err := k.deposit(ctx, escrow, p.Receiver, p.Assets)
		return err
	case types.ActionMultiAssetDeposit:
		_, err := k.multiAssetDeposit(ctx, escrow, p.Receiver, req.Escrow)
		return err
	case types.ActionMint:
		assets, err := k.mint(ctx, escrow, p.Receiver, p.Shares, p.MaxAssets)
		if err != nil {
			return err
		}
		return k.refundEscrow(ctx, req.Initiator, sdk.NewCoins(sdk.NewCoin(k.GetParams(ctx).Denom, p.MaxAssets.Sub(assets))))
	case types.ActionWithdraw, types.ActionRedeem:
		if err := k.unlockShares(ctx, p.Owner, req.LockedShares); err != nil {
			return err
		}
		opts := exitOpts{maxShares: req.LockedShares}
		if req.Action == types.ActionWithdraw {
			_, err := k.withdraw(ctx, req.Initiator, p.Receiver, p.Owner, p.Assets, opts)
			return err
		}
		_, err := k.redeem(ctx, req.Initiator, p.Receiver, p.Owner, p.Shares, opts)
		return err
	case types.ActionFinalizeWithdrawal:
		// the queued shares were locked by RequestWithdrawal, not by this request
		_, err := k.settleWithdrawal(ctx, req.Initiator, p.Owner, p.Receiver)
		return err
	case types.ActionFeeUpdate:
		params := k.GetParams(ctx)
		if p.PerformanceFeeBps != nil {
			params.PerformanceFeeBps = *p.PerformanceFeeBps
		}
		if p.WithdrawalFeeBps != nil {
			params.WithdrawalFeeBps = *p.WithdrawalFeeBps
		}
		return k.setParamsCheckpointed(ctx, params)
	}
	return errors.Wrapf(types.ErrInvalidAction, "unknown action %q", req.Action)
}

// RecoverRequest unwinds an expired or stale request: escrowed assets go back
// to the initiator and locked shares are released.
func (k *Keeper) RecoverRequest(goCtx context.Context, authority, handle string) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := k.checkAuthority(authority); err != nil {
		return err
	}
	params := k.GetParams(ctx)
	req, ok := k.GetCrossDomainRequest(ctx, handle)
	if !ok {
		return errors.Wrap(types.ErrRequestNotFound, handle)
	}
	if !req.Recoverable(ctx.BlockTime(), params.CrossDomainGraceWindow) {
		return errors.Wrapf(types.ErrInvalidRequestState, "%s is %s and still within its grace window", handle, req.Status)
	}

	if req.LockedShares.IsPositive() {
		if err := k.unlockShares(ctx, req.Payload.Owner, req.LockedShares); err != nil {
			return err
		}
		// allowance spent at creation is returned along with the shares
		if req.Initiator != req.Payload.Owner {
			allowance := k.Allowance(ctx, req.Payload.Owner, req.Initiator)
			k.setAllowance(ctx, req.Payload.Owner, req.Initiator, allowance.Add(req.LockedShares))
		}
	}
	req.Status = types.RequestStatusRecovered
	k.setCrossDomainRequest(ctx, req)
	if err := k.refundEscrow(ctx, req.Initiator, req.Escrow); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_cross_domain_recovered",
			sdk.NewAttribute("handle", handle),
			sdk.NewAttribute("refund", req.Escrow.String()),
			sdk.NewAttribute("unlocked_shares", req.LockedShares.String()),
		),
	)
	k.logger.Info("cross-domain request recovered", "handle", handle, "refund", req.Escrow.String())
	return nil
}

// ExpireRequests moves fulfilled requests past their grace window to expired
func (k *Keeper) ExpireRequests(ctx sdk.Context) int {
	params := k.GetParams(ctx)
	expired := 0
	for _, req := range k.GetAllCrossDomainRequests(ctx) {
		if req.Status != types.RequestStatusFulfilled || req.WithinGrace(ctx.BlockTime(), params.CrossDomainGraceWindow) {
			continue
		}
		req.Status = types.RequestStatusExpired
		k.setCrossDomainRequest(ctx, req)
		expired++

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				"vault_cross_domain_expired",
				sdk.NewAttribute("handle", req.Handle),
			),
		)
	}
	return expired
}

func (k *Keeper) unlockShares(ctx sdk.Context, owner string, shares math.Int) error {
	h, err := k.GetHolder(ctx, owner)
	if err != nil {
		return err
	}
	h.Unlock(shares)
	return k.setHolder(ctx, h)
}

func (k *Keeper) refundEscrow(ctx sdk.Context, to string, coins sdk.Coins) error {
	if coins.IsZero() {
		return nil
	}
	addr, err := sdk.AccAddressFromBech32(to)
	if err != nil {
		return err
	}
	return k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.EscrowModuleName, addr, coins)
}
