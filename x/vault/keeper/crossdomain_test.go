package keeper

import (
	"encoding/json"
	"testing"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/hwmvault/x/vault/types"
)

func (f *testFixture) createDeposit(t testing.TB, addr string, amount int64) types.CrossDomainRequest {
	t.Helper()
	f.bank.fund(addr, amount, usdc)
	req, err := f.k.CreateRequest(f.ctx, addr, types.ActionDeposit, types.ActionPayload{
		Receiver: addr,
		Assets:   math.NewInt(amount),
	}, nil)
	require.NoError(t, err)
	return req
}

func (f *testFixture) fulfil(t testing.TB, handle string, remoteUSD ...math.Int) {
	t.Helper()
	require.NoError(t, f.k.Reply(f.ctx, coord, handle, remoteUSD, true))
}

func (f *testFixture) request(t testing.TB, handle string) types.CrossDomainRequest {
	t.Helper()
	req, ok := f.k.GetCrossDomainRequest(f.ctx, handle)
	require.True(t, ok)
	return req
}

// seedCrossDomain runs one complete deposit for alice so the pool has shares
func (f *testFixture) seedCrossDomain(t testing.TB, amount int64) math.Int {
	t.Helper()
	req := f.createDeposit(t, alice, amount)
	f.fulfil(t, req.Handle, math.ZeroInt(), math.ZeroInt())
	require.NoError(t, f.k.FinalizeRequest(f.ctx, alice, req.Handle))
	return f.holder(t, alice).Balance
}

func TestCrossDomainGatesDirectOperations(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	f.bank.fund(alice, 1_000_000, usdc)

	_, err := f.k.Deposit(f.ctx, alice, alice, math.NewInt(1_000_000))
	require.ErrorIs(t, err, types.ErrCrossDomainRequired)
	_, err = f.k.Mint(f.ctx, alice, alice, math.NewInt(1_000_000))
	require.ErrorIs(t, err, types.ErrCrossDomainRequired)
	_, err = f.k.Redeem(f.ctx, alice, alice, alice, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrCrossDomainRequired)
	_, err = f.k.FinalizeWithdrawal(f.ctx, alice, alice, alice)
	require.ErrorIs(t, err, types.ErrCrossDomainRequired)
}

func TestCrossDomainQueuedWithdrawal(t *testing.T) {
	f := setupKeeper(t, withCrossDomain, withQueue)
	f.seedCrossDomain(t, 10_000_000)

	// requests only lock shares, so they stay local
	queued, err := f.k.RequestWithdrawal(f.ctx, alice, alice, math.NewInt(4_000_000))
	require.NoError(t, err)
	require.Equal(t, "4000000000000", queued.Shares.String())
	require.Equal(t, queued.Shares.String(), f.holder(t, alice).Locked.String())

	_, err = f.k.FinalizeWithdrawal(f.ctx, alice, alice, alice)
	require.ErrorIs(t, err, types.ErrCrossDomainRequired)
	_, err = f.k.CreateRequest(f.ctx, alice, types.ActionRedeem, types.ActionPayload{Receiver: alice, Owner: alice, Shares: math.OneInt()}, nil)
	require.ErrorIs(t, err, types.ErrQueueEnabled)

	payload := types.ActionPayload{Owner: alice, Receiver: carol}
	_, err = f.k.CreateRequest(f.ctx, alice, types.ActionFinalizeWithdrawal, payload, nil)
	require.ErrorIs(t, err, types.ErrTimelockActive)

	f.advance(24 * time.Hour)
	_, err = f.k.CreateRequest(f.ctx, bob, types.ActionFinalizeWithdrawal, payload, nil)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	req, err := f.k.CreateRequest(f.ctx, alice, types.ActionFinalizeWithdrawal, payload, nil)
	require.NoError(t, err)
	require.True(t, req.LockedShares.IsZero())
	f.fulfil(t, req.Handle, math.ZeroInt(), math.ZeroInt())
	require.NoError(t, f.k.FinalizeRequest(f.ctx, alice, req.Handle))

	require.Equal(t, "3996000", f.bank.balance(carol).String())
	h := f.holder(t, alice)
	require.Equal(t, "6000000000000", h.Balance.String())
	require.True(t, h.Locked.IsZero())
	require.True(t, f.holder(t, treasury).Balance.IsPositive())
	_, ok := f.k.GetWithdrawalRequest(f.ctx, alice)
	require.False(t, ok)
	require.Equal(t, types.RequestStatusFinalized, f.request(t, req.Handle).Status)
	f.requireSupplyConsistent(t)
}

func TestCrossDomainQueuedWithdrawalCanBeCleared(t *testing.T) {
	f := setupKeeper(t, withCrossDomain, withQueue)
	f.seedCrossDomain(t, 5_000_000)

	_, err := f.k.RequestWithdrawal(f.ctx, alice, alice, math.NewInt(1_000_000))
	require.NoError(t, err)
	f.advance(24 * time.Hour)
	req, err := f.k.CreateRequest(f.ctx, alice, types.ActionFinalizeWithdrawal, types.ActionPayload{Owner: alice, Receiver: alice}, nil)
	require.NoError(t, err)

	// clearing first leaves the coordinator nothing to pay out
	require.NoError(t, f.k.ClearRequest(f.ctx, alice, alice))
	f.fulfil(t, req.Handle, math.ZeroInt(), math.ZeroInt())
	require.ErrorIs(t, f.k.FinalizeRequest(f.ctx, alice, req.Handle), types.ErrRequestNotFound)
	require.Equal(t, types.RequestStatusFulfilled, f.request(t, req.Handle).Status)
	require.True(t, f.holder(t, alice).Locked.IsZero())
}

func TestCrossDomainDisabled(t *testing.T) {
	f := setupKeeper(t)
	f.bank.fund(alice, 1_000_000, usdc)
	_, err := f.k.CreateRequest(f.ctx, alice, types.ActionDeposit, types.ActionPayload{Receiver: alice, Assets: math.NewInt(1)}, nil)
	require.ErrorIs(t, err, types.ErrCrossDomainDisabled)

	// oracle-only remote valuation keeps the direct path
	f = setupKeeper(t, withCrossDomain, func(p *types.Params) { p.OracleOnlyRemote = true })
	_, err = f.k.CreateRequest(f.ctx, alice, types.ActionDeposit, types.ActionPayload{Receiver: alice, Assets: math.NewInt(1)}, nil)
	require.ErrorIs(t, err, types.ErrCrossDomainDisabled)
	f.deposit(t, alice, 1_000_000)
}

func TestCrossDomainDepositLifecycle(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	req := f.createDeposit(t, alice, 1_000_000_000)

	require.Equal(t, types.RequestStatusCreated, req.Status)
	require.True(t, req.LocalSnapshot.IsZero())
	require.True(t, f.bank.balance(alice).IsZero())
	require.Equal(t, "1000000000", f.bank.balance(f.k.EscrowAddress().String()).String())

	sent := f.msgr.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, req.Handle, sent[0].Handle)
	require.Equal(t, []string{"chain-b", "chain-c"}, sent[0].Destinations)
	var query types.RemoteValueQuery
	require.NoError(t, json.Unmarshal(sent[0].Payload, &query))
	require.Equal(t, types.ActionDeposit, query.Action)

	require.ErrorIs(t, f.k.FinalizeRequest(f.ctx, alice, req.Handle), types.ErrRequestNotFulfilled)
	require.ErrorIs(t, f.k.Reply(f.ctx, bob, req.Handle, nil, true), types.ErrUnauthorized)

	// a failed reply leaves the request waiting
	require.NoError(t, f.k.Reply(f.ctx, coord, req.Handle, nil, false))
	require.Equal(t, types.RequestStatusCreated, f.request(t, req.Handle).Status)

	f.fulfil(t, req.Handle, math.ZeroInt(), math.ZeroInt())
	require.Equal(t, types.RequestStatusFulfilled, f.request(t, req.Handle).Status)
	require.ErrorIs(t, f.k.Reply(f.ctx, coord, req.Handle, nil, true), types.ErrInvalidRequestState)

	require.ErrorIs(t, f.k.FinalizeRequest(f.ctx, bob, req.Handle), types.ErrUnauthorized)
	require.NoError(t, f.k.FinalizeRequest(f.ctx, alice, req.Handle))

	done := f.request(t, req.Handle)
	require.Equal(t, types.RequestStatusFinalized, done.Status)
	require.Equal(t, "1000000000000000", f.holder(t, alice).Balance.String())
	require.True(t, f.bank.balance(f.k.EscrowAddress().String()).IsZero())
	require.Equal(t, "1000000000", f.k.IdleBalance(f.ctx).String())
	require.False(t, f.k.GetStore(f.ctx).Has(InFlightKey))

	require.ErrorIs(t, f.k.FinalizeRequest(f.ctx, alice, req.Handle), types.ErrAlreadyFinalized)
}

func TestCrossDomainFinalizeUsesFrozenSnapshot(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	aliceShares := f.seedCrossDomain(t, 1_000_000_000)

	req := f.createDeposit(t, bob, 1_000_000_000)
	require.Equal(t, "1000000000", req.LocalSnapshot.String())

	// two remote domains hold 1000 USD between them
	f.fulfil(t, req.Handle, usd(600), usd(400))
	fulfilled := f.request(t, req.Handle)
	require.Equal(t, "1000000000", fulfilled.RemoteValue.String())
	require.Equal(t, "2000000000", fulfilled.Snapshot().String())

	// local value moving after the reply does not change the price paid
	f.bank.yield(500_000_000)
	require.NoError(t, f.k.FinalizeRequest(f.ctx, bob, req.Handle))

	b := f.holder(t, bob)
	require.Equal(t, "500000000249999", b.Balance.String())
	require.Equal(t, "1999999", b.Mark.String())
	require.True(t, b.Balance.MulRaw(2).Sub(aliceShares).Abs().LT(math.NewInt(1_000_000)))
}

func TestCrossDomainMintRefundsUnusedEscrow(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	f.seedCrossDomain(t, 1_000_000_000)

	f.bank.fund(bob, 2_000_000_000, usdc)
	req, err := f.k.CreateRequest(f.ctx, bob, types.ActionMint, types.ActionPayload{
		Receiver:  bob,
		Shares:    math.NewInt(500_000_000_000_000),
		MaxAssets: math.NewInt(2_000_000_000),
	}, nil)
	require.NoError(t, err)
	require.True(t, f.bank.balance(bob).IsZero())

	f.fulfil(t, req.Handle, usd(1000))
	require.NoError(t, f.k.FinalizeRequest(f.ctx, bob, req.Handle))

	require.Equal(t, "500000000000000", f.holder(t, bob).Balance.String())
	require.Equal(t, "1000000000", f.bank.balance(bob).String())
	require.True(t, f.bank.balance(f.k.EscrowAddress().String()).IsZero())
}

func TestCrossDomainFailedFinalizeLeavesRequestUntouched(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	f.seedCrossDomain(t, 1_000_000_000)

	f.bank.fund(bob, 100, usdc)
	req, err := f.k.CreateRequest(f.ctx, bob, types.ActionMint, types.ActionPayload{
		Receiver:  bob,
		Shares:    math.NewInt(500_000_000_000_000),
		MaxAssets: math.NewInt(100),
	}, nil)
	require.NoError(t, err)
	f.fulfil(t, req.Handle)

	err = f.k.FinalizeRequest(f.ctx, bob, req.Handle)
	require.ErrorIs(t, err, types.ErrSlippageExceeded)

	after := f.request(t, req.Handle)
	require.Equal(t, types.RequestStatusFulfilled, after.Status)
	require.Equal(t, "100", f.bank.balance(f.k.EscrowAddress().String()).String())
	require.True(t, f.holder(t, bob).IsEmpty())
	require.False(t, f.k.GetStore(f.ctx).Has(InFlightKey))
	require.False(t, f.k.GetStore(f.ctx).Has(GuardKey))
}

func TestCrossDomainRedeemLocksShares(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	shares := f.seedCrossDomain(t, 1_000_000_000)
	half := shares.QuoRaw(2)

	req, err := f.k.CreateRequest(f.ctx, alice, types.ActionRedeem, types.ActionPayload{
		Receiver: carol,
		Owner:    alice,
		Shares:   half,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, half.String(), req.LockedShares.String())
	require.Equal(t, half.String(), f.holder(t, alice).Locked.String())

	err = f.k.Transfer(f.ctx, alice, bob, shares)
	require.ErrorIs(t, err, types.ErrSharesLocked)

	f.fulfil(t, req.Handle, math.ZeroInt())
	require.NoError(t, f.k.FinalizeRequest(f.ctx, coord, req.Handle))

	h := f.holder(t, alice)
	require.Equal(t, half.String(), h.Balance.String())
	require.True(t, h.Locked.IsZero())
	require.Equal(t, "500000000", f.bank.balance(carol).String())
	f.requireSupplyConsistent(t)
}

func TestCrossDomainWithdrawForOwnerNeedsAllowance(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	f.seedCrossDomain(t, 1_000_000_000)

	payload := types.ActionPayload{Receiver: bob, Owner: alice, Assets: math.NewInt(100_000_000)}
	_, err := f.k.CreateRequest(f.ctx, bob, types.ActionWithdraw, payload, nil)
	require.ErrorIs(t, err, types.ErrInsufficientAllowance)

	allowance := math.NewInt(200_000_000_000_000)
	require.NoError(t, f.k.Approve(f.ctx, alice, bob, allowance))
	req, err := f.k.CreateRequest(f.ctx, bob, types.ActionWithdraw, payload, nil)
	require.NoError(t, err)
	require.Equal(t, "100000000000000", req.LockedShares.String())
	require.Equal(t, "100000000000000", f.k.Allowance(f.ctx, alice, bob).String())

	// stale requests can be unwound once the grace window has passed
	require.ErrorIs(t, f.k.RecoverRequest(f.ctx, authority, req.Handle), types.ErrInvalidRequestState)
	f.advance(2 * time.Hour)
	require.NoError(t, f.k.RecoverRequest(f.ctx, authority, req.Handle))

	require.Equal(t, types.RequestStatusRecovered, f.request(t, req.Handle).Status)
	require.True(t, f.holder(t, alice).Locked.IsZero())
	require.Equal(t, allowance.String(), f.k.Allowance(f.ctx, alice, bob).String())
}

func TestCrossDomainGraceWindowExpiry(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	req := f.createDeposit(t, alice, 1_000_000_000)
	f.fulfil(t, req.Handle)

	f.advance(61 * time.Minute)
	require.ErrorIs(t, f.k.FinalizeRequest(f.ctx, alice, req.Handle), types.ErrGraceWindowExpired)

	report, err := f.k.EndBlocker(f.ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Expired)
	require.Equal(t, types.RequestStatusExpired, f.request(t, req.Handle).Status)
	require.ErrorIs(t, f.k.FinalizeRequest(f.ctx, alice, req.Handle), types.ErrGraceWindowExpired)

	require.ErrorIs(t, f.k.RecoverRequest(f.ctx, bob, req.Handle), types.ErrUnauthorized)
	require.NoError(t, f.k.RecoverRequest(f.ctx, authority, req.Handle))
	require.Equal(t, "1000000000", f.bank.balance(alice).String())
	require.ErrorIs(t, f.k.RecoverRequest(f.ctx, authority, req.Handle), types.ErrInvalidRequestState)
}

func TestCrossDomainInFlightSnapshot(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	f.seedCrossDomain(t, 1_000_000_000)
	req := f.createDeposit(t, bob, 1_000_000)
	f.fulfil(t, req.Handle, usd(3000))

	store := f.k.GetStore(f.ctx)
	store.Set(InFlightKey, []byte(req.Handle))
	assets, err := f.k.TotalAssets(f.ctx)
	require.NoError(t, err)
	require.Equal(t, "4000000000", assets.String())

	other := f.createDeposit(t, carol, 1_000_000)
	f.fulfil(t, other.Handle)
	require.ErrorIs(t, f.k.FinalizeRequest(f.ctx, carol, other.Handle), types.ErrFinalizeInFlight)

	store.Delete(InFlightKey)
	require.NoError(t, f.k.FinalizeRequest(f.ctx, carol, other.Handle))
}

func TestCrossDomainReplyOverflow(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	req := f.createDeposit(t, alice, 1_000_000)

	err := f.k.Reply(f.ctx, coord, req.Handle, []math.Int{maxUint256(), maxUint256()}, true)
	require.ErrorIs(t, err, types.ErrArithmeticOverflow)
	require.Equal(t, types.RequestStatusCreated, f.request(t, req.Handle).Status)
}

func TestCrossDomainMessagingFee(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	f.msgr.fee = sdk.NewCoins(sdk.NewInt64Coin("uatom", 250))
	f.bank.fund(alice, 1_000_000, usdc)

	_, err := f.k.CreateRequest(f.ctx, alice, types.ActionDeposit, types.ActionPayload{Receiver: alice, Assets: math.NewInt(1_000_000)}, nil)
	require.Error(t, err)

	f.bank.fund(alice, 250, "uatom")
	req, err := f.k.CreateRequest(f.ctx, alice, types.ActionDeposit, types.ActionPayload{Receiver: alice, Assets: math.NewInt(1_000_000)}, []byte("gas=300000"))
	require.NoError(t, err)
	require.Equal(t, int64(250), f.bank.balances[moduleAddr(authtypes.FeeCollectorName)].AmountOf("uatom").Int64())

	sent := f.msgr.Sent()
	require.Equal(t, req.Handle, sent[len(sent)-1].Handle)
	require.Equal(t, []byte("gas=300000"), sent[len(sent)-1].Options)
}

func TestCrossDomainFeeUpdate(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	f.seedCrossDomain(t, 1_000_000_000)
	f.bank.yield(100_000_000)
	bps := uint32(1000)
	payload := types.ActionPayload{PerformanceFeeBps: &bps}

	_, err := f.k.CreateRequest(f.ctx, alice, types.ActionFeeUpdate, payload, nil)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	req, err := f.k.CreateRequest(f.ctx, authority, types.ActionFeeUpdate, payload, nil)
	require.NoError(t, err)
	f.fulfil(t, req.Handle)
	require.NoError(t, f.k.FinalizeRequest(f.ctx, coord, req.Handle))
	require.Equal(t, uint32(1000), f.k.GetParams(f.ctx).PerformanceFeeBps)

	// the gain before the update was settled at the old 20% rate
	value, err := f.k.PreviewRedeem(f.ctx, f.holder(t, treasury).Balance)
	require.NoError(t, err)
	require.True(t, value.GT(math.NewInt(19_500_000)), "fee shares worth %s", value)
	require.Equal(t, f.price(t).String(), f.holder(t, alice).Mark.String())
}

func TestCrossDomainRejectsBadPayload(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)

	_, err := f.k.CreateRequest(f.ctx, alice, types.ActionDeposit, types.ActionPayload{Receiver: alice}, nil)
	require.ErrorIs(t, err, types.ErrZeroAmount)

	_, err = f.k.CreateRequest(f.ctx, alice, types.ActionRedeem, types.ActionPayload{Receiver: alice, Shares: math.OneInt()}, nil)
	require.ErrorIs(t, err, types.ErrInvalidAction)

	_, err = f.k.CreateRequest(f.ctx, alice, types.ActionType("swap"), types.ActionPayload{}, nil)
	require.ErrorIs(t, err, types.ErrInvalidAction)
}
