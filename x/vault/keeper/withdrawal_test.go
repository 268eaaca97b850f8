package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/hwmvault/x/vault/types"
)

func TestWithdrawalQueueLifecycle(t *testing.T) {
	f := setupKeeper(t, withQueue, func(p *types.Params) { p.DefaultDepositCap = math.NewInt(20_000_000) })
	f.deposit(t, alice, 10_000_000)

	_, err := f.k.Withdraw(f.ctx, alice, alice, alice, math.NewInt(1_000_000))
	require.ErrorIs(t, err, types.ErrQueueEnabled)

	req, err := f.k.RequestWithdrawal(f.ctx, alice, alice, math.NewInt(4_000_000))
	require.NoError(t, err)
	require.Equal(t, "4000000000000", req.Shares.String())
	require.Equal(t, genesisTime.Add(24*time.Hour).Unix(), req.ExpiresAt)
	require.Equal(t, req.Shares.String(), f.holder(t, alice).Locked.String())

	_, err = f.k.RequestWithdrawal(f.ctx, alice, alice, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrRequestExists)

	// locked shares cannot leave
	err = f.k.Transfer(f.ctx, alice, bob, f.holder(t, alice).Balance)
	require.ErrorIs(t, err, types.ErrSharesLocked)

	f.advance(23 * time.Hour)
	_, err = f.k.FinalizeWithdrawal(f.ctx, alice, alice, carol)
	require.ErrorIs(t, err, types.ErrTimelockActive)

	f.advance(time.Hour)
	_, err = f.k.FinalizeWithdrawal(f.ctx, bob, alice, bob)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	payout, err := f.k.FinalizeWithdrawal(f.ctx, alice, alice, carol)
	require.NoError(t, err)
	require.Equal(t, "4000000", payout.Gross.String())
	require.Equal(t, "4000", payout.Fee.String())
	require.Equal(t, "3996000", payout.Net.String())
	require.Equal(t, "4000000000", payout.FeeShares.String())

	require.Equal(t, "3996000", f.bank.balance(carol).String())
	require.Equal(t, payout.FeeShares.String(), f.holder(t, treasury).Balance.String())
	h := f.holder(t, alice)
	require.Equal(t, "6000000000000", h.Balance.String())
	require.True(t, h.Locked.IsZero())

	// capacity is restored on the holder by the net amount
	_, remaining, _ := f.k.DepositCapacity(f.ctx, alice)
	require.Equal(t, "13996000", remaining.String())

	_, ok := f.k.GetWithdrawalRequest(f.ctx, alice)
	require.False(t, ok)
	f.requireSupplyConsistent(t)
}

func TestWithdrawalFeeStaysWithHolders(t *testing.T) {
	f := setupKeeper(t, withQueue, func(p *types.Params) { p.WithdrawalFeeBps = 100 })
	f.deposit(t, alice, 10_000_000)
	f.deposit(t, bob, 10_000_000)

	_, err := f.k.RequestWithdrawal(f.ctx, alice, alice, math.NewInt(10_000_000))
	require.NoError(t, err)
	f.advance(24 * time.Hour)

	bobBefore, err := f.k.PreviewRedeem(f.ctx, f.holder(t, bob).Balance)
	require.NoError(t, err)
	_, err = f.k.FinalizeWithdrawal(f.ctx, alice, alice, alice)
	require.NoError(t, err)
	bobAfter, err := f.k.PreviewRedeem(f.ctx, f.holder(t, bob).Balance)
	require.NoError(t, err)

	// the fee shares dilute, they do not steal: remaining holders keep their value
	require.True(t, bobAfter.GTE(bobBefore.SubRaw(1)), "before %s after %s", bobBefore, bobAfter)
	require.True(t, f.holder(t, treasury).Balance.IsPositive())
}

func TestRequestWithdrawalOnBehalf(t *testing.T) {
	f := setupKeeper(t, withQueue)
	f.deposit(t, alice, 5_000_000)

	_, err := f.k.RequestWithdrawal(f.ctx, bob, alice, math.NewInt(1_000_000))
	require.ErrorIs(t, err, types.ErrInsufficientAllowance)

	require.NoError(t, f.k.Approve(f.ctx, alice, bob, math.NewInt(2_000_000_000_000)))
	req, err := f.k.RequestWithdrawal(f.ctx, bob, alice, math.NewInt(1_000_000))
	require.NoError(t, err)
	require.Equal(t, bob, req.Requester)

	f.advance(24 * time.Hour)
	payout, err := f.k.FinalizeWithdrawal(f.ctx, bob, alice, bob)
	require.NoError(t, err)
	require.Equal(t, payout.Net.String(), f.bank.balance(bob).String())
}

func TestClearRequestUnlocksShares(t *testing.T) {
	f := setupKeeper(t, withQueue)
	f.deposit(t, alice, 5_000_000)

	_, err := f.k.RequestWithdrawal(f.ctx, alice, alice, math.NewInt(2_000_000))
	require.NoError(t, err)
	require.ErrorIs(t, f.k.ClearRequest(f.ctx, bob, alice), types.ErrUnauthorized)
	require.NoError(t, f.k.ClearRequest(f.ctx, alice, alice))

	require.True(t, f.holder(t, alice).Locked.IsZero())
	require.ErrorIs(t, f.k.ClearRequest(f.ctx, alice, alice), types.ErrRequestNotFound)

	// a fresh request is allowed once the old one is gone
	_, err = f.k.RequestWithdrawal(f.ctx, alice, alice, math.NewInt(1_000_000))
	require.NoError(t, err)
}

func TestRequestWithdrawalNeedsQueue(t *testing.T) {
	f := setupKeeper(t)
	f.deposit(t, alice, 5_000_000)

	_, err := f.k.RequestWithdrawal(f.ctx, alice, alice, math.NewInt(1_000_000))
	require.ErrorIs(t, err, types.ErrQueueDisabled)
}

func TestWithdrawalQueueOrdering(t *testing.T) {
	f := setupKeeper(t, withQueue, func(p *types.Params) { p.WithdrawalTimelock = time.Hour })
	for _, addr := range []string{alice, bob, carol} {
		f.deposit(t, addr, 3_000_000)
	}

	_, err := f.k.RequestWithdrawal(f.ctx, carol, carol, math.NewInt(1_000_000))
	require.NoError(t, err)
	f.advance(10 * time.Minute)
	_, err = f.k.RequestWithdrawal(f.ctx, alice, alice, math.NewInt(1_000_000))
	require.NoError(t, err)
	f.advance(10 * time.Minute)
	_, err = f.k.RequestWithdrawal(f.ctx, bob, bob, math.NewInt(1_000_000))
	require.NoError(t, err)

	var order []string
	for _, r := range f.k.PendingWithdrawals(f.ctx) {
		order = append(order, r.Holder)
	}
	require.Equal(t, []string{carol, alice, bob}, order)

	matured := f.k.MaturedWithdrawals(f.ctx, genesisTime.Add(65*time.Minute))
	require.Len(t, matured, 1)
	require.Equal(t, carol, matured[0].Holder)

	report, err := f.k.EndBlocker(f.ctx.WithBlockTime(genesisTime.Add(2 * time.Hour)))
	require.NoError(t, err)
	require.Equal(t, 3, report.Pending)
	require.Equal(t, 3, report.Matured)
}

// reentrantModule calls back into the keeper while being valued
type reentrantModule struct {
	k     *Keeper
	armed *bool
	got   *error
}

func (m reentrantModule) Name() string { return "reentrant" }

func (m reentrantModule) ValueOf(ctx sdk.Context) (types.Contribution, error) {
	if *m.armed {
		*m.armed = false
		_, *m.got = m.k.FinalizeWithdrawal(ctx, alice, alice, alice)
	}
	return types.Credit(math.ZeroInt()), nil
}

func TestFinalizeWithdrawalIsNonReentrant(t *testing.T) {
	f := setupKeeper(t, withQueue)
	armed := false
	var got error
	require.NoError(t, f.k.RegisterValuationModule(reentrantModule{k: f.k, armed: &armed, got: &got}))

	f.deposit(t, alice, 5_000_000)
	_, err := f.k.RequestWithdrawal(f.ctx, alice, alice, math.NewInt(1_000_000))
	require.NoError(t, err)
	f.advance(24 * time.Hour)

	armed = true
	_, err = f.k.FinalizeWithdrawal(f.ctx, alice, alice, alice)
	require.NoError(t, err)
	require.ErrorIs(t, got, types.ErrReentrant)

	// the guard is released afterwards
	require.False(t, f.k.GetStore(f.ctx).Has(GuardKey))
}

func TestPauseBlocksValueMovement(t *testing.T) {
	f := setupKeeper(t, withQueue)
	f.deposit(t, alice, 5_000_000)
	_, err := f.k.RequestWithdrawal(f.ctx, alice, alice, math.NewInt(1_000_000))
	require.NoError(t, err)
	f.advance(24 * time.Hour)

	require.ErrorIs(t, f.k.Pause(f.ctx, bob), types.ErrUnauthorized)
	require.NoError(t, f.k.Pause(f.ctx, authority))

	f.bank.fund(alice, 1_000_000, usdc)
	_, err = f.k.Deposit(f.ctx, alice, alice, math.NewInt(1_000_000))
	require.ErrorIs(t, err, types.ErrPaused)
	_, err = f.k.FinalizeWithdrawal(f.ctx, alice, alice, alice)
	require.ErrorIs(t, err, types.ErrPaused)
	require.ErrorIs(t, f.k.Transfer(f.ctx, alice, bob, math.OneInt()), types.ErrPaused)
	_, err = f.k.AccrueFees(f.ctx, alice)
	require.ErrorIs(t, err, types.ErrPaused)

	// an unsafe module keeps the pool paused
	require.NoError(t, f.k.FlagModule(f.ctx, authority, holdingsModuleName, true))
	require.ErrorIs(t, f.k.Unpause(f.ctx, authority), types.ErrUnsafeModule)
	require.NoError(t, f.k.FlagModule(f.ctx, authority, holdingsModuleName, false))
	require.NoError(t, f.k.Unpause(f.ctx, authority))
	require.ErrorIs(t, f.k.Unpause(f.ctx, authority), types.ErrNotPaused)

	_, err = f.k.FinalizeWithdrawal(f.ctx, alice, alice, alice)
	require.NoError(t, err)
}
