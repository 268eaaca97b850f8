package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/hwmvault/x/vault/types"
)

func TestAccrueChargesFeeOnGainOnly(t *testing.T) {
	f := setupKeeper(t)
	f.deposit(t, alice, 1_000_000_000)
	f.bank.yield(100_000_000)

	res, err := f.k.AccrueFees(f.ctx, alice)
	require.NoError(t, err)
	require.Equal(t, "1099999", res.Price.String())
	require.Equal(t, "1000000", res.OldMark.String())
	// 20% of a 99.999 USDC gain
	require.Equal(t, "19999800", res.Fee.String())
	require.Equal(t, res.Fee.String(), res.PoolFee.String())
	require.True(t, res.ProtocolShares.IsZero())

	treasuryHolder := f.holder(t, treasury)
	require.Equal(t, res.PoolShares.String(), treasuryHolder.Balance.String())
	value, err := f.k.PreviewRedeem(f.ctx, treasuryHolder.Balance)
	require.NoError(t, err)
	// shares are issued at the pre-mint price, so dilution trims their value
	require.True(t, value.GT(math.NewInt(19_500_000)) && value.LTE(res.Fee), "fee shares worth %s", value)

	// the mark lands on the post-dilution price
	h := f.holder(t, alice)
	require.Equal(t, f.price(t).String(), h.Mark.String())
	require.Equal(t, res.NewMark.String(), h.Mark.String())
	require.True(t, h.Mark.LT(res.Price))
	f.requireSupplyConsistent(t)
}

func TestAccrueNeverChargesTwice(t *testing.T) {
	f := setupKeeper(t)
	f.deposit(t, alice, 1_000_000_000)
	f.bank.yield(100_000_000)

	_, err := f.k.AccrueFees(f.ctx, alice)
	require.NoError(t, err)
	supply := f.k.GetTotalSupply(f.ctx)

	res, err := f.k.AccrueFees(f.ctx, alice)
	require.NoError(t, err)
	require.True(t, res.Fee.IsZero())
	require.Equal(t, supply.String(), f.k.GetTotalSupply(f.ctx).String())
}

func TestNoFeeOnRecoveryFromLoss(t *testing.T) {
	f := setupKeeper(t)
	f.deposit(t, alice, 1_000_000_000)
	f.bank.yield(100_000_000)
	_, err := f.k.AccrueFees(f.ctx, alice)
	require.NoError(t, err)
	mark := f.holder(t, alice).Mark

	f.bank.loss(200_000_000)
	res, err := f.k.AccrueFees(f.ctx, alice)
	require.NoError(t, err)
	require.True(t, res.Fee.IsZero())
	require.Equal(t, mark.String(), f.holder(t, alice).Mark.String())

	// climbing back to the old high pays nothing
	f.bank.yield(200_000_000)
	res, err = f.k.AccrueFees(f.ctx, alice)
	require.NoError(t, err)
	require.True(t, res.Fee.IsZero())
	require.Equal(t, mark.String(), f.holder(t, alice).Mark.String())
}

func TestProtocolFeeSplit(t *testing.T) {
	f := setupKeeper(t, func(p *types.Params) {
		p.ProtocolFeeRecipient = protocol
		p.ProtocolFeeRateBps = 2500
	})
	f.deposit(t, alice, 1_000_000_000)
	f.bank.yield(100_000_000)

	res, err := f.k.AccrueFees(f.ctx, alice)
	require.NoError(t, err)
	require.Equal(t, "4999950", res.ProtocolFee.String())
	require.Equal(t, "14999850", res.PoolFee.String())
	require.Equal(t, res.ProtocolShares.String(), f.holder(t, protocol).Balance.String())
	require.Equal(t, res.PoolShares.String(), f.holder(t, treasury).Balance.String())
	f.requireSupplyConsistent(t)
}

func TestFeesWaivedWithoutRecipient(t *testing.T) {
	f := setupKeeper(t, func(p *types.Params) { p.FeeRecipient = "" })
	f.deposit(t, alice, 1_000_000_000)
	f.bank.yield(100_000_000)

	res, err := f.k.AccrueFees(f.ctx, alice)
	require.NoError(t, err)
	require.True(t, res.Fee.IsZero())
	require.Equal(t, res.Price.String(), f.holder(t, alice).Mark.String())
}

func TestDepositKeepsActiveMark(t *testing.T) {
	f := setupKeeper(t)
	f.deposit(t, alice, 1_000_000_000)
	f.bank.yield(100_000_000)

	// the top-up checkpoints the gain first, then leaves the mark alone
	f.deposit(t, alice, 500_000_000)
	h := f.holder(t, alice)
	require.True(t, f.holder(t, treasury).Balance.IsPositive())
	require.True(t, h.Mark.GT(math.NewInt(1_000_000)))

	f.bank.loss(300_000_000)
	markBefore := f.holder(t, alice).Mark
	f.deposit(t, alice, 100_000_000)
	require.Equal(t, markBefore.String(), f.holder(t, alice).Mark.String())
}

func TestTransferCarriesSenderMark(t *testing.T) {
	f := setupKeeper(t)
	shares := f.deposit(t, alice, 1_000_000_000)

	half := shares.QuoRaw(2)
	require.NoError(t, f.k.Transfer(f.ctx, alice, carol, half))

	c := f.holder(t, carol)
	require.Equal(t, half.String(), c.Balance.String())
	require.Equal(t, f.holder(t, alice).Mark.String(), c.Mark.String())
	f.requireSupplyConsistent(t)
}

func TestTransferBlendsMarksByWeight(t *testing.T) {
	f := setupKeeper(t)
	aliceShares := f.deposit(t, alice, 1_000_000_000)
	f.bank.yield(1_000_000_000)
	f.deposit(t, bob, 1_000_000_000)
	f.bank.loss(1_000_000_000)

	bobBefore := f.holder(t, bob)
	moved := aliceShares.QuoRaw(4)
	require.NoError(t, f.k.Transfer(f.ctx, alice, bob, moved))

	// alice was checkpointed before sending; bob was under water and kept the old mark
	aliceMark := f.holder(t, alice).Mark
	expected := types.WeightedMark(aliceMark, moved, bobBefore.Mark, bobBefore.Balance)
	b := f.holder(t, bob)
	require.Equal(t, expected.String(), b.Mark.String())
	require.True(t, b.Mark.LT(bobBefore.Mark))
	require.True(t, b.Mark.GT(aliceMark))
}

func TestTransferCannotDodgePerformanceFee(t *testing.T) {
	f := setupKeeper(t)
	shares := f.deposit(t, alice, 1_000_000_000)
	f.bank.yield(500_000_000)

	require.NoError(t, f.k.Transfer(f.ctx, alice, carol, shares))
	require.True(t, f.holder(t, treasury).Balance.IsPositive())
	require.True(t, f.holder(t, alice).IsEmpty())

	// carol starts from the checkpointed mark, so nothing more is due
	res, err := f.k.AccrueFees(f.ctx, carol)
	require.NoError(t, err)
	require.True(t, res.Fee.IsZero())
}

func TestTransferFromSpendsAllowance(t *testing.T) {
	f := setupKeeper(t)
	f.deposit(t, alice, 1_000_000)

	err := f.k.TransferFrom(f.ctx, bob, alice, carol, math.NewInt(10))
	require.ErrorIs(t, err, types.ErrInsufficientAllowance)

	require.NoError(t, f.k.Approve(f.ctx, alice, bob, math.NewInt(25)))
	require.NoError(t, f.k.TransferFrom(f.ctx, bob, alice, carol, math.NewInt(10)))
	require.Equal(t, "15", f.k.Allowance(f.ctx, alice, bob).String())
	require.Equal(t, "10", f.holder(t, carol).Balance.String())

	err = f.k.Transfer(f.ctx, carol, bob, math.NewInt(11))
	require.ErrorIs(t, err, types.ErrInsufficientShares)
}

func TestFeeSharesBlendIntoRecipientMark(t *testing.T) {
	f := setupKeeper(t)
	f.deposit(t, treasury, 1_000_000_000)
	f.deposit(t, alice, 1_000_000_000)
	f.bank.yield(200_000_000)

	before := f.holder(t, treasury)
	res, err := f.k.AccrueFees(f.ctx, alice)
	require.NoError(t, err)
	require.True(t, res.PoolShares.IsPositive())

	// fee shares arrive at the post-mint price and carry no gain
	after := f.holder(t, treasury)
	expected := types.WeightedMark(res.NewMark, res.PoolShares, before.Mark, before.Balance)
	require.Equal(t, expected.String(), after.Mark.String())
	require.True(t, after.Mark.GT(before.Mark))

	// the recipient's own checkpoint only charges the gain on its deposit
	params := f.k.GetParams(f.ctx)
	price := f.price(t)
	own, err := types.PerformanceFee(before.Balance, before.Mark, price, params.AssetDecimals, params.DecimalsOffset, params.PerformanceFeeBps)
	require.NoError(t, err)
	treasuryRes, err := f.k.AccrueFees(f.ctx, treasury)
	require.NoError(t, err)
	require.True(t, treasuryRes.Fee.GTE(own) && treasuryRes.Fee.LTE(own.AddRaw(1)), "fee %s, own gain fee %s", treasuryRes.Fee, own)
	f.requireSupplyConsistent(t)
}

func TestFeeRateChangeIsNotRetroactive(t *testing.T) {
	f := setupKeeper(t)
	f.deposit(t, alice, 1_000_000_000)
	f.bank.yield(100_000_000)

	// the gain made under 20% is settled at 20% before the rate doubles
	params := f.k.GetParams(f.ctx)
	params.PerformanceFeeBps = 4000
	require.NoError(t, f.k.UpdateParams(f.ctx, authority, params))
	treasuryValue, err := f.k.PreviewRedeem(f.ctx, f.holder(t, treasury).Balance)
	require.NoError(t, err)
	require.True(t, treasuryValue.GT(math.NewInt(19_500_000)) && treasuryValue.LTE(math.NewInt(19_999_800)), "fee shares worth %s", treasuryValue)
	require.Equal(t, f.price(t).String(), f.holder(t, alice).Mark.String())

	res, err := f.k.AccrueFees(f.ctx, alice)
	require.NoError(t, err)
	require.True(t, res.Fee.IsZero())

	// later gains pay the new rate
	f.bank.yield(100_000_000)
	h := f.holder(t, alice)
	res, err = f.k.AccrueFees(f.ctx, alice)
	require.NoError(t, err)
	expected, err := types.PerformanceFee(h.Balance, h.Mark, res.Price, params.AssetDecimals, params.DecimalsOffset, 4000)
	require.NoError(t, err)
	require.True(t, expected.IsPositive())
	require.Equal(t, expected.String(), res.Fee.String())

	// unrelated changes leave marks alone
	f.bank.yield(100_000_000)
	mark := f.holder(t, alice).Mark
	params.WithdrawalFeeBps = 20
	require.NoError(t, f.k.UpdateParams(f.ctx, authority, params))
	require.Equal(t, mark.String(), f.holder(t, alice).Mark.String())

	params.PerformanceFeeBps = types.MaxPerformanceFeeBps + 1
	require.ErrorIs(t, f.k.UpdateParams(f.ctx, authority, params), types.ErrInvalidParams)
	require.ErrorIs(t, f.k.UpdateParams(f.ctx, bob, types.DefaultParams()), types.ErrUnauthorized)
}
