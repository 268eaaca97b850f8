package types

import (
	"math/big"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// Rounding selects the direction of integer division.
// Conversions always round against the caller.
type Rounding int

const (
	RoundFloor Rounding = iota
	RoundCeil
)

// Pow10 returns 10^n
func Pow10(n uint32) math.Int {
	return math.NewIntFromBigInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil))
}

// MulDiv computes x*y/denom with the requested rounding. The intermediate
// product is unbounded; only the result must fit in math.MaxBitLen bits.
func MulDiv(x, y, denom math.Int, rounding Rounding) (math.Int, error) {
	if denom.IsZero() {
		return math.Int{}, errors.Wrap(ErrArithmeticOverflow, "division by zero")
	}
	if x.IsNegative() || y.IsNegative() || denom.IsNegative() {
		return math.Int{}, errors.Wrap(ErrArithmeticOverflow, "negative operand")
	}
	num := new(big.Int).Mul(x.BigInt(), y.BigInt())
	q, r := new(big.Int).QuoRem(num, denom.BigInt(), new(big.Int))
	if rounding == RoundCeil && r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	if q.BitLen() > math.MaxBitLen {
		return math.Int{}, errors.Wrapf(ErrArithmeticOverflow, "mulDiv result has %d bits", q.BitLen())
	}
	return math.NewIntFromBigInt(q), nil
}

// ConvertToShares converts assets to shares:
//
//	assets * (supply + 10^offset) / (totalAssets + 1)
func ConvertToShares(assets, supply, totalAssets math.Int, offset uint32, rounding Rounding) (math.Int, error) {
	return MulDiv(assets, supply.Add(Pow10(offset)), totalAssets.AddRaw(1), rounding)
}

// ConvertToAssets converts shares to assets:
//
//	shares * (totalAssets + 1) / (supply + 10^offset)
func ConvertToAssets(shares, supply, totalAssets math.Int, offset uint32, rounding Rounding) (math.Int, error) {
	return MulDiv(shares, totalAssets.AddRaw(1), supply.Add(Pow10(offset)), rounding)
}

// PricePerShare is the asset value of one whole share (10^shareDecimals base units), floored
func PricePerShare(supply, totalAssets math.Int, assetDecimals, offset uint32) (math.Int, error) {
	return ConvertToAssets(Pow10(assetDecimals+offset), supply, totalAssets, offset, RoundFloor)
}

// WeightedMark returns the receiver's mark after sharesMoved arrive from a
// sender carrying senderMark. The receiver balance must be taken before the
// transfer is applied.
func WeightedMark(senderMark, sharesMoved, receiverMark, receiverBalanceBefore math.Int) math.Int {
	if receiverBalanceBefore.IsZero() {
		return senderMark
	}
	if sharesMoved.IsZero() {
		return receiverMark
	}
	num := new(big.Int).Mul(receiverBalanceBefore.BigInt(), receiverMark.BigInt())
	num.Add(num, new(big.Int).Mul(sharesMoved.BigInt(), senderMark.BigInt()))
	den := new(big.Int).Add(receiverBalanceBefore.BigInt(), sharesMoved.BigInt())
	// a weighted average never exceeds the larger mark, so it always fits
	return math.NewIntFromBigInt(num.Quo(num, den))
}

// PerformanceFee returns the fee owed on balance shares that appreciated from
// mark to current. Zero when current <= mark.
func PerformanceFee(balance, mark, current math.Int, assetDecimals, offset, feeBps uint32) (math.Int, error) {
	if current.LTE(mark) || feeBps == 0 {
		return math.ZeroInt(), nil
	}
	profit, err := MulDiv(balance, current.Sub(mark), Pow10(assetDecimals+offset), RoundFloor)
	if err != nil {
		return math.Int{}, err
	}
	return MulDiv(profit, math.NewInt(int64(feeBps)), math.NewInt(BasisPoints), RoundFloor)
}

// SplitFee divides fee between the protocol (by protocolBps of the fee) and the pool recipient
func SplitFee(fee math.Int, protocolBps uint32, hasProtocol bool) (protocol, pool math.Int) {
	if !hasProtocol || protocolBps == 0 {
		return math.ZeroInt(), fee
	}
	protocol = fee.MulRaw(int64(protocolBps)).QuoRaw(BasisPoints)
	return protocol, fee.Sub(protocol)
}

// USDToAssets converts an 18-decimal USD value to asset base units given the
// 18-decimal USD price of one whole asset
func USDToAssets(usd, assetPriceUSD math.Int, assetDecimals uint32) (math.Int, error) {
	if !assetPriceUSD.IsPositive() {
		return math.Int{}, errors.Wrap(ErrOracleUnavailable, "non-positive asset price")
	}
	return MulDiv(usd, Pow10(assetDecimals), assetPriceUSD, RoundFloor)
}
