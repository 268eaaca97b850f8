package api

import (
	"cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"github.com/openalpha/hwmvault/api/types"
)

// Re-export types for convenience
type (
	VaultResponse       = types.VaultResponse
	PriceResponse       = types.PriceResponse
	HolderResponse      = types.HolderResponse
	WithdrawalResponse  = types.WithdrawalResponse
	WithdrawalsResponse = types.WithdrawalsResponse
	RequestResponse     = types.RequestResponse
	VaultService        = types.VaultService
)

// nowMillis returns current timestamp in milliseconds
func nowMillis() int64 {
	return types.NowMillis()
}

// displayAmount renders a fixed-point integer in whole units
func displayAmount(v math.Int, decimals uint32) string {
	if v.IsNil() {
		return "0"
	}
	return decimal.NewFromBigInt(v.BigInt(), -int32(decimals)).String()
}

func intString(v math.Int) string {
	if v.IsNil() {
		return "0"
	}
	return v.String()
}
