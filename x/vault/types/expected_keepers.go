package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BankKeeper defines the expected interface for the bank module
type BankKeeper interface {
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// PriceOracle quotes 18-decimal USD prices for one whole unit of an asset
type PriceOracle interface {
	AssetPriceUSD(ctx sdk.Context, denom string) (math.Int, error)
}

// Contribution is a valuation module's signed value in base asset units
type Contribution struct {
	Amount     math.Int `json:"amount"`
	IsPositive bool     `json:"is_positive"`
}

// Credit returns a positive contribution
func Credit(amount math.Int) Contribution { return Contribution{Amount: amount, IsPositive: true} }

// Debt returns a negative contribution
func Debt(amount math.Int) Contribution { return Contribution{Amount: amount} }
