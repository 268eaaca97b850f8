package keeper

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

const holdingsModuleName = "supported_assets"

// holdingsModule values the pool account's non-base supported assets in base
// units. Base-denom balance is the aggregation's base value, not part of this.
type holdingsModule struct {
	k *Keeper
}

func newHoldingsModule(k *Keeper) ValuationModule {
	return holdingsModule{k: k}
}

func (m holdingsModule) Name() string { return holdingsModuleName }

func (m holdingsModule) ValueOf(ctx sdk.Context) (types.Contribution, error) {
	params := m.k.GetParams(ctx)
	total := math.ZeroInt()
	for _, asset := range params.SupportedAssets {
		bal := m.k.bankKeeper.GetBalance(ctx, m.k.ModuleAddress(), asset.Denom).Amount
		if bal.IsZero() {
			continue
		}
		v, err := m.k.valueInBase(ctx, params, asset, bal)
		if err != nil {
			return types.Contribution{}, err
		}
		total, err = total.SafeAdd(v)
		if err != nil {
			return types.Contribution{}, errors.Wrap(types.ErrArithmeticOverflow, err.Error())
		}
	}
	return types.Credit(total), nil
}

// valueInBase converts amount of asset into base asset units using oracle prices
func (k *Keeper) valueInBase(ctx sdk.Context, params types.Params, asset types.SupportedAsset, amount math.Int) (math.Int, error) {
	if asset.Denom == params.Denom {
		return amount, nil
	}
	assetPrice, err := k.assetPrice(ctx, asset.Denom)
	if err != nil {
		return math.Int{}, err
	}
	basePrice, err := k.assetPrice(ctx, params.Denom)
	if err != nil {
		return math.Int{}, err
	}
	num := assetPrice.Mul(types.Pow10(params.AssetDecimals))
	den := basePrice.Mul(types.Pow10(asset.Decimals))
	return types.MulDiv(amount, num, den, types.RoundFloor)
}

func (k *Keeper) assetPrice(ctx sdk.Context, denom string) (math.Int, error) {
	if k.oracle == nil {
		return math.Int{}, errors.Wrap(types.ErrOracleUnavailable, "no oracle configured")
	}
	p, err := k.oracle.AssetPriceUSD(ctx, denom)
	if err != nil {
		return math.Int{}, errors.Wrapf(types.ErrOracleUnavailable, "%s: %s", denom, err)
	}
	if !p.IsPositive() {
		return math.Int{}, errors.Wrapf(types.ErrOracleUnavailable, "%s: price %s", denom, p)
	}
	return p, nil
}

// FixedPriceOracle quotes static prices. Denoms without an entry are priced
// at one dollar.
type FixedPriceOracle struct {
	Prices map[string]math.Int
}

// NewFixedPriceOracle creates an oracle with the given 18-decimal prices
func NewFixedPriceOracle(prices map[string]math.Int) *FixedPriceOracle {
	if prices == nil {
		prices = make(map[string]math.Int)
	}
	return &FixedPriceOracle{Prices: prices}
}

// AssetPriceUSD implements types.PriceOracle
func (o *FixedPriceOracle) AssetPriceUSD(_ sdk.Context, denom string) (math.Int, error) {
	if p, ok := o.Prices[denom]; ok {
		return p, nil
	}
	return types.Pow10(types.USDDecimals), nil
}
