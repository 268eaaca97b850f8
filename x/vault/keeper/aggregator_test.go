package keeper

import (
	"errors"
	"math/big"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// staticModule reports a fixed contribution or error
type staticModule struct {
	name string
	c    types.Contribution
	err  error
}

func (m staticModule) Name() string { return m.name }

func (m staticModule) ValueOf(sdk.Context) (types.Contribution, error) {
	return m.c, m.err
}

// panicModule panics when queried
type panicModule struct{ name string }

func (m panicModule) Name() string { return m.name }

func (m panicModule) ValueOf(sdk.Context) (types.Contribution, error) {
	panic("strategy exploded")
}

// greedyModule reads the store until it runs out of gas
type greedyModule struct{ k *Keeper }

func (m greedyModule) Name() string { return "greedy" }

func (m greedyModule) ValueOf(ctx sdk.Context) (types.Contribution, error) {
	for {
		m.k.GetParams(ctx)
	}
}

func maxUint256() math.Int {
	v := new(big.Int).Lsh(big.NewInt(1), 256)
	return math.NewIntFromBigInt(v.Sub(v, big.NewInt(1)))
}

func TestAggregateCombinesContributions(t *testing.T) {
	testCases := []struct {
		name     string
		base     int64
		modules  []types.Contribution
		total    int64
		positive int64
		debt     int64
	}{
		{
			name:     "base only",
			base:     500,
			total:    500,
			positive: 500,
		},
		{
			name:     "credits and debts",
			base:     1000,
			modules:  []types.Contribution{types.Credit(math.NewInt(300)), types.Debt(math.NewInt(200))},
			total:    1100,
			positive: 1300,
			debt:     200,
		},
		{
			name:     "debt exceeds value floors at zero",
			base:     100,
			modules:  []types.Contribution{types.Debt(math.NewInt(250))},
			total:    0,
			positive: 100,
			debt:     250,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupKeeper(t)
			for i, c := range tc.modules {
				require.NoError(t, f.k.RegisterValuationModule(staticModule{name: string(rune('a' + i)), c: c}))
			}

			res, err := f.k.Aggregate(f.ctx, math.NewInt(tc.base), PolicyStrict)
			require.NoError(t, err)
			require.True(t, res.Success)
			require.Equal(t, math.NewInt(tc.total).String(), res.Total.String())
			require.Equal(t, math.NewInt(tc.positive).String(), res.Positive.String())
			require.Equal(t, math.NewInt(tc.debt).String(), res.Debt.String())
		})
	}
}

func TestAggregateFailurePolicies(t *testing.T) {
	f := setupKeeper(t)
	require.NoError(t, f.k.RegisterValuationModule(staticModule{name: "good", c: types.Credit(math.NewInt(40))}))
	require.NoError(t, f.k.RegisterValuationModule(staticModule{name: "broken", err: errors.New("rpc down")}))
	require.NoError(t, f.k.RegisterValuationModule(panicModule{name: "panicky"}))

	_, err := f.k.Aggregate(f.ctx, math.NewInt(100), PolicyStrict)
	require.ErrorIs(t, err, types.ErrValuationModuleFailed)
	require.Contains(t, err.Error(), "broken")

	res, err := f.k.Aggregate(f.ctx, math.NewInt(100), PolicyLenient)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, []string{"broken", "panicky"}, res.Failed)
	require.Equal(t, "140", res.Total.String())
}

func TestAggregateOverflow(t *testing.T) {
	f := setupKeeper(t)
	require.NoError(t, f.k.RegisterValuationModule(staticModule{name: "whale", c: types.Credit(maxUint256())}))

	_, err := f.k.Aggregate(f.ctx, math.NewInt(1), PolicyStrict)
	require.ErrorIs(t, err, types.ErrArithmeticOverflow)
	require.Contains(t, err.Error(), "whale")

	res, err := f.k.Aggregate(f.ctx, math.NewInt(1), PolicyLenient)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, []string{"whale"}, res.Failed)
	require.Equal(t, "1", res.Total.String())
}

func TestAggregateModuleGasBudget(t *testing.T) {
	f := setupKeeper(t, func(p *types.Params) { p.ModuleGasBudget = 50_000 })
	require.NoError(t, f.k.RegisterValuationModule(greedyModule{k: f.k}))

	before := f.ctx.GasMeter().GasConsumed()
	res, err := f.k.Aggregate(f.ctx, math.NewInt(10), PolicyLenient)
	require.NoError(t, err)
	require.Equal(t, []string{"greedy"}, res.Failed)
	require.Equal(t, "10", res.Total.String())

	// the exhausted budget is charged to the caller
	require.GreaterOrEqual(t, f.ctx.GasMeter().GasConsumed()-before, uint64(50_000))

	_, err = f.k.Aggregate(f.ctx, math.NewInt(10), PolicyStrict)
	require.ErrorIs(t, err, types.ErrValuationModuleFailed)
	require.Contains(t, err.Error(), "gas budget")
}

func TestRegistryOrderAndRemoval(t *testing.T) {
	f := setupKeeper(t)
	for _, name := range []string{"lending", "perps", "staking"} {
		require.NoError(t, f.k.RegisterValuationModule(staticModule{name: name, c: types.Credit(math.OneInt())}))
	}
	require.ErrorIs(t, f.k.RegisterValuationModule(staticModule{name: "perps"}), types.ErrModuleExists)

	require.NoError(t, f.k.RemoveValuationModule("perps"))
	require.ErrorIs(t, f.k.RemoveValuationModule("perps"), types.ErrModuleNotFound)

	var names []string
	for _, m := range f.k.ValuationModules() {
		names = append(names, m.Name())
	}
	require.Equal(t, []string{holdingsModuleName, "lending", "staking"}, names)
}

func TestHoldingsModuleValuesSupportedAssets(t *testing.T) {
	f := setupKeeper(t, func(p *types.Params) {
		p.SupportedAssets = []types.SupportedAsset{{Denom: "uweth", Decimals: 18}}
	})
	f.oracle.Prices["uweth"] = usd(2000)

	// half an ether at $2000 is worth 1000 USDC
	f.bank.fund(f.k.ModuleAddress().String(), 500_000_000_000_000_000, "uweth")
	f.bank.yield(250_000_000)

	assets, err := f.k.TotalAssets(f.ctx)
	require.NoError(t, err)
	require.Equal(t, "1250000000", assets.String())
}

func TestEscrowIsNotCountedInNAV(t *testing.T) {
	f := setupKeeper(t)
	f.deposit(t, alice, 1_000_000)
	f.bank.fund(f.k.EscrowAddress().String(), 5_000_000, usdc)

	assets, err := f.k.TotalAssets(f.ctx)
	require.NoError(t, err)
	require.Equal(t, "1000000", assets.String())
}
