package keeper

import (
	"fmt"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/holiman/uint256"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// FailurePolicy selects how Aggregate treats a failing valuation module
type FailurePolicy int

const (
	// PolicyStrict aborts on the first failing module
	PolicyStrict FailurePolicy = iota
	// PolicyLenient counts a failing module as zero and reports Success=false
	PolicyLenient
)

// AggregationResult is the outcome of one aggregation pass
type AggregationResult struct {
	Total    math.Int
	Positive math.Int
	Debt     math.Int
	Success  bool
	Failed   []string
}

// Aggregate combines base with every registered module's contribution:
//
//	max(0, base + positives - debts)
//
// Both running sums are overflow-checked; an overflowing module is a failing
// module under either policy.
func (k *Keeper) Aggregate(ctx sdk.Context, base math.Int, policy FailurePolicy) (AggregationResult, error) {
	positive, overflow := uint256.FromBig(base.BigInt())
	if overflow || base.IsNegative() {
		return AggregationResult{}, errors.Wrapf(types.ErrArithmeticOverflow, "base value %s", base)
	}
	debt := new(uint256.Int)
	result := AggregationResult{Success: true}
	budget := k.GetParams(ctx).ModuleGasBudget

	fail := func(name string, err error) error {
		if policy == PolicyStrict {
			if errors.IsOf(err, types.ErrArithmeticOverflow) {
				return errors.Wrapf(err, "module %s", name)
			}
			return errors.Wrapf(types.ErrValuationModuleFailed, "%s: %s", name, err)
		}
		k.logger.Warn("valuation module failed", "module", name, "error", err)
		result.Success = false
		result.Failed = append(result.Failed, name)
		return nil
	}

	for _, m := range k.registry.Modules() {
		c, err := k.queryModule(ctx, m, budget)
		if err != nil {
			if err := fail(m.Name(), err); err != nil {
				return AggregationResult{}, err
			}
			continue
		}

		amount, of := uint256.FromBig(c.Amount.BigInt())
		acc := debt
		if c.IsPositive {
			acc = positive
		}
		if !of {
			_, of = new(uint256.Int).AddOverflow(acc, amount)
		}
		if of {
			err := errors.Wrapf(types.ErrArithmeticOverflow, "contribution %s", c.Amount)
			if err := fail(m.Name(), err); err != nil {
				return AggregationResult{}, err
			}
			continue
		}
		acc.Add(acc, amount)
	}

	result.Positive = math.NewIntFromBigInt(positive.ToBig())
	result.Debt = math.NewIntFromBigInt(debt.ToBig())
	if positive.Lt(debt) {
		result.Total = math.ZeroInt()
	} else {
		result.Total = math.NewIntFromBigInt(new(uint256.Int).Sub(positive, debt).ToBig())
	}
	return result, nil
}

// queryModule runs m under its own gas budget. Panics, including running out
// of gas, surface as errors; gas used is charged to the caller's meter.
func (k *Keeper) queryModule(ctx sdk.Context, m ValuationModule, budget uint64) (c types.Contribution, err error) {
	var meter storetypes.GasMeter = storetypes.NewInfiniteGasMeter()
	if budget > 0 {
		meter = storetypes.NewGasMeter(budget)
	}
	defer func() {
		if r := recover(); r != nil {
			if oog, ok := r.(storetypes.ErrorOutOfGas); ok {
				err = fmt.Errorf("gas budget %d exhausted: %s", budget, oog.Descriptor)
			} else {
				err = fmt.Errorf("panic: %v", r)
			}
		}
		ctx.GasMeter().ConsumeGas(meter.GasConsumedToLimit(), "vault valuation")
	}()

	c, err = m.ValueOf(ctx.WithGasMeter(meter))
	if err == nil && (c.Amount.IsNil() || c.Amount.IsNegative()) {
		err = fmt.Errorf("invalid amount %v", c.Amount)
	}
	return c, err
}

// IdleBalance returns the pool account's balance of the base asset
func (k *Keeper) IdleBalance(ctx sdk.Context) math.Int {
	denom := k.GetParams(ctx).Denom
	return k.bankKeeper.GetBalance(ctx, k.ModuleAddress(), denom).Amount
}

// LocalAssets aggregates the pool's local NAV strictly
func (k *Keeper) LocalAssets(ctx sdk.Context) (math.Int, error) {
	res, err := k.Aggregate(ctx, k.IdleBalance(ctx), PolicyStrict)
	if err != nil {
		return math.Int{}, err
	}
	return res.Total, nil
}

// TotalAssets is the NAV used for pricing. While a cross-domain finalize is
// in flight it is the request's frozen snapshot.
func (k *Keeper) TotalAssets(ctx sdk.Context) (math.Int, error) {
	if req, ok := k.inFlightRequest(ctx); ok {
		return req.Snapshot(), nil
	}
	return k.LocalAssets(ctx)
}
