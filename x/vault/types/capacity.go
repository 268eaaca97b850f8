package types

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// EnsureCap initializes the capacity ledger from defaultCap on first touch.
// A zero default leaves the ledger disabled for holders without an explicit cap.
func (h *Holder) EnsureCap(defaultCap math.Int) {
	if h.CapSet || !defaultCap.IsPositive() {
		return
	}
	h.CapSet = true
	h.CapInitial = defaultCap
	h.CapRemaining = defaultCap
}

// ConsumeCap charges a deposit of amount against the remaining capacity
func (h *Holder) ConsumeCap(amount math.Int) error {
	if !h.CapSet {
		return nil
	}
	if amount.GT(h.CapRemaining) {
		return errors.Wrapf(ErrDepositCapExceeded, "%s: remaining %s, deposit %s", h.Address, h.CapRemaining, amount)
	}
	h.CapRemaining = h.CapRemaining.Sub(amount)
	return nil
}

// RestoreCap returns capacity after a withdrawal, never above the initial cap
func (h *Holder) RestoreCap(amount math.Int) {
	if !h.CapSet {
		return
	}
	h.CapRemaining = math.MinInt(h.CapInitial, h.CapRemaining.Add(amount))
}

// SetCap changes the holder's cap. Increases raise remaining by the delta;
// decreases clamp remaining to the new cap.
func (h *Holder) SetCap(newCap math.Int) {
	if !h.CapSet {
		h.CapSet = true
		h.CapInitial = newCap
		h.CapRemaining = newCap
		return
	}
	if newCap.GT(h.CapInitial) {
		h.CapRemaining = h.CapRemaining.Add(newCap.Sub(h.CapInitial))
	} else {
		h.CapRemaining = math.MinInt(h.CapRemaining, newCap)
	}
	h.CapInitial = newCap
}
