package types

import (
	"fmt"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// Holder is a share holder's record.
//
// A holder is either empty (Balance == 0, Mark == 0) or active (Balance > 0,
// Mark > 0). Fields are exported for JSON only; all mutation goes through the
// methods below so the two states stay the only reachable ones.
type Holder struct {
	Address string   `json:"address"`
	Balance math.Int `json:"balance"`
	Mark    math.Int `json:"mark"`
	Locked  math.Int `json:"locked"`

	CapSet       bool     `json:"cap_set"`
	CapInitial   math.Int `json:"cap_initial"`
	CapRemaining math.Int `json:"cap_remaining"`
}

// NewHolder returns an empty holder
func NewHolder(address string) *Holder {
	return &Holder{
		Address:      address,
		Balance:      math.ZeroInt(),
		Mark:         math.ZeroInt(),
		Locked:       math.ZeroInt(),
		CapInitial:   math.ZeroInt(),
		CapRemaining: math.ZeroInt(),
	}
}

// IsEmpty reports whether the holder owns no shares
func (h *Holder) IsEmpty() bool {
	return h.Balance.IsZero()
}

// Spendable returns shares not locked by a pending request
func (h *Holder) Spendable() math.Int {
	return h.Balance.Sub(h.Locked)
}

// Validate rejects records that violate the empty/active invariant
func (h *Holder) Validate() error {
	for name, v := range map[string]math.Int{
		"balance": h.Balance, "mark": h.Mark, "locked": h.Locked,
		"cap initial": h.CapInitial, "cap remaining": h.CapRemaining,
	} {
		if v.IsNil() || v.IsNegative() {
			return errors.Wrapf(ErrCorruptHolder, "%s: invalid %s", h.Address, name)
		}
	}
	if h.Balance.IsZero() != h.Mark.IsZero() {
		return errors.Wrapf(ErrCorruptHolder, "%s: balance %s with mark %s", h.Address, h.Balance, h.Mark)
	}
	if h.Locked.GT(h.Balance) {
		return errors.Wrapf(ErrCorruptHolder, "%s: locked %s exceeds balance %s", h.Address, h.Locked, h.Balance)
	}
	return nil
}

// Credit adds newly issued shares. An empty holder becomes active at price;
// an active holder keeps its mark.
func (h *Holder) Credit(shares, price math.Int) error {
	if !shares.IsPositive() {
		return errors.Wrapf(ErrZeroAmount, "credit %s", shares)
	}
	if h.IsEmpty() {
		if !price.IsPositive() {
			return errors.Wrapf(ErrCorruptHolder, "%s: activation at price %s", h.Address, price)
		}
		h.Mark = price
	}
	h.Balance = h.Balance.Add(shares)
	return nil
}

// Receive adds transferred shares, blending the sender's mark into this
// holder's mark by balance weight
func (h *Holder) Receive(shares, senderMark math.Int) error {
	if !shares.IsPositive() {
		return errors.Wrapf(ErrZeroAmount, "receive %s", shares)
	}
	if !senderMark.IsPositive() {
		return errors.Wrapf(ErrCorruptHolder, "%s: sender mark %s", h.Address, senderMark)
	}
	h.Mark = WeightedMark(senderMark, shares, h.Mark, h.Balance)
	h.Balance = h.Balance.Add(shares)
	return nil
}

// Debit removes spendable shares; the mark resets when the balance reaches zero
func (h *Holder) Debit(shares math.Int) error {
	if !shares.IsPositive() {
		return errors.Wrapf(ErrZeroAmount, "debit %s", shares)
	}
	if shares.GT(h.Spendable()) {
		if shares.LTE(h.Balance) {
			return errors.Wrapf(ErrSharesLocked, "%s: %s locked", h.Address, h.Locked)
		}
		return errors.Wrapf(ErrInsufficientShares, "%s: have %s, need %s", h.Address, h.Balance, shares)
	}
	h.Balance = h.Balance.Sub(shares)
	if h.Balance.IsZero() {
		h.Mark = math.ZeroInt()
	}
	return nil
}

// AdvanceMark raises the mark of an active holder to price. Lower prices are ignored.
func (h *Holder) AdvanceMark(price math.Int) {
	if h.IsEmpty() || price.LTE(h.Mark) {
		return
	}
	h.Mark = price
}

// Lock reserves spendable shares for a pending request
func (h *Holder) Lock(shares math.Int) error {
	if shares.GT(h.Spendable()) {
		return errors.Wrapf(ErrInsufficientShares, "%s: spendable %s, lock %s", h.Address, h.Spendable(), shares)
	}
	h.Locked = h.Locked.Add(shares)
	return nil
}

// Unlock releases previously locked shares
func (h *Holder) Unlock(shares math.Int) {
	h.Locked = h.Locked.Sub(shares)
	if h.Locked.IsNegative() {
		h.Locked = math.ZeroInt()
	}
}

// String implements fmt.Stringer
func (h *Holder) String() string {
	return fmt.Sprintf("Holder{%s balance=%s mark=%s locked=%s}", h.Address, h.Balance, h.Mark, h.Locked)
}
