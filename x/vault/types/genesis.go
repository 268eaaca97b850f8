package types

import (
	"encoding/json"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// Allowance is a spender's delegated share budget over an owner's balance
type Allowance struct {
	Owner   string   `json:"owner"`
	Spender string   `json:"spender"`
	Amount  math.Int `json:"amount"`
}

// GenesisState is the vault module's genesis state
type GenesisState struct {
	Params      Params               `json:"params"`
	Paused      bool                 `json:"paused"`
	Holders     []Holder             `json:"holders"`
	Allowances  []Allowance          `json:"allowances"`
	Withdrawals []WithdrawalRequest  `json:"withdrawals"`
	Requests    []CrossDomainRequest `json:"requests"`
	// UnsafeModules lists valuation modules flagged unsafe by governance
	UnsafeModules []string `json:"unsafe_modules"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{Params: DefaultParams()}
}

// TotalSupply sums holder balances
func (gs GenesisState) TotalSupply() math.Int {
	total := math.ZeroInt()
	for _, h := range gs.Holders {
		total = total.Add(h.Balance)
	}
	return total
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(gs.Holders))
	for i := range gs.Holders {
		h := gs.Holders[i]
		if seen[h.Address] {
			return errors.Wrapf(ErrCorruptHolder, "duplicate holder %s", h.Address)
		}
		seen[h.Address] = true
		if err := h.Validate(); err != nil {
			return err
		}
	}
	for _, w := range gs.Withdrawals {
		if w.Shares.IsNil() || !w.Shares.IsPositive() {
			return errors.Wrapf(ErrZeroAmount, "withdrawal for %s", w.Holder)
		}
	}
	handles := make(map[string]bool, len(gs.Requests))
	for _, r := range gs.Requests {
		if r.Handle == "" || handles[r.Handle] {
			return errors.Wrapf(ErrInvalidRequestState, "bad handle %q", r.Handle)
		}
		handles[r.Handle] = true
		if _, err := ParseActionType(string(r.Action)); err != nil {
			return err
		}
	}
	return nil
}

// MustMarshalGenesis encodes gs as JSON
func MustMarshalGenesis(gs *GenesisState) json.RawMessage {
	bz, err := json.Marshal(gs)
	if err != nil {
		panic(err)
	}
	return bz
}
