package types

import (
	"encoding/json"
	"fmt"
	"time"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// WithdrawalRequest is a holder's single live timelocked redemption
type WithdrawalRequest struct {
	Holder    string   `json:"holder"`
	Requester string   `json:"requester"`
	Shares    math.Int `json:"shares"`
	CreatedAt int64    `json:"created_at"`
	ExpiresAt int64    `json:"expires_at"`
}

// Matured reports whether the timelock has elapsed at now
func (r WithdrawalRequest) Matured(now time.Time) bool {
	return now.Unix() >= r.ExpiresAt
}

// RequestStatus is the lifecycle state of a cross-domain request
type RequestStatus string

const (
	RequestStatusCreated   RequestStatus = "created"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusFinalized RequestStatus = "finalized"
	RequestStatusExpired   RequestStatus = "expired"
	RequestStatusRecovered RequestStatus = "recovered"
)

// ActionType enumerates the operations a cross-domain request can defer
type ActionType string

const (
	ActionDeposit           ActionType = "deposit"
	ActionMultiAssetDeposit ActionType = "multi_asset_deposit"
	ActionMint              ActionType = "mint"
	ActionWithdraw          ActionType = "withdraw"
	ActionRedeem            ActionType = "redeem"
	ActionFeeUpdate         ActionType = "fee_update"

	// ActionFinalizeWithdrawal pays out Owner's queued withdrawal request
	ActionFinalizeWithdrawal ActionType = "finalize_withdrawal"
)

// ParseActionType validates s as an action type
func ParseActionType(s string) (ActionType, error) {
	switch a := ActionType(s); a {
	case ActionDeposit, ActionMultiAssetDeposit, ActionMint, ActionWithdraw, ActionRedeem, ActionFeeUpdate, ActionFinalizeWithdrawal:
		return a, nil
	}
	return "", errors.Wrapf(ErrInvalidAction, "unknown action %q", s)
}

// ActionPayload carries the arguments of the deferred action. Only the
// fields relevant to the action are set.
type ActionPayload struct {
	Receiver string `json:"receiver,omitempty"`
	Owner    string `json:"owner,omitempty"`

	Assets    math.Int `json:"assets,omitempty"`
	Shares    math.Int `json:"shares,omitempty"`
	MaxAssets math.Int `json:"max_assets,omitempty"`

	Denoms  []string   `json:"denoms,omitempty"`
	Amounts []math.Int `json:"amounts,omitempty"`

	PerformanceFeeBps *uint32 `json:"performance_fee_bps,omitempty"`
	WithdrawalFeeBps  *uint32 `json:"withdrawal_fee_bps,omitempty"`
}

// ValidateFor checks the payload has what action needs
func (p ActionPayload) ValidateFor(action ActionType) error {
	positive := func(name string, v math.Int) error {
		if v.IsNil() || !v.IsPositive() {
			return errors.Wrapf(ErrZeroAmount, "%s %s", action, name)
		}
		return nil
	}
	addr := func(name, v string) error {
		if _, err := sdk.AccAddressFromBech32(v); err != nil {
			return errors.Wrapf(ErrInvalidAction, "%s %s: %s", action, name, err)
		}
		return nil
	}

	switch action {
	case ActionDeposit:
		if err := addr("receiver", p.Receiver); err != nil {
			return err
		}
		return positive("assets", p.Assets)
	case ActionMultiAssetDeposit:
		if err := addr("receiver", p.Receiver); err != nil {
			return err
		}
		if len(p.Denoms) != len(p.Amounts) {
			return errors.Wrapf(ErrLengthMismatch, "%d denoms, %d amounts", len(p.Denoms), len(p.Amounts))
		}
		if len(p.Denoms) == 0 {
			return errors.Wrap(ErrZeroAmount, "no assets")
		}
		for i, a := range p.Amounts {
			if err := positive(p.Denoms[i], a); err != nil {
				return err
			}
		}
		return nil
	case ActionMint:
		if err := addr("receiver", p.Receiver); err != nil {
			return err
		}
		if err := positive("shares", p.Shares); err != nil {
			return err
		}
		return positive("max assets", p.MaxAssets)
	case ActionWithdraw, ActionRedeem:
		if err := addr("receiver", p.Receiver); err != nil {
			return err
		}
		if err := addr("owner", p.Owner); err != nil {
			return err
		}
		if action == ActionWithdraw {
			return positive("assets", p.Assets)
		}
		return positive("shares", p.Shares)
	case ActionFinalizeWithdrawal:
		if err := addr("receiver", p.Receiver); err != nil {
			return err
		}
		return addr("owner", p.Owner)
	case ActionFeeUpdate:
		if p.PerformanceFeeBps == nil && p.WithdrawalFeeBps == nil {
			return errors.Wrap(ErrInvalidAction, "fee update changes nothing")
		}
		if p.PerformanceFeeBps != nil && *p.PerformanceFeeBps > MaxPerformanceFeeBps {
			return errors.Wrapf(ErrInvalidParams, "performance fee %d bps", *p.PerformanceFeeBps)
		}
		if p.WithdrawalFeeBps != nil && *p.WithdrawalFeeBps > BasisPoints {
			return errors.Wrapf(ErrInvalidParams, "withdrawal fee %d bps", *p.WithdrawalFeeBps)
		}
		return nil
	}
	return errors.Wrapf(ErrInvalidAction, "unknown action %q", action)
}

// CrossDomainRequest is a deferred operation waiting on remote valuations.
// Status is the single source of truth for where it is in its lifecycle.
type CrossDomainRequest struct {
	Handle    string        `json:"handle"`
	Initiator string        `json:"initiator"`
	Action    ActionType    `json:"action"`
	Payload   ActionPayload `json:"payload"`
	CreatedAt int64         `json:"created_at"`
	Status    RequestStatus `json:"status"`

	LocalSnapshot math.Int `json:"local_snapshot"`
	RemoteValue   math.Int `json:"remote_value"`
	FulfilledAt   int64    `json:"fulfilled_at,omitempty"`
	FinalizedAt   int64    `json:"finalized_at,omitempty"`

	// Escrow is the asset amount held in the escrow account; LockedShares the
	// owner's shares reserved for withdraw-style actions.
	Escrow       sdk.Coins `json:"escrow,omitempty"`
	LockedShares math.Int  `json:"locked_shares"`
}

// Snapshot is the effective NAV used when the request is finalized
func (r CrossDomainRequest) Snapshot() math.Int {
	return r.LocalSnapshot.Add(r.RemoteValue)
}

// GraceDeadline is the last unix time at which the request may be finalized
func (r CrossDomainRequest) GraceDeadline(window time.Duration) int64 {
	return r.CreatedAt + int64(window/time.Second)
}

// WithinGrace reports whether now is inside the grace window
func (r CrossDomainRequest) WithinGrace(now time.Time, window time.Duration) bool {
	return now.Unix() <= r.GraceDeadline(window)
}

// Recoverable reports whether an administrator may unwind the request
func (r CrossDomainRequest) Recoverable(now time.Time, window time.Duration) bool {
	switch r.Status {
	case RequestStatusExpired:
		return true
	case RequestStatusCreated, RequestStatusFulfilled:
		return !r.WithinGrace(now, window)
	}
	return false
}

// RemoteValueQuery is the message sent to remote pool instances
type RemoteValueQuery struct {
	Pool      string     `json:"pool"`
	Nonce     uint64     `json:"nonce"`
	Initiator string     `json:"initiator"`
	Action    ActionType `json:"action"`
	CreatedAt int64      `json:"created_at"`
}

// Bytes returns the JSON encoding of the query
func (q RemoteValueQuery) Bytes() []byte {
	bz, _ := json.Marshal(q)
	return bz
}

// String implements fmt.Stringer
func (r CrossDomainRequest) String() string {
	return fmt.Sprintf("CrossDomainRequest{%s %s by %s, status=%s}", r.Handle, r.Action, r.Initiator, r.Status)
}
