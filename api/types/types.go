package types

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by services for unknown holders, handles or routes
var ErrNotFound = errors.New("not found")

// ErrInvalidArgument is returned for malformed addresses or paging
var ErrInvalidArgument = errors.New("invalid argument")

// VaultResponse is the pool summary
type VaultResponse struct {
	Denom         string   `json:"denom"`
	TotalAssets   string   `json:"total_assets"`
	TotalSupply   string   `json:"total_supply"`
	PricePerShare string   `json:"price_per_share"`
	IdleBalance   string   `json:"idle_balance"`
	Positive      string   `json:"positive"`
	Debt          string   `json:"debt"`
	Healthy       bool     `json:"healthy"`
	FailedModules []string `json:"failed_modules,omitempty"`
	Modules       []string `json:"modules"`
	Paused        bool     `json:"paused"`
	QueueEnabled  bool     `json:"queue_enabled"`
	CrossDomain   bool     `json:"cross_domain"`

	PerformanceFeeBps uint32 `json:"performance_fee_bps"`
	WithdrawalFeeBps  uint32 `json:"withdrawal_fee_bps"`
	AssetDecimals     uint32 `json:"asset_decimals"`
	ShareDecimals     uint32 `json:"share_decimals"`
	Timestamp         int64  `json:"timestamp"`
}

// PriceResponse is the strict share price
type PriceResponse struct {
	PricePerShare string `json:"price_per_share"`
	AssetDecimals uint32 `json:"asset_decimals"`
	// Display is the price scaled to whole base asset units
	Display   string `json:"display"`
	Timestamp int64  `json:"timestamp"`
}

// WithdrawalResponse is a queued withdrawal
type WithdrawalResponse struct {
	Holder    string `json:"holder"`
	Requester string `json:"requester"`
	Shares    string `json:"shares"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
	Matured   bool   `json:"matured"`
}

// HolderResponse is a holder's position
type HolderResponse struct {
	Address      string              `json:"address"`
	Balance      string              `json:"balance"`
	Locked       string              `json:"locked"`
	Mark         string              `json:"mark"`
	Value        string              `json:"value"`
	CapSet       bool                `json:"cap_set"`
	CapRemaining string              `json:"cap_remaining,omitempty"`
	Withdrawal   *WithdrawalResponse `json:"withdrawal,omitempty"`
}

// WithdrawalsResponse is a page of the withdrawal queue
type WithdrawalsResponse struct {
	Withdrawals []WithdrawalResponse `json:"withdrawals"`
	Total       uint64               `json:"total"`
}

// RequestResponse is a cross-domain request
type RequestResponse struct {
	Handle        string `json:"handle"`
	Initiator     string `json:"initiator"`
	Action        string `json:"action"`
	Status        string `json:"status"`
	CreatedAt     int64  `json:"created_at"`
	FulfilledAt   int64  `json:"fulfilled_at,omitempty"`
	FinalizedAt   int64  `json:"finalized_at,omitempty"`
	LocalSnapshot string `json:"local_snapshot"`
	RemoteValue   string `json:"remote_value"`
	Escrow        string `json:"escrow,omitempty"`
	LockedShares  string `json:"locked_shares,omitempty"`
	// Recoverable is true once the grace window has passed without finalization
	Recoverable bool `json:"recoverable"`
}

// VaultService is the read side of the pool exposed over HTTP
type VaultService interface {
	Vault(ctx context.Context) (*VaultResponse, error)
	Price(ctx context.Context) (*PriceResponse, error)
	Holder(ctx context.Context, address string) (*HolderResponse, error)
	Withdrawals(ctx context.Context, offset, limit uint64) (*WithdrawalsResponse, error)
	Request(ctx context.Context, handle string) (*RequestResponse, error)
}

// NowMillis returns current timestamp in milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
