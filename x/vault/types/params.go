package types

import (
	"fmt"
	"time"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Default parameter values
const (
	DefaultDenom                  = "uusdc"
	DefaultAssetDecimals          = uint32(6)
	DefaultDecimalsOffset         = uint32(6)
	DefaultPerformanceFeeBps      = uint32(2000)
	DefaultWithdrawalFeeBps       = uint32(10)
	DefaultWithdrawalTimelock     = 24 * time.Hour
	DefaultCrossDomainGraceWindow = time.Hour
	DefaultModuleGasBudget        = uint64(200_000)

	// MaxDecimalsOffset bounds the virtual share offset
	MaxDecimalsOffset = uint32(18)
)

// SupportedAsset is a non-base denom accepted by multi-asset deposits
type SupportedAsset struct {
	Denom    string `json:"denom"`
	Decimals uint32 `json:"decimals"`
}

// Params holds the pool configuration
type Params struct {
	Denom          string `json:"denom"`
	AssetDecimals  uint32 `json:"asset_decimals"`
	DecimalsOffset uint32 `json:"decimals_offset"`

	PerformanceFeeBps    uint32 `json:"performance_fee_bps"`
	FeeRecipient         string `json:"fee_recipient"`
	ProtocolFeeRecipient string `json:"protocol_fee_recipient,omitempty"`
	ProtocolFeeRateBps   uint32 `json:"protocol_fee_rate_bps"`

	TotalDepositCap   math.Int `json:"total_deposit_cap"`
	DefaultDepositCap math.Int `json:"default_deposit_cap"`

	WithdrawalFeeBps   uint32        `json:"withdrawal_fee_bps"`
	WithdrawalTimelock time.Duration `json:"withdrawal_timelock"`
	QueueEnabled       bool          `json:"queue_enabled"`

	RemoteDomains          []string      `json:"remote_domains,omitempty"`
	OracleOnlyRemote       bool          `json:"oracle_only_remote"`
	Coordinator            string        `json:"coordinator,omitempty"`
	CrossDomainGraceWindow time.Duration `json:"cross_domain_grace_window"`

	ModuleGasBudget uint64           `json:"module_gas_budget"`
	SupportedAssets []SupportedAsset `json:"supported_assets,omitempty"`
}

// DefaultParams returns default module parameters
func DefaultParams() Params {
	return Params{
		Denom:                  DefaultDenom,
		AssetDecimals:          DefaultAssetDecimals,
		DecimalsOffset:         DefaultDecimalsOffset,
		PerformanceFeeBps:      DefaultPerformanceFeeBps,
		TotalDepositCap:        math.ZeroInt(),
		DefaultDepositCap:      math.ZeroInt(),
		WithdrawalFeeBps:       DefaultWithdrawalFeeBps,
		WithdrawalTimelock:     DefaultWithdrawalTimelock,
		CrossDomainGraceWindow: DefaultCrossDomainGraceWindow,
		ModuleGasBudget:        DefaultModuleGasBudget,
	}
}

// FeesEnabled reports whether fee shares have somewhere to go. Without a
// recipient, performance fees are waived and withdrawal fees stay in the pool.
func (p Params) FeesEnabled() bool {
	return p.FeeRecipient != ""
}

// ShareDecimals is the precision of the share token
func (p Params) ShareDecimals() uint32 {
	return p.AssetDecimals + p.DecimalsOffset
}

// CrossDomainEnabled reports whether value-moving operations must be deferred
// through the coordinator
func (p Params) CrossDomainEnabled() bool {
	return len(p.RemoteDomains) > 0 && !p.OracleOnlyRemote
}

// Asset returns the supported asset entry for denom, including the base denom
func (p Params) Asset(denom string) (SupportedAsset, bool) {
	if denom == p.Denom {
		return SupportedAsset{Denom: p.Denom, Decimals: p.AssetDecimals}, true
	}
	for _, a := range p.SupportedAssets {
		if a.Denom == denom {
			return a, true
		}
	}
	return SupportedAsset{}, false
}

// Validate performs basic validation of params
func (p Params) Validate() error {
	if err := sdk.ValidateDenom(p.Denom); err != nil {
		return errors.Wrap(ErrInvalidParams, err.Error())
	}
	if p.DecimalsOffset > MaxDecimalsOffset {
		return errors.Wrapf(ErrInvalidParams, "decimals offset %d exceeds %d", p.DecimalsOffset, MaxDecimalsOffset)
	}
	if p.AssetDecimals > 36 {
		return errors.Wrapf(ErrInvalidParams, "asset decimals %d too large", p.AssetDecimals)
	}
	if p.PerformanceFeeBps > MaxPerformanceFeeBps {
		return errors.Wrapf(ErrInvalidParams, "performance fee %d bps exceeds %d", p.PerformanceFeeBps, MaxPerformanceFeeBps)
	}
	for name, v := range map[string]uint32{
		"protocol fee rate": p.ProtocolFeeRateBps,
		"withdrawal fee":    p.WithdrawalFeeBps,
	} {
		if v > BasisPoints {
			return errors.Wrapf(ErrInvalidParams, "%s %d bps exceeds %d", name, v, BasisPoints)
		}
	}
	if p.FeeRecipient != "" {
		if _, err := sdk.AccAddressFromBech32(p.FeeRecipient); err != nil {
			return errors.Wrapf(ErrInvalidParams, "fee recipient: %s", err)
		}
	}
	if p.ProtocolFeeRecipient != "" {
		if _, err := sdk.AccAddressFromBech32(p.ProtocolFeeRecipient); err != nil {
			return errors.Wrapf(ErrInvalidParams, "protocol fee recipient: %s", err)
		}
	}
	if p.TotalDepositCap.IsNil() || p.TotalDepositCap.IsNegative() {
		return errors.Wrap(ErrInvalidParams, "total deposit cap must be non-negative")
	}
	if p.DefaultDepositCap.IsNil() || p.DefaultDepositCap.IsNegative() {
		return errors.Wrap(ErrInvalidParams, "default deposit cap must be non-negative")
	}
	if p.WithdrawalTimelock < 0 || p.CrossDomainGraceWindow < 0 {
		return errors.Wrap(ErrInvalidParams, "durations must be non-negative")
	}
	if p.CrossDomainEnabled() {
		if _, err := sdk.AccAddressFromBech32(p.Coordinator); err != nil {
			return errors.Wrapf(ErrInvalidParams, "coordinator: %s", err)
		}
	}
	seen := map[string]bool{p.Denom: true}
	for _, a := range p.SupportedAssets {
		if err := sdk.ValidateDenom(a.Denom); err != nil {
			return errors.Wrap(ErrInvalidParams, err.Error())
		}
		if seen[a.Denom] {
			return errors.Wrapf(ErrInvalidParams, "duplicate supported asset %s", a.Denom)
		}
		seen[a.Denom] = true
	}
	return nil
}

// String implements fmt.Stringer
func (p Params) String() string {
	return fmt.Sprintf("Params{Denom: %s, PerformanceFeeBps: %d, WithdrawalFeeBps: %d, QueueEnabled: %t, RemoteDomains: %v}",
		p.Denom, p.PerformanceFeeBps, p.WithdrawalFeeBps, p.QueueEnabled, p.RemoteDomains)
}
