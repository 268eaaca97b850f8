package types

const (
	// ModuleName defines the module name
	ModuleName = "vault"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// EscrowModuleName holds assets committed to pending cross-domain requests.
	// It is a separate account so escrowed funds never count toward NAV.
	EscrowModuleName = "vault_escrow"
)

const (
	// BasisPoints is the denominator for all bps rates
	BasisPoints = 10000

	// MaxPerformanceFeeBps caps the performance fee at 50%
	MaxPerformanceFeeBps = 5000

	// USDDecimals is the fixed precision of remote values and oracle prices
	USDDecimals = 18
)
