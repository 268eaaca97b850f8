package types

import (
	"cosmossdk.io/errors"
)

// Module error codes
var (
	ErrZeroAmount            = errors.Register(ModuleName, 2, "amount must be positive")
	ErrLengthMismatch        = errors.Register(ModuleName, 3, "array length mismatch")
	ErrUnsupportedAsset      = errors.Register(ModuleName, 4, "unsupported asset")
	ErrUnauthorized          = errors.Register(ModuleName, 5, "unauthorized")
	ErrInsufficientAllowance = errors.Register(ModuleName, 6, "insufficient allowance")
	ErrInsufficientShares    = errors.Register(ModuleName, 7, "insufficient shares")
	ErrSharesLocked          = errors.Register(ModuleName, 8, "shares locked by pending request")
	ErrArithmeticOverflow    = errors.Register(ModuleName, 9, "arithmetic overflow")
	ErrValuationModuleFailed = errors.Register(ModuleName, 10, "valuation module failed")
	ErrModuleExists          = errors.Register(ModuleName, 11, "valuation module already registered")
	ErrModuleNotFound        = errors.Register(ModuleName, 12, "valuation module not found")
	ErrZeroNAV               = errors.Register(ModuleName, 13, "pool NAV is zero with outstanding shares")
	ErrCorruptHolder         = errors.Register(ModuleName, 14, "corrupt holder record")
	ErrDepositCapExceeded    = errors.Register(ModuleName, 15, "deposit capacity exceeded")
	ErrQueueDisabled         = errors.Register(ModuleName, 16, "withdrawal queue disabled")
	ErrQueueEnabled          = errors.Register(ModuleName, 17, "direct withdrawals disabled while queue is enabled")
	ErrRequestExists         = errors.Register(ModuleName, 18, "withdrawal request already exists")
	ErrRequestNotFound       = errors.Register(ModuleName, 19, "request not found")
	ErrTimelockActive        = errors.Register(ModuleName, 20, "withdrawal timelock has not expired")
	ErrCrossDomainRequired   = errors.Register(ModuleName, 21, "operation must go through the cross-domain coordinator")
	ErrCrossDomainDisabled   = errors.Register(ModuleName, 22, "cross-domain accounting not enabled")
	ErrRequestNotFulfilled   = errors.Register(ModuleName, 23, "cross-domain request not fulfilled")
	ErrAlreadyFinalized      = errors.Register(ModuleName, 24, "cross-domain request already finalized")
	ErrGraceWindowExpired    = errors.Register(ModuleName, 25, "cross-domain grace window expired")
	ErrFinalizeInFlight      = errors.Register(ModuleName, 26, "another finalize is in flight")
	ErrInvalidRequestState   = errors.Register(ModuleName, 27, "invalid cross-domain request state")
	ErrInvalidAction         = errors.Register(ModuleName, 28, "invalid cross-domain action")
	ErrPaused                = errors.Register(ModuleName, 29, "vault is paused")
	ErrNotPaused             = errors.Register(ModuleName, 30, "vault is not paused")
	ErrUnsafeModule          = errors.Register(ModuleName, 31, "a registered valuation module is flagged unsafe")
	ErrReentrant             = errors.Register(ModuleName, 32, "reentrant call")
	ErrInvalidParams         = errors.Register(ModuleName, 33, "invalid params")
	ErrOracleUnavailable     = errors.Register(ModuleName, 34, "price oracle unavailable")
	ErrSlippageExceeded      = errors.Register(ModuleName, 35, "amount outside caller bound")
)
