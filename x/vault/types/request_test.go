package types

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestActionPayloadValidateFor(t *testing.T) {
	alice, bob := testAddr("alice"), testAddr("bob")
	bps := func(v uint32) *uint32 { return &v }

	testCases := []struct {
		name    string
		action  ActionType
		payload ActionPayload
		err     error
	}{
		{"deposit", ActionDeposit, ActionPayload{Receiver: alice, Assets: math.NewInt(5)}, nil},
		{"deposit without assets", ActionDeposit, ActionPayload{Receiver: alice}, ErrZeroAmount},
		{"deposit without receiver", ActionDeposit, ActionPayload{Assets: math.NewInt(5)}, ErrInvalidAction},
		{"mint", ActionMint, ActionPayload{Receiver: alice, Shares: math.NewInt(5), MaxAssets: math.NewInt(9)}, nil},
		{"mint without bound", ActionMint, ActionPayload{Receiver: alice, Shares: math.NewInt(5)}, ErrZeroAmount},
		{"multi-asset", ActionMultiAssetDeposit, ActionPayload{
			Receiver: alice, Denoms: []string{"uusdc", "uweth"}, Amounts: []math.Int{math.NewInt(1), math.NewInt(2)},
		}, nil},
		{"multi-asset mismatch", ActionMultiAssetDeposit, ActionPayload{
			Receiver: alice, Denoms: []string{"uusdc"}, Amounts: []math.Int{math.NewInt(1), math.NewInt(2)},
		}, ErrLengthMismatch},
		{"multi-asset empty", ActionMultiAssetDeposit, ActionPayload{Receiver: alice}, ErrZeroAmount},
		{"withdraw", ActionWithdraw, ActionPayload{Receiver: bob, Owner: alice, Assets: math.NewInt(5)}, nil},
		{"withdraw without owner", ActionWithdraw, ActionPayload{Receiver: bob, Assets: math.NewInt(5)}, ErrInvalidAction},
		{"redeem", ActionRedeem, ActionPayload{Receiver: bob, Owner: alice, Shares: math.NewInt(5)}, nil},
		{"redeem zero", ActionRedeem, ActionPayload{Receiver: bob, Owner: alice, Shares: math.ZeroInt()}, ErrZeroAmount},
		{"finalize withdrawal", ActionFinalizeWithdrawal, ActionPayload{Receiver: bob, Owner: alice}, nil},
		{"finalize withdrawal without owner", ActionFinalizeWithdrawal, ActionPayload{Receiver: bob}, ErrInvalidAction},
		{"fee update", ActionFeeUpdate, ActionPayload{WithdrawalFeeBps: bps(30)}, nil},
		{"empty fee update", ActionFeeUpdate, ActionPayload{}, ErrInvalidAction},
		{"fee update over max", ActionFeeUpdate, ActionPayload{PerformanceFeeBps: bps(MaxPerformanceFeeBps + 1)}, ErrInvalidParams},
		{"unknown", ActionType("borrow"), ActionPayload{}, ErrInvalidAction},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.payload.ValidateFor(tc.action)
			if tc.err == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestParseActionType(t *testing.T) {
	for _, s := range []string{"deposit", "multi_asset_deposit", "mint", "withdraw", "redeem", "fee_update", "finalize_withdrawal"} {
		a, err := ParseActionType(s)
		require.NoError(t, err)
		require.Equal(t, s, string(a))
	}
	_, err := ParseActionType("Deposit")
	require.ErrorIs(t, err, ErrInvalidAction)
}

func TestRequestGraceWindow(t *testing.T) {
	created := time.Unix(1_700_000_000, 0)
	req := CrossDomainRequest{
		CreatedAt:     created.Unix(),
		Status:        RequestStatusFulfilled,
		LocalSnapshot: math.NewInt(700),
		RemoteValue:   math.NewInt(300),
	}
	require.Equal(t, "1000", req.Snapshot().String())

	window := time.Hour
	require.True(t, req.WithinGrace(created.Add(window), window))
	require.False(t, req.WithinGrace(created.Add(window+time.Second), window))

	testCases := []struct {
		status      RequestStatus
		afterWindow bool
		recoverable bool
	}{
		{RequestStatusCreated, false, false},
		{RequestStatusCreated, true, true},
		{RequestStatusFulfilled, false, false},
		{RequestStatusFulfilled, true, true},
		{RequestStatusExpired, false, true},
		{RequestStatusFinalized, true, false},
		{RequestStatusRecovered, true, false},
	}
	for _, tc := range testCases {
		req.Status = tc.status
		now := created.Add(time.Minute)
		if tc.afterWindow {
			now = created.Add(2 * window)
		}
		require.Equal(t, tc.recoverable, req.Recoverable(now, window), "%s after=%t", tc.status, tc.afterWindow)
	}
}

func TestWithdrawalRequestMatured(t *testing.T) {
	w := WithdrawalRequest{ExpiresAt: 1_700_086_400}
	require.False(t, w.Matured(time.Unix(1_700_086_399, 0)))
	require.True(t, w.Matured(time.Unix(1_700_086_400, 0)))
}
