package types

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
)

func TestMsgValidateBasic(t *testing.T) {
	alice, bob := testAddr("alice"), testAddr("bob")

	testCases := []struct {
		name string
		msg  sdk.HasValidateBasic
		err  error
	}{
		{"deposit", MsgDeposit{Sender: alice, Receiver: alice, Assets: "10"}, nil},
		{"deposit zero", MsgDeposit{Sender: alice, Receiver: alice, Assets: "0"}, ErrZeroAmount},
		{"deposit bad sender", MsgDeposit{Sender: "alice", Receiver: alice, Assets: "10"}, ErrUnauthorized},
		{"approve zero revokes", MsgApprove{Owner: alice, Spender: bob, Shares: "0"}, nil},
		{"approve negative", MsgApprove{Owner: alice, Spender: bob, Shares: "-1"}, ErrZeroAmount},
		{"accrue", MsgAccrue{Sender: bob, Holder: alice}, nil},
		{"set cap", MsgSetDepositCap{Authority: alice, Holder: bob, Cap: "0"}, nil},
		{"set cap garbage", MsgSetDepositCap{Authority: alice, Holder: bob, Cap: "lots"}, ErrInvalidParams},
		{"create request", MsgCreateCrossDomainRequest{
			Initiator: alice,
			Action:    "deposit",
			Payload:   ActionPayload{Receiver: alice, Assets: math.NewInt(1)},
		}, nil},
		{"create request unknown action", MsgCreateCrossDomainRequest{Initiator: alice, Action: "swap"}, ErrInvalidAction},
		{"reply", MsgReplyCrossDomain{Coordinator: alice, Handle: "h", RemoteValues: []string{"0", "15"}}, nil},
		{"reply without handle", MsgReplyCrossDomain{Coordinator: alice}, ErrRequestNotFound},
		{"reply negative value", MsgReplyCrossDomain{Coordinator: alice, Handle: "h", RemoteValues: []string{"-3"}}, ErrInvalidRequestState},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.ValidateBasic()
			if tc.err == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestParsePositiveInt(t *testing.T) {
	v, err := ParsePositiveInt("assets", "42")
	require.NoError(t, err)
	require.Equal(t, int64(42), v.Int64())

	for _, s := range []string{"", "0", "-5", "1.5"} {
		_, err := ParsePositiveInt("assets", s)
		require.ErrorIs(t, err, ErrZeroAmount, s)
	}
}
