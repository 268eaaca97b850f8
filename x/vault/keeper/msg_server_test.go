package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/baseapp"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	gogoproto "github.com/cosmos/gogoproto/proto"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/hwmvault/x/vault/types"
)

func TestMsgServerShareLedger(t *testing.T) {
	f := setupKeeper(t)
	srv := NewMsgServerImpl(f.k)
	f.bank.fund(alice, 5_000_000, usdc)

	_, err := srv.Deposit(f.ctx, &types.MsgDeposit{Sender: alice, Receiver: alice, Assets: "abc"})
	require.ErrorIs(t, err, types.ErrZeroAmount)
	_, err = srv.Deposit(f.ctx, &types.MsgDeposit{Sender: alice, Receiver: alice, Assets: "0"})
	require.ErrorIs(t, err, types.ErrZeroAmount)

	dep, err := srv.Deposit(f.ctx, &types.MsgDeposit{Sender: alice, Receiver: alice, Assets: "2000000"})
	require.NoError(t, err)
	require.Equal(t, "2000000000000", dep.Shares)

	_, err = srv.Approve(f.ctx, &types.MsgApprove{Owner: alice, Spender: bob, Shares: "0"})
	require.NoError(t, err)
	_, err = srv.Transfer(f.ctx, &types.MsgTransfer{Sender: alice, Recipient: bob, Shares: "1000000000000"})
	require.NoError(t, err)

	red, err := srv.Redeem(f.ctx, &types.MsgRedeem{Sender: bob, Receiver: bob, Owner: bob, Shares: "1000000000000"})
	require.NoError(t, err)
	require.Equal(t, "1000000", red.Assets)
	require.Equal(t, "1000000", f.bank.balance(bob).String())
}

func TestMsgServerWithdrawalQueue(t *testing.T) {
	f := setupKeeper(t, withQueue)
	srv := NewMsgServerImpl(f.k)
	f.deposit(t, alice, 10_000_000)

	res, err := srv.RequestWithdrawal(f.ctx, &types.MsgRequestWithdrawal{Sender: alice, Holder: alice, Assets: "1000000"})
	require.NoError(t, err)
	require.Equal(t, "1000000000000", res.Shares)

	_, err = srv.ClearWithdrawal(f.ctx, &types.MsgClearWithdrawal{Holder: alice})
	require.NoError(t, err)
	_, err = srv.RequestWithdrawal(f.ctx, &types.MsgRequestWithdrawal{Sender: alice, Holder: alice, Assets: "1000000"})
	require.NoError(t, err)

	f.advance(24 * time.Hour)
	out, err := srv.FinalizeWithdrawal(f.ctx, &types.MsgFinalizeWithdrawal{Sender: alice, Holder: alice, Receiver: alice})
	require.NoError(t, err)
	require.Equal(t, "1000000", out.Gross)
	require.Equal(t, "1000", out.Fee)
	require.Equal(t, "999000", out.Net)
}

func TestMsgServerCrossDomain(t *testing.T) {
	f := setupKeeper(t, withCrossDomain)
	srv := NewMsgServerImpl(f.k)
	f.bank.fund(alice, 1_000_000, usdc)

	_, err := srv.CreateCrossDomainRequest(f.ctx, &types.MsgCreateCrossDomainRequest{Initiator: alice, Action: "borrow"})
	require.ErrorIs(t, err, types.ErrInvalidAction)

	created, err := srv.CreateCrossDomainRequest(f.ctx, &types.MsgCreateCrossDomainRequest{
		Initiator: alice,
		Action:    string(types.ActionDeposit),
		Payload:   types.ActionPayload{Receiver: alice, Assets: math.NewInt(1_000_000)},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.Handle)

	_, err = srv.ReplyCrossDomain(f.ctx, &types.MsgReplyCrossDomain{Coordinator: coord, Handle: created.Handle, RemoteValues: []string{"x"}, Success: true})
	require.ErrorIs(t, err, types.ErrInvalidRequestState)
	_, err = srv.ReplyCrossDomain(f.ctx, &types.MsgReplyCrossDomain{Coordinator: coord, Handle: created.Handle, RemoteValues: []string{"0"}, Success: true})
	require.NoError(t, err)

	_, err = srv.FinalizeCrossDomain(f.ctx, &types.MsgFinalizeCrossDomain{Sender: alice, Handle: created.Handle})
	require.NoError(t, err)
	require.Equal(t, "1000000000000", f.holder(t, alice).Balance.String())
}

func TestMsgServerGovernance(t *testing.T) {
	f := setupKeeper(t)
	srv := NewMsgServerImpl(f.k)

	_, err := srv.SetDepositCap(f.ctx, &types.MsgSetDepositCap{Authority: authority, Holder: alice, Cap: "-1"})
	require.Error(t, err)
	_, err = srv.SetDepositCap(f.ctx, &types.MsgSetDepositCap{Authority: authority, Holder: alice, Cap: "0"})
	require.NoError(t, err)

	_, err = srv.Pause(f.ctx, &types.MsgPause{Authority: alice})
	require.ErrorIs(t, err, types.ErrUnauthorized)
	_, err = srv.Pause(f.ctx, &types.MsgPause{Authority: authority})
	require.NoError(t, err)
	_, err = srv.FlagModule(f.ctx, &types.MsgFlagModule{Authority: authority, Module: holdingsModuleName, Unsafe: true})
	require.NoError(t, err)
	_, err = srv.Unpause(f.ctx, &types.MsgUnpause{Authority: authority})
	require.ErrorIs(t, err, types.ErrUnsafeModule)

	params := f.k.GetParams(f.ctx)
	params.WithdrawalFeeBps = 25
	_, err = srv.UpdateParams(f.ctx, &types.MsgUpdateParams{Authority: authority, Params: params})
	require.NoError(t, err)
	require.Equal(t, uint32(25), f.k.GetParams(f.ctx).WithdrawalFeeBps)
}

func TestMsgServiceRouterDispatchesVaultMsgs(t *testing.T) {
	f := setupKeeper(t)
	f.bank.fund(alice, 5_000_000, usdc)

	registry := codectypes.NewInterfaceRegistry()
	types.RegisterInterfaces(registry)
	router := baseapp.NewMsgServiceRouter()
	router.SetInterfaceRegistry(registry)
	require.NotPanics(t, func() { types.RegisterMsgServer(router, NewMsgServerImpl(f.k)) })

	for _, msg := range []sdk.Msg{
		&types.MsgDeposit{}, &types.MsgMint{}, &types.MsgMultiAssetDeposit{}, &types.MsgWithdraw{},
		&types.MsgRedeem{}, &types.MsgTransfer{}, &types.MsgTransferFrom{}, &types.MsgApprove{},
		&types.MsgAccrue{}, &types.MsgRequestWithdrawal{}, &types.MsgFinalizeWithdrawal{},
		&types.MsgClearWithdrawal{}, &types.MsgSetDepositCap{}, &types.MsgCreateCrossDomainRequest{},
		&types.MsgReplyCrossDomain{}, &types.MsgFinalizeCrossDomain{}, &types.MsgRecoverCrossDomain{},
		&types.MsgUpdateParams{}, &types.MsgPause{}, &types.MsgUnpause{}, &types.MsgFlagModule{},
	} {
		require.NotNil(t, router.Handler(msg), sdk.MsgTypeURL(msg))
	}

	deposit := router.Handler(&types.MsgDeposit{})
	_, err := deposit(f.ctx, &types.MsgDeposit{Sender: alice, Receiver: alice, Assets: "0"})
	require.ErrorIs(t, err, types.ErrZeroAmount)

	res, err := deposit(f.ctx, &types.MsgDeposit{Sender: alice, Receiver: alice, Assets: "2000000"})
	require.NoError(t, err)
	require.Len(t, res.MsgResponses, 1)
	require.Equal(t, "/hwmvault.vault.v1.MsgDepositResponse", res.MsgResponses[0].TypeUrl)
	var out types.MsgDepositResponse
	require.NoError(t, gogoproto.Unmarshal(res.MsgResponses[0].Value, &out))
	require.Equal(t, "2000000000000", out.Shares)
	require.Equal(t, "2000000000000", f.holder(t, alice).Balance.String())

	pause := router.Handler(&types.MsgPause{})
	_, err = pause(f.ctx, &types.MsgPause{Authority: alice})
	require.ErrorIs(t, err, types.ErrUnauthorized)
	_, err = pause(f.ctx, &types.MsgPause{Authority: authority})
	require.NoError(t, err)
	require.True(t, f.k.IsPaused(f.ctx))
}
