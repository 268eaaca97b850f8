package types

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"cosmossdk.io/x/tx/signing"
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/codec/address"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	gogoproto "github.com/cosmos/gogoproto/proto"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
)

func newSigningCodec(t *testing.T) *codec.ProtoCodec {
	t.Helper()
	cfg := sdk.GetConfig()
	registry, err := codectypes.NewInterfaceRegistryWithOptions(codectypes.InterfaceRegistryOptions{
		ProtoFiles: gogoproto.HybridResolver,
		SigningOptions: signing.Options{
			AddressCodec:          address.NewBech32Codec(cfg.GetBech32AccountAddrPrefix()),
			ValidatorAddressCodec: address.NewBech32Codec(cfg.GetBech32ValidatorAddrPrefix()),
		},
	})
	require.NoError(t, err)
	RegisterInterfaces(registry)
	return codec.NewProtoCodec(registry)
}

func TestMsgServiceDescriptorIsRegistered(t *testing.T) {
	require.NotEmpty(t, gogoproto.FileDescriptor(TxProtoFile))

	for _, m := range msgMethods {
		desc, err := gogoproto.HybridResolver.FindDescriptorByName(protoreflect.FullName(MsgServiceName + "." + m.name))
		require.NoError(t, err, m.name)
		require.NotNil(t, desc)
		require.NotNil(t, gogoproto.MessageType(gogoproto.MessageName(m.request)), m.name)
		require.NotNil(t, gogoproto.MessageType(gogoproto.MessageName(m.response)), m.name)
	}
	require.Len(t, msgServiceDesc.Methods, len(msgMethods))
}

func TestMsgWireEncoding(t *testing.T) {
	cdc := newSigningCodec(t)
	alice := testAddr("alice")
	fee := uint32(1500)

	create := &MsgCreateCrossDomainRequest{
		Initiator: alice,
		Action:    string(ActionFeeUpdate),
		Payload:   ActionPayload{PerformanceFeeBps: &fee},
		Options:   []byte{1, 2},
	}
	bz, err := cdc.MarshalInterface(create)
	require.NoError(t, err)
	var got sdk.Msg
	require.NoError(t, cdc.UnmarshalInterface(bz, &got))
	out, ok := got.(*MsgCreateCrossDomainRequest)
	require.True(t, ok)
	require.Equal(t, alice, out.Initiator)
	require.Equal(t, string(ActionFeeUpdate), out.Action)
	require.NotNil(t, out.Payload.PerformanceFeeBps)
	require.Equal(t, fee, *out.Payload.PerformanceFeeBps)
	require.Equal(t, []byte{1, 2}, out.Options)

	params := DefaultParams()
	params.FeeRecipient = alice
	params.WithdrawalTimelock = 36 * time.Hour
	params.TotalDepositCap = math.NewInt(1_000_000)
	bz, err = cdc.MarshalInterface(&MsgUpdateParams{Authority: alice, Params: params})
	require.NoError(t, err)
	require.NoError(t, cdc.UnmarshalInterface(bz, &got))
	update, ok := got.(*MsgUpdateParams)
	require.True(t, ok)
	require.Equal(t, alice, update.Params.FeeRecipient)
	require.Equal(t, 36*time.Hour, update.Params.WithdrawalTimelock)
	require.Equal(t, "1000000", update.Params.TotalDepositCap.String())

	bz, err = cdc.MarshalInterface(&MsgReplyCrossDomain{Coordinator: alice, Handle: "h", RemoteValues: []string{"1", "2"}, Success: true})
	require.NoError(t, err)
	require.NoError(t, cdc.UnmarshalInterface(bz, &got))
	require.Equal(t, &MsgReplyCrossDomain{Coordinator: alice, Handle: "h", RemoteValues: []string{"1", "2"}, Success: true}, got)
}

func TestMsgSignersResolveFromDescriptor(t *testing.T) {
	cdc := newSigningCodec(t)
	alice, bob := testAddr("alice"), testAddr("bob")
	aliceBz, err := sdk.AccAddressFromBech32(alice)
	require.NoError(t, err)

	for _, msg := range []sdk.Msg{
		&MsgDeposit{Sender: alice, Receiver: bob, Assets: "1"},
		&MsgTransferFrom{Spender: alice, From: bob, To: bob, Shares: "1"},
		&MsgApprove{Owner: alice, Spender: bob, Shares: "1"},
		&MsgClearWithdrawal{Holder: alice},
		&MsgCreateCrossDomainRequest{Initiator: alice, Action: string(ActionDeposit)},
		&MsgReplyCrossDomain{Coordinator: alice, Handle: "h"},
		&MsgUpdateParams{Authority: alice, Params: DefaultParams()},
	} {
		signers, _, err := cdc.GetMsgV1Signers(msg)
		require.NoError(t, err, sdk.MsgTypeURL(msg))
		require.Equal(t, [][]byte{aliceBz.Bytes()}, signers, sdk.MsgTypeURL(msg))
	}
}
