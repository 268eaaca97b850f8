package types

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	msgv1 "cosmossdk.io/api/cosmos/msg/v1"
	gogogrpc "github.com/cosmos/gogoproto/grpc"
	gogoproto "github.com/cosmos/gogoproto/proto"
	"google.golang.org/grpc"
	protov2 "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

const (
	// TxProtoFile is the registered descriptor path of the vault Msg service
	TxProtoFile = "hwmvault/vault/v1/tx.proto"

	// MsgServiceName is the fully-qualified Msg service name
	MsgServiceName = protoPackage + "Msg"
)

// MsgServer is the vault Msg service
type MsgServer interface {
	Deposit(context.Context, *MsgDeposit) (*MsgDepositResponse, error)
	Mint(context.Context, *MsgMint) (*MsgMintResponse, error)
	MultiAssetDeposit(context.Context, *MsgMultiAssetDeposit) (*MsgDepositResponse, error)
	Withdraw(context.Context, *MsgWithdraw) (*MsgWithdrawResponse, error)
	Redeem(context.Context, *MsgRedeem) (*MsgRedeemResponse, error)
	Transfer(context.Context, *MsgTransfer) (*MsgEmptyResponse, error)
	TransferFrom(context.Context, *MsgTransferFrom) (*MsgEmptyResponse, error)
	Approve(context.Context, *MsgApprove) (*MsgEmptyResponse, error)
	Accrue(context.Context, *MsgAccrue) (*MsgEmptyResponse, error)
	RequestWithdrawal(context.Context, *MsgRequestWithdrawal) (*MsgRequestWithdrawalResponse, error)
	FinalizeWithdrawal(context.Context, *MsgFinalizeWithdrawal) (*MsgFinalizeWithdrawalResponse, error)
	ClearWithdrawal(context.Context, *MsgClearWithdrawal) (*MsgEmptyResponse, error)
	SetDepositCap(context.Context, *MsgSetDepositCap) (*MsgEmptyResponse, error)
	CreateCrossDomainRequest(context.Context, *MsgCreateCrossDomainRequest) (*MsgCreateCrossDomainRequestResponse, error)
	ReplyCrossDomain(context.Context, *MsgReplyCrossDomain) (*MsgEmptyResponse, error)
	FinalizeCrossDomain(context.Context, *MsgFinalizeCrossDomain) (*MsgEmptyResponse, error)
	RecoverCrossDomain(context.Context, *MsgRecoverCrossDomain) (*MsgEmptyResponse, error)
	UpdateParams(context.Context, *MsgUpdateParams) (*MsgEmptyResponse, error)
	Pause(context.Context, *MsgPause) (*MsgEmptyResponse, error)
	Unpause(context.Context, *MsgUnpause) (*MsgEmptyResponse, error)
	FlagModule(context.Context, *MsgFlagModule) (*MsgEmptyResponse, error)
}

// RegisterMsgServer registers srv with the message router
func RegisterMsgServer(s gogogrpc.Server, srv MsgServer) {
	s.RegisterService(&msgServiceDesc, srv)
}

// methodHandler has the signature of grpc.MethodDesc.Handler
type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

// msgMethod binds a service method to its messages and the request field
// holding the signer
type msgMethod struct {
	name     string
	request  gogoproto.Message
	response gogoproto.Message
	signer   string
	handler  methodHandler
}

var msgMethods = []msgMethod{
	{"Deposit", &MsgDeposit{}, &MsgDepositResponse{}, "sender", unaryHandler("Deposit", MsgServer.Deposit)},
	{"Mint", &MsgMint{}, &MsgMintResponse{}, "sender", unaryHandler("Mint", MsgServer.Mint)},
	{"MultiAssetDeposit", &MsgMultiAssetDeposit{}, &MsgDepositResponse{}, "sender", unaryHandler("MultiAssetDeposit", MsgServer.MultiAssetDeposit)},
	{"Withdraw", &MsgWithdraw{}, &MsgWithdrawResponse{}, "sender", unaryHandler("Withdraw", MsgServer.Withdraw)},
	{"Redeem", &MsgRedeem{}, &MsgRedeemResponse{}, "sender", unaryHandler("Redeem", MsgServer.Redeem)},
	{"Transfer", &MsgTransfer{}, &MsgEmptyResponse{}, "sender", unaryHandler("Transfer", MsgServer.Transfer)},
	{"TransferFrom", &MsgTransferFrom{}, &MsgEmptyResponse{}, "spender", unaryHandler("TransferFrom", MsgServer.TransferFrom)},
	{"Approve", &MsgApprove{}, &MsgEmptyResponse{}, "owner", unaryHandler("Approve", MsgServer.Approve)},
	{"Accrue", &MsgAccrue{}, &MsgEmptyResponse{}, "sender", unaryHandler("Accrue", MsgServer.Accrue)},
	{"RequestWithdrawal", &MsgRequestWithdrawal{}, &MsgRequestWithdrawalResponse{}, "sender", unaryHandler("RequestWithdrawal", MsgServer.RequestWithdrawal)},
	{"FinalizeWithdrawal", &MsgFinalizeWithdrawal{}, &MsgFinalizeWithdrawalResponse{}, "sender", unaryHandler("FinalizeWithdrawal", MsgServer.FinalizeWithdrawal)},
	{"ClearWithdrawal", &MsgClearWithdrawal{}, &MsgEmptyResponse{}, "holder", unaryHandler("ClearWithdrawal", MsgServer.ClearWithdrawal)},
	{"SetDepositCap", &MsgSetDepositCap{}, &MsgEmptyResponse{}, "authority", unaryHandler("SetDepositCap", MsgServer.SetDepositCap)},
	{"CreateCrossDomainRequest", &MsgCreateCrossDomainRequest{}, &MsgCreateCrossDomainRequestResponse{}, "initiator", unaryHandler("CreateCrossDomainRequest", MsgServer.CreateCrossDomainRequest)},
	{"ReplyCrossDomain", &MsgReplyCrossDomain{}, &MsgEmptyResponse{}, "coordinator", unaryHandler("ReplyCrossDomain", MsgServer.ReplyCrossDomain)},
	{"FinalizeCrossDomain", &MsgFinalizeCrossDomain{}, &MsgEmptyResponse{}, "sender", unaryHandler("FinalizeCrossDomain", MsgServer.FinalizeCrossDomain)},
	{"RecoverCrossDomain", &MsgRecoverCrossDomain{}, &MsgEmptyResponse{}, "authority", unaryHandler("RecoverCrossDomain", MsgServer.RecoverCrossDomain)},
	{"UpdateParams", &MsgUpdateParams{}, &MsgEmptyResponse{}, "authority", unaryHandler("UpdateParams", MsgServer.UpdateParams)},
	{"Pause", &MsgPause{}, &MsgEmptyResponse{}, "authority", unaryHandler("Pause", MsgServer.Pause)},
	{"Unpause", &MsgUnpause{}, &MsgEmptyResponse{}, "authority", unaryHandler("Unpause", MsgServer.Unpause)},
	{"FlagModule", &MsgFlagModule{}, &MsgEmptyResponse{}, "authority", unaryHandler("FlagModule", MsgServer.FlagModule)},
}

// unaryHandler adapts a MsgServer method to the gRPC handler shape the
// message router drives: decode, then call directly or through interceptor.
func unaryHandler[Req, Resp any](method string, call func(MsgServer, context.Context, *Req) (*Resp, error)) methodHandler {
	fullMethod := "/" + MsgServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MsgServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MsgServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var msgServiceDesc = func() grpc.ServiceDesc {
	sd := grpc.ServiceDesc{
		ServiceName: MsgServiceName,
		HandlerType: (*MsgServer)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    TxProtoFile,
	}
	for _, m := range msgMethods {
		sd.Methods = append(sd.Methods, grpc.MethodDesc{MethodName: m.name, Handler: m.handler})
	}
	return sd
}()

var (
	// txDescriptor is the gzipped FileDescriptorProto of TxProtoFile
	txDescriptor []byte
	// txMessageIndex maps a message name to its position in txDescriptor
	txMessageIndex = map[string]int{}
)

func init() {
	fd := txFileDescriptor()
	bz, err := protov2.MarshalOptions{Deterministic: true}.Marshal(fd)
	if err != nil {
		panic(err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(bz); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	txDescriptor = buf.Bytes()

	gogoproto.RegisterFile(TxProtoFile, txDescriptor)
	for _, m := range msgMethods {
		for _, msg := range []gogoproto.Message{m.request, m.response} {
			if name := gogoproto.MessageName(msg); gogoproto.MessageType(name) == nil {
				gogoproto.RegisterType(msg, name)
			}
		}
	}
}

// txFileDescriptor describes every Msg and response from its protobuf struct
// tags, with each request annotated with its signer field.
func txFileDescriptor() *descriptorpb.FileDescriptorProto {
	fd := &descriptorpb.FileDescriptorProto{
		Name:       protov2.String(TxProtoFile),
		Package:    protov2.String(strings.TrimSuffix(protoPackage, ".")),
		Dependency: []string{"cosmos/msg/v1/msg.proto"},
		Syntax:     protov2.String("proto3"),
	}
	add := func(msg gogoproto.Message, signer string) {
		name := strings.TrimPrefix(gogoproto.MessageName(msg), protoPackage)
		if _, ok := txMessageIndex[name]; ok {
			return
		}
		dp := messageDescriptor(name, msg)
		if signer != "" {
			dp.Options = &descriptorpb.MessageOptions{}
			protov2.SetExtension(dp.Options, msgv1.E_Signer, []string{signer})
		}
		txMessageIndex[name] = len(fd.MessageType)
		fd.MessageType = append(fd.MessageType, dp)
	}

	svc := &descriptorpb.ServiceDescriptorProto{
		Name:    protov2.String("Msg"),
		Options: &descriptorpb.ServiceOptions{},
	}
	protov2.SetExtension(svc.Options, msgv1.E_Service, true)
	for _, m := range msgMethods {
		add(m.request, m.signer)
		add(m.response, "")
		svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
			Name:       protov2.String(m.name),
			InputType:  protov2.String("." + gogoproto.MessageName(m.request)),
			OutputType: protov2.String("." + gogoproto.MessageName(m.response)),
		})
	}
	fd.Service = []*descriptorpb.ServiceDescriptorProto{svc}
	return fd
}

func messageDescriptor(name string, msg gogoproto.Message) *descriptorpb.DescriptorProto {
	dp := &descriptorpb.DescriptorProto{Name: protov2.String(name)}
	t := reflect.TypeOf(msg).Elem()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("protobuf")
		if tag == "" {
			continue
		}
		parts := strings.Split(tag, ",")
		num, err := strconv.Atoi(parts[1])
		if err != nil {
			panic(fmt.Sprintf("%s.%s: bad field number %q", name, f.Name, parts[1]))
		}
		field := &descriptorpb.FieldDescriptorProto{
			Number: protov2.Int32(int32(num)),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		}
		custom := false
		for _, p := range parts[2:] {
			switch {
			case p == "rep":
				field.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
			case strings.HasPrefix(p, "name="):
				field.Name = protov2.String(strings.TrimPrefix(p, "name="))
			case strings.HasPrefix(p, "customtype="):
				custom = true
			}
		}
		field.Type = fieldType(f.Type, custom).Enum()
		dp.Field = append(dp.Field, field)
	}
	return dp
}

// fieldType maps a Go field to its wire type. Custom types travel as bytes.
func fieldType(t reflect.Type, custom bool) descriptorpb.FieldDescriptorProto_Type {
	switch {
	case custom:
		return descriptorpb.FieldDescriptorProto_TYPE_BYTES
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return descriptorpb.FieldDescriptorProto_TYPE_BYTES
	case t.Kind() == reflect.Slice:
		return fieldType(t.Elem(), false)
	case t.Kind() == reflect.String:
		return descriptorpb.FieldDescriptorProto_TYPE_STRING
	case t.Kind() == reflect.Bool:
		return descriptorpb.FieldDescriptorProto_TYPE_BOOL
	case t.Kind() == reflect.Int64:
		return descriptorpb.FieldDescriptorProto_TYPE_INT64
	}
	panic(fmt.Sprintf("unsupported field type %s", t))
}

func descriptorOf(name string) ([]byte, []int) {
	return txDescriptor, []int{txMessageIndex[name]}
}

func (*MsgDeposit) Descriptor() ([]byte, []int)           { return descriptorOf("MsgDeposit") }
func (*MsgDepositResponse) Descriptor() ([]byte, []int)   { return descriptorOf("MsgDepositResponse") }
func (*MsgMint) Descriptor() ([]byte, []int)              { return descriptorOf("MsgMint") }
func (*MsgMintResponse) Descriptor() ([]byte, []int)      { return descriptorOf("MsgMintResponse") }
func (*MsgMultiAssetDeposit) Descriptor() ([]byte, []int) { return descriptorOf("MsgMultiAssetDeposit") }
func (*MsgWithdraw) Descriptor() ([]byte, []int)          { return descriptorOf("MsgWithdraw") }
func (*MsgWithdrawResponse) Descriptor() ([]byte, []int)  { return descriptorOf("MsgWithdrawResponse") }
func (*MsgRedeem) Descriptor() ([]byte, []int)            { return descriptorOf("MsgRedeem") }
func (*MsgRedeemResponse) Descriptor() ([]byte, []int)    { return descriptorOf("MsgRedeemResponse") }
func (*MsgTransfer) Descriptor() ([]byte, []int)          { return descriptorOf("MsgTransfer") }
func (*MsgTransferFrom) Descriptor() ([]byte, []int)      { return descriptorOf("MsgTransferFrom") }
func (*MsgApprove) Descriptor() ([]byte, []int)           { return descriptorOf("MsgApprove") }
func (*MsgAccrue) Descriptor() ([]byte, []int)            { return descriptorOf("MsgAccrue") }
func (*MsgRequestWithdrawal) Descriptor() ([]byte, []int) { return descriptorOf("MsgRequestWithdrawal") }
func (*MsgRequestWithdrawalResponse) Descriptor() ([]byte, []int) {
	return descriptorOf("MsgRequestWithdrawalResponse")
}
func (*MsgFinalizeWithdrawal) Descriptor() ([]byte, []int) { return descriptorOf("MsgFinalizeWithdrawal") }
func (*MsgFinalizeWithdrawalResponse) Descriptor() ([]byte, []int) {
	return descriptorOf("MsgFinalizeWithdrawalResponse")
}
func (*MsgClearWithdrawal) Descriptor() ([]byte, []int) { return descriptorOf("MsgClearWithdrawal") }
func (*MsgSetDepositCap) Descriptor() ([]byte, []int)   { return descriptorOf("MsgSetDepositCap") }
func (*MsgCreateCrossDomainRequest) Descriptor() ([]byte, []int) {
	return descriptorOf("MsgCreateCrossDomainRequest")
}
func (*MsgCreateCrossDomainRequestResponse) Descriptor() ([]byte, []int) {
	return descriptorOf("MsgCreateCrossDomainRequestResponse")
}
func (*MsgReplyCrossDomain) Descriptor() ([]byte, []int)    { return descriptorOf("MsgReplyCrossDomain") }
func (*MsgFinalizeCrossDomain) Descriptor() ([]byte, []int) { return descriptorOf("MsgFinalizeCrossDomain") }
func (*MsgRecoverCrossDomain) Descriptor() ([]byte, []int)  { return descriptorOf("MsgRecoverCrossDomain") }
func (*MsgUpdateParams) Descriptor() ([]byte, []int)        { return descriptorOf("MsgUpdateParams") }
func (*MsgPause) Descriptor() ([]byte, []int)               { return descriptorOf("MsgPause") }
func (*MsgUnpause) Descriptor() ([]byte, []int)             { return descriptorOf("MsgUnpause") }
func (*MsgFlagModule) Descriptor() ([]byte, []int)          { return descriptorOf("MsgFlagModule") }
func (*MsgEmptyResponse) Descriptor() ([]byte, []int)       { return descriptorOf("MsgEmptyResponse") }
