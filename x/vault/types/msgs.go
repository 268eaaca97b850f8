package types

import (
	"fmt"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/msgservice"
)

// RegisterInterfaces registers the module's interface types
func RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&MsgDeposit{},
		&MsgMint{},
		&MsgMultiAssetDeposit{},
		&MsgWithdraw{},
		&MsgRedeem{},
		&MsgTransfer{},
		&MsgTransferFrom{},
		&MsgApprove{},
		&MsgAccrue{},
		&MsgRequestWithdrawal{},
		&MsgFinalizeWithdrawal{},
		&MsgClearWithdrawal{},
		&MsgSetDepositCap{},
		&MsgCreateCrossDomainRequest{},
		&MsgReplyCrossDomain{},
		&MsgFinalizeCrossDomain{},
		&MsgRecoverCrossDomain{},
		&MsgUpdateParams{},
		&MsgPause{},
		&MsgUnpause{},
		&MsgFlagModule{},
	)
	msgservice.RegisterMsgServiceDesc(registry, &msgServiceDesc)
}

const protoPackage = "hwmvault.vault.v1."

func signer(addr string) []sdk.AccAddress {
	a, _ := sdk.AccAddressFromBech32(addr)
	return []sdk.AccAddress{a}
}

func validAddr(field, addr string) error {
	if _, err := sdk.AccAddressFromBech32(addr); err != nil {
		return errors.Wrapf(ErrUnauthorized, "invalid %s address: %s", field, err)
	}
	return nil
}

// ParsePositiveInt parses a decimal integer amount that must be > 0
func ParsePositiveInt(field, s string) (math.Int, error) {
	v, ok := math.NewIntFromString(s)
	if !ok {
		return math.Int{}, errors.Wrapf(ErrZeroAmount, "invalid %s %q", field, s)
	}
	if !v.IsPositive() {
		return math.Int{}, errors.Wrapf(ErrZeroAmount, "%s must be positive", field)
	}
	return v, nil
}

// ============ Share ledger ============

// MsgDeposit deposits assets and issues shares to Receiver
type MsgDeposit struct {
	Sender   string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
	Receiver string `protobuf:"bytes,2,opt,name=receiver,proto3" json:"receiver"`
	Assets   string `protobuf:"bytes,3,opt,name=assets,proto3" json:"assets"`
}

func (msg MsgDeposit) ValidateBasic() error {
	if err := validAddr("sender", msg.Sender); err != nil {
		return err
	}
	if err := validAddr("receiver", msg.Receiver); err != nil {
		return err
	}
	_, err := ParsePositiveInt("assets", msg.Assets)
	return err
}
func (msg MsgDeposit) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }
func (*MsgDeposit) ProtoMessage()                   {}
func (msg *MsgDeposit) Reset()                      { *msg = MsgDeposit{} }
func (*MsgDeposit) XXX_MessageName() string         { return protoPackage + "MsgDeposit" }
func (msg MsgDeposit) String() string {
	return fmt.Sprintf("MsgDeposit{Sender: %s, Receiver: %s, Assets: %s}", msg.Sender, msg.Receiver, msg.Assets)
}

// MsgDepositResponse returns the shares issued
type MsgDepositResponse struct {
	Shares string `protobuf:"bytes,1,opt,name=shares,proto3" json:"shares"`
}

func (*MsgDepositResponse) ProtoMessage()           {}
func (msg *MsgDepositResponse) Reset()              { *msg = MsgDepositResponse{} }
func (*MsgDepositResponse) XXX_MessageName() string { return protoPackage + "MsgDepositResponse" }
func (msg MsgDepositResponse) String() string {
	return fmt.Sprintf("MsgDepositResponse{Shares: %s}", msg.Shares)
}

// MsgMint issues an exact number of shares to Receiver
type MsgMint struct {
	Sender   string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
	Receiver string `protobuf:"bytes,2,opt,name=receiver,proto3" json:"receiver"`
	Shares   string `protobuf:"bytes,3,opt,name=shares,proto3" json:"shares"`
}

func (msg MsgMint) ValidateBasic() error {
	if err := validAddr("sender", msg.Sender); err != nil {
		return err
	}
	if err := validAddr("receiver", msg.Receiver); err != nil {
		return err
	}
	_, err := ParsePositiveInt("shares", msg.Shares)
	return err
}
func (msg MsgMint) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }
func (*MsgMint) ProtoMessage()                   {}
func (msg *MsgMint) Reset()                      { *msg = MsgMint{} }
func (*MsgMint) XXX_MessageName() string         { return protoPackage + "MsgMint" }
func (msg MsgMint) String() string {
	return fmt.Sprintf("MsgMint{Sender: %s, Receiver: %s, Shares: %s}", msg.Sender, msg.Receiver, msg.Shares)
}

// MsgMintResponse returns the assets charged
type MsgMintResponse struct {
	Assets string `protobuf:"bytes,1,opt,name=assets,proto3" json:"assets"`
}

func (*MsgMintResponse) ProtoMessage()           {}
func (msg *MsgMintResponse) Reset()              { *msg = MsgMintResponse{} }
func (*MsgMintResponse) XXX_MessageName() string { return protoPackage + "MsgMintResponse" }
func (msg MsgMintResponse) String() string {
	return fmt.Sprintf("MsgMintResponse{Assets: %s}", msg.Assets)
}

// MsgMultiAssetDeposit deposits several supported assets in one call
type MsgMultiAssetDeposit struct {
	Sender   string   `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
	Receiver string   `protobuf:"bytes,2,opt,name=receiver,proto3" json:"receiver"`
	Denoms   []string `protobuf:"bytes,3,rep,name=denoms,proto3" json:"denoms"`
	Amounts  []string `protobuf:"bytes,4,rep,name=amounts,proto3" json:"amounts"`
}

func (msg MsgMultiAssetDeposit) ValidateBasic() error {
	if err := validAddr("sender", msg.Sender); err != nil {
		return err
	}
	if err := validAddr("receiver", msg.Receiver); err != nil {
		return err
	}
	if len(msg.Denoms) != len(msg.Amounts) {
		return errors.Wrapf(ErrLengthMismatch, "%d denoms, %d amounts", len(msg.Denoms), len(msg.Amounts))
	}
	if len(msg.Denoms) == 0 {
		return errors.Wrap(ErrZeroAmount, "no assets")
	}
	for _, a := range msg.Amounts {
		if _, err := ParsePositiveInt("amount", a); err != nil {
			return err
		}
	}
	return nil
}
func (msg MsgMultiAssetDeposit) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }
func (*MsgMultiAssetDeposit) ProtoMessage()                   {}
func (msg *MsgMultiAssetDeposit) Reset()                      { *msg = MsgMultiAssetDeposit{} }
func (*MsgMultiAssetDeposit) XXX_MessageName() string         { return protoPackage + "MsgMultiAssetDeposit" }
func (msg MsgMultiAssetDeposit) String() string {
	return fmt.Sprintf("MsgMultiAssetDeposit{Sender: %s, Receiver: %s, Denoms: %v, Amounts: %v}",
		msg.Sender, msg.Receiver, msg.Denoms, msg.Amounts)
}

// MsgWithdraw burns owner shares for an exact asset amount
type MsgWithdraw struct {
	Sender   string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
	Receiver string `protobuf:"bytes,2,opt,name=receiver,proto3" json:"receiver"`
	Owner    string `protobuf:"bytes,3,opt,name=owner,proto3" json:"owner"`
	Assets   string `protobuf:"bytes,4,opt,name=assets,proto3" json:"assets"`
}

func (msg MsgWithdraw) ValidateBasic() error {
	for field, a := range map[string]string{"sender": msg.Sender, "receiver": msg.Receiver, "owner": msg.Owner} {
		if err := validAddr(field, a); err != nil {
			return err
		}
	}
	_, err := ParsePositiveInt("assets", msg.Assets)
	return err
}
func (msg MsgWithdraw) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }
func (*MsgWithdraw) ProtoMessage()                   {}
func (msg *MsgWithdraw) Reset()                      { *msg = MsgWithdraw{} }
func (*MsgWithdraw) XXX_MessageName() string         { return protoPackage + "MsgWithdraw" }
func (msg MsgWithdraw) String() string {
	return fmt.Sprintf("MsgWithdraw{Sender: %s, Owner: %s, Assets: %s}", msg.Sender, msg.Owner, msg.Assets)
}

// MsgWithdrawResponse returns the shares burned
type MsgWithdrawResponse struct {
	Shares string `protobuf:"bytes,1,opt,name=shares,proto3" json:"shares"`
}

func (*MsgWithdrawResponse) ProtoMessage()           {}
func (msg *MsgWithdrawResponse) Reset()              { *msg = MsgWithdrawResponse{} }
func (*MsgWithdrawResponse) XXX_MessageName() string { return protoPackage + "MsgWithdrawResponse" }
func (msg MsgWithdrawResponse) String() string {
	return fmt.Sprintf("MsgWithdrawResponse{Shares: %s}", msg.Shares)
}

// MsgRedeem burns an exact number of owner shares
type MsgRedeem struct {
	Sender   string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
	Receiver string `protobuf:"bytes,2,opt,name=receiver,proto3" json:"receiver"`
	Owner    string `protobuf:"bytes,3,opt,name=owner,proto3" json:"owner"`
	Shares   string `protobuf:"bytes,4,opt,name=shares,proto3" json:"shares"`
}

func (msg MsgRedeem) ValidateBasic() error {
	for field, a := range map[string]string{"sender": msg.Sender, "receiver": msg.Receiver, "owner": msg.Owner} {
		if err := validAddr(field, a); err != nil {
			return err
		}
	}
	_, err := ParsePositiveInt("shares", msg.Shares)
	return err
}
func (msg MsgRedeem) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }
func (*MsgRedeem) ProtoMessage()                   {}
func (msg *MsgRedeem) Reset()                      { *msg = MsgRedeem{} }
func (*MsgRedeem) XXX_MessageName() string         { return protoPackage + "MsgRedeem" }
func (msg MsgRedeem) String() string {
	return fmt.Sprintf("MsgRedeem{Sender: %s, Owner: %s, Shares: %s}", msg.Sender, msg.Owner, msg.Shares)
}

// MsgRedeemResponse returns the assets paid out
type MsgRedeemResponse struct {
	Assets string `protobuf:"bytes,1,opt,name=assets,proto3" json:"assets"`
}

func (*MsgRedeemResponse) ProtoMessage()           {}
func (msg *MsgRedeemResponse) Reset()              { *msg = MsgRedeemResponse{} }
func (*MsgRedeemResponse) XXX_MessageName() string { return protoPackage + "MsgRedeemResponse" }
func (msg MsgRedeemResponse) String() string {
	return fmt.Sprintf("MsgRedeemResponse{Assets: %s}", msg.Assets)
}

// MsgTransfer moves shares between holders
type MsgTransfer struct {
	Sender    string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
	Recipient string `protobuf:"bytes,2,opt,name=recipient,proto3" json:"recipient"`
	Shares    string `protobuf:"bytes,3,opt,name=shares,proto3" json:"shares"`
}

func (msg MsgTransfer) ValidateBasic() error {
	if err := validAddr("sender", msg.Sender); err != nil {
		return err
	}
	if err := validAddr("recipient", msg.Recipient); err != nil {
		return err
	}
	_, err := ParsePositiveInt("shares", msg.Shares)
	return err
}
func (msg MsgTransfer) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }
func (*MsgTransfer) ProtoMessage()                   {}
func (msg *MsgTransfer) Reset()                      { *msg = MsgTransfer{} }
func (*MsgTransfer) XXX_MessageName() string         { return protoPackage + "MsgTransfer" }
func (msg MsgTransfer) String() string {
	return fmt.Sprintf("MsgTransfer{Sender: %s, Recipient: %s, Shares: %s}", msg.Sender, msg.Recipient, msg.Shares)
}

// MsgTransferFrom moves shares using an allowance
type MsgTransferFrom struct {
	Spender string `protobuf:"bytes,1,opt,name=spender,proto3" json:"spender"`
	From    string `protobuf:"bytes,2,opt,name=from,proto3" json:"from"`
	To      string `protobuf:"bytes,3,opt,name=to,proto3" json:"to"`
	Shares  string `protobuf:"bytes,4,opt,name=shares,proto3" json:"shares"`
}

func (msg MsgTransferFrom) ValidateBasic() error {
	for field, a := range map[string]string{"spender": msg.Spender, "from": msg.From, "to": msg.To} {
		if err := validAddr(field, a); err != nil {
			return err
		}
	}
	_, err := ParsePositiveInt("shares", msg.Shares)
	return err
}
func (msg MsgTransferFrom) GetSigners() []sdk.AccAddress { return signer(msg.Spender) }
func (*MsgTransferFrom) ProtoMessage()                   {}
func (msg *MsgTransferFrom) Reset()                      { *msg = MsgTransferFrom{} }
func (*MsgTransferFrom) XXX_MessageName() string         { return protoPackage + "MsgTransferFrom" }
func (msg MsgTransferFrom) String() string {
	return fmt.Sprintf("MsgTransferFrom{Spender: %s, From: %s, To: %s, Shares: %s}", msg.Spender, msg.From, msg.To, msg.Shares)
}

// MsgApprove sets a spender's share allowance. Zero revokes it.
type MsgApprove struct {
	Owner   string `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner"`
	Spender string `protobuf:"bytes,2,opt,name=spender,proto3" json:"spender"`
	Shares  string `protobuf:"bytes,3,opt,name=shares,proto3" json:"shares"`
}

func (msg MsgApprove) ValidateBasic() error {
	if err := validAddr("owner", msg.Owner); err != nil {
		return err
	}
	if err := validAddr("spender", msg.Spender); err != nil {
		return err
	}
	if v, ok := math.NewIntFromString(msg.Shares); !ok || v.IsNegative() {
		return errors.Wrapf(ErrZeroAmount, "invalid allowance %q", msg.Shares)
	}
	return nil
}
func (msg MsgApprove) GetSigners() []sdk.AccAddress { return signer(msg.Owner) }
func (*MsgApprove) ProtoMessage()                   {}
func (msg *MsgApprove) Reset()                      { *msg = MsgApprove{} }
func (*MsgApprove) XXX_MessageName() string         { return protoPackage + "MsgApprove" }
func (msg MsgApprove) String() string {
	return fmt.Sprintf("MsgApprove{Owner: %s, Spender: %s, Shares: %s}", msg.Owner, msg.Spender, msg.Shares)
}

// MsgAccrue checkpoints a holder's performance fee
type MsgAccrue struct {
	Sender string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
	Holder string `protobuf:"bytes,2,opt,name=holder,proto3" json:"holder"`
}

func (msg MsgAccrue) ValidateBasic() error {
	if err := validAddr("sender", msg.Sender); err != nil {
		return err
	}
	return validAddr("holder", msg.Holder)
}
func (msg MsgAccrue) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }
func (*MsgAccrue) ProtoMessage()                   {}
func (msg *MsgAccrue) Reset()                      { *msg = MsgAccrue{} }
func (*MsgAccrue) XXX_MessageName() string         { return protoPackage + "MsgAccrue" }
func (msg MsgAccrue) String() string {
	return fmt.Sprintf("MsgAccrue{Sender: %s, Holder: %s}", msg.Sender, msg.Holder)
}

// ============ Withdrawal queue ============

// MsgRequestWithdrawal opens a timelocked withdrawal for Holder
type MsgRequestWithdrawal struct {
	Sender string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
	Holder string `protobuf:"bytes,2,opt,name=holder,proto3" json:"holder"`
	Assets string `protobuf:"bytes,3,opt,name=assets,proto3" json:"assets"`
}

func (msg MsgRequestWithdrawal) ValidateBasic() error {
	if err := validAddr("sender", msg.Sender); err != nil {
		return err
	}
	if err := validAddr("holder", msg.Holder); err != nil {
		return err
	}
	_, err := ParsePositiveInt("assets", msg.Assets)
	return err
}
func (msg MsgRequestWithdrawal) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }
func (*MsgRequestWithdrawal) ProtoMessage()                   {}
func (msg *MsgRequestWithdrawal) Reset()                      { *msg = MsgRequestWithdrawal{} }
func (*MsgRequestWithdrawal) XXX_MessageName() string         { return protoPackage + "MsgRequestWithdrawal" }
func (msg MsgRequestWithdrawal) String() string {
	return fmt.Sprintf("MsgRequestWithdrawal{Sender: %s, Holder: %s, Assets: %s}", msg.Sender, msg.Holder, msg.Assets)
}

// MsgRequestWithdrawalResponse returns the locked shares and timelock expiry
type MsgRequestWithdrawalResponse struct {
	Shares    string `protobuf:"bytes,1,opt,name=shares,proto3" json:"shares"`
	ExpiresAt int64  `protobuf:"varint,2,opt,name=expires_at,proto3" json:"expires_at"`
}

func (*MsgRequestWithdrawalResponse) ProtoMessage()           {}
func (msg *MsgRequestWithdrawalResponse) Reset()              { *msg = MsgRequestWithdrawalResponse{} }
func (*MsgRequestWithdrawalResponse) XXX_MessageName() string { return protoPackage + "MsgRequestWithdrawalResponse" }
func (msg MsgRequestWithdrawalResponse) String() string {
	return fmt.Sprintf("MsgRequestWithdrawalResponse{Shares: %s, ExpiresAt: %d}", msg.Shares, msg.ExpiresAt)
}

// MsgFinalizeWithdrawal pays out a matured request
type MsgFinalizeWithdrawal struct {
	Sender   string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
	Holder   string `protobuf:"bytes,2,opt,name=holder,proto3" json:"holder"`
	Receiver string `protobuf:"bytes,3,opt,name=receiver,proto3" json:"receiver"`
}

func (msg MsgFinalizeWithdrawal) ValidateBasic() error {
	for field, a := range map[string]string{"sender": msg.Sender, "holder": msg.Holder, "receiver": msg.Receiver} {
		if err := validAddr(field, a); err != nil {
			return err
		}
	}
	return nil
}
func (msg MsgFinalizeWithdrawal) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }
func (*MsgFinalizeWithdrawal) ProtoMessage()                   {}
func (msg *MsgFinalizeWithdrawal) Reset()                      { *msg = MsgFinalizeWithdrawal{} }
func (*MsgFinalizeWithdrawal) XXX_MessageName() string         { return protoPackage + "MsgFinalizeWithdrawal" }
func (msg MsgFinalizeWithdrawal) String() string {
	return fmt.Sprintf("MsgFinalizeWithdrawal{Sender: %s, Holder: %s, Receiver: %s}", msg.Sender, msg.Holder, msg.Receiver)
}

// MsgFinalizeWithdrawalResponse reports the payout
type MsgFinalizeWithdrawalResponse struct {
	Gross string `protobuf:"bytes,1,opt,name=gross,proto3" json:"gross"`
	Fee   string `protobuf:"bytes,2,opt,name=fee,proto3" json:"fee"`
	Net   string `protobuf:"bytes,3,opt,name=net,proto3" json:"net"`
}

func (*MsgFinalizeWithdrawalResponse) ProtoMessage()           {}
func (msg *MsgFinalizeWithdrawalResponse) Reset()              { *msg = MsgFinalizeWithdrawalResponse{} }
func (*MsgFinalizeWithdrawalResponse) XXX_MessageName() string { return protoPackage + "MsgFinalizeWithdrawalResponse" }
func (msg MsgFinalizeWithdrawalResponse) String() string {
	return fmt.Sprintf("MsgFinalizeWithdrawalResponse{Gross: %s, Fee: %s, Net: %s}", msg.Gross, msg.Fee, msg.Net)
}

// MsgClearWithdrawal cancels the holder's own request
type MsgClearWithdrawal struct {
	Holder string `protobuf:"bytes,1,opt,name=holder,proto3" json:"holder"`
}

func (msg MsgClearWithdrawal) ValidateBasic() error         { return validAddr("holder", msg.Holder) }
func (msg MsgClearWithdrawal) GetSigners() []sdk.AccAddress { return signer(msg.Holder) }
func (*MsgClearWithdrawal) ProtoMessage()                   {}
func (msg *MsgClearWithdrawal) Reset()                      { *msg = MsgClearWithdrawal{} }
func (*MsgClearWithdrawal) XXX_MessageName() string         { return protoPackage + "MsgClearWithdrawal" }
func (msg MsgClearWithdrawal) String() string {
	return fmt.Sprintf("MsgClearWithdrawal{Holder: %s}", msg.Holder)
}

// MsgSetDepositCap sets a depositor's capacity
type MsgSetDepositCap struct {
	Authority string `protobuf:"bytes,1,opt,name=authority,proto3" json:"authority"`
	Holder    string `protobuf:"bytes,2,opt,name=holder,proto3" json:"holder"`
	Cap       string `protobuf:"bytes,3,opt,name=cap,proto3" json:"cap"`
}

func (msg MsgSetDepositCap) ValidateBasic() error {
	if err := validAddr("authority", msg.Authority); err != nil {
		return err
	}
	if err := validAddr("holder", msg.Holder); err != nil {
		return err
	}
	if v, ok := math.NewIntFromString(msg.Cap); !ok || v.IsNegative() {
		return errors.Wrapf(ErrInvalidParams, "invalid cap %q", msg.Cap)
	}
	return nil
}
func (msg MsgSetDepositCap) GetSigners() []sdk.AccAddress { return signer(msg.Authority) }
func (*MsgSetDepositCap) ProtoMessage()                   {}
func (msg *MsgSetDepositCap) Reset()                      { *msg = MsgSetDepositCap{} }
func (*MsgSetDepositCap) XXX_MessageName() string         { return protoPackage + "MsgSetDepositCap" }
func (msg MsgSetDepositCap) String() string {
	return fmt.Sprintf("MsgSetDepositCap{Holder: %s, Cap: %s}", msg.Holder, msg.Cap)
}

// ============ Cross-domain coordinator ============

// MsgCreateCrossDomainRequest defers Action until remote values arrive
type MsgCreateCrossDomainRequest struct {
	Initiator string        `protobuf:"bytes,1,opt,name=initiator,proto3" json:"initiator"`
	Action    string        `protobuf:"bytes,2,opt,name=action,proto3" json:"action"`
	Payload   ActionPayload `protobuf:"bytes,3,opt,name=payload,proto3,customtype=ActionPayload" json:"payload"`
	Options   []byte        `protobuf:"bytes,4,opt,name=options,proto3" json:"options,omitempty"`
}

func (msg MsgCreateCrossDomainRequest) ValidateBasic() error {
	if err := validAddr("initiator", msg.Initiator); err != nil {
		return err
	}
	action, err := ParseActionType(msg.Action)
	if err != nil {
		return err
	}
	return msg.Payload.ValidateFor(action)
}
func (msg MsgCreateCrossDomainRequest) GetSigners() []sdk.AccAddress { return signer(msg.Initiator) }
func (*MsgCreateCrossDomainRequest) ProtoMessage()                   {}
func (msg *MsgCreateCrossDomainRequest) Reset()                      { *msg = MsgCreateCrossDomainRequest{} }
func (*MsgCreateCrossDomainRequest) XXX_MessageName() string {
	return protoPackage + "MsgCreateCrossDomainRequest"
}
func (msg MsgCreateCrossDomainRequest) String() string {
	return fmt.Sprintf("MsgCreateCrossDomainRequest{Initiator: %s, Action: %s}", msg.Initiator, msg.Action)
}

// MsgCreateCrossDomainRequestResponse returns the correlation handle
type MsgCreateCrossDomainRequestResponse struct {
	Handle string `protobuf:"bytes,1,opt,name=handle,proto3" json:"handle"`
}

func (*MsgCreateCrossDomainRequestResponse) ProtoMessage()           {}
func (msg *MsgCreateCrossDomainRequestResponse) Reset()              { *msg = MsgCreateCrossDomainRequestResponse{} }
func (*MsgCreateCrossDomainRequestResponse) XXX_MessageName() string { return protoPackage + "MsgCreateCrossDomainRequestResponse" }
func (msg MsgCreateCrossDomainRequestResponse) String() string {
	return fmt.Sprintf("MsgCreateCrossDomainRequestResponse{Handle: %s}", msg.Handle)
}

// MsgReplyCrossDomain delivers per-domain remote values (18-decimal USD)
type MsgReplyCrossDomain struct {
	Coordinator  string   `protobuf:"bytes,1,opt,name=coordinator,proto3" json:"coordinator"`
	Handle       string   `protobuf:"bytes,2,opt,name=handle,proto3" json:"handle"`
	RemoteValues []string `protobuf:"bytes,3,rep,name=remote_values,proto3" json:"remote_values"`
	Success      bool     `protobuf:"varint,4,opt,name=success,proto3" json:"success"`
}

func (msg MsgReplyCrossDomain) ValidateBasic() error {
	if err := validAddr("coordinator", msg.Coordinator); err != nil {
		return err
	}
	if msg.Handle == "" {
		return errors.Wrap(ErrRequestNotFound, "empty handle")
	}
	for _, v := range msg.RemoteValues {
		if x, ok := math.NewIntFromString(v); !ok || x.IsNegative() {
			return errors.Wrapf(ErrInvalidRequestState, "invalid remote value %q", v)
		}
	}
	return nil
}
func (msg MsgReplyCrossDomain) GetSigners() []sdk.AccAddress { return signer(msg.Coordinator) }
func (*MsgReplyCrossDomain) ProtoMessage()                   {}
func (msg *MsgReplyCrossDomain) Reset()                      { *msg = MsgReplyCrossDomain{} }
func (*MsgReplyCrossDomain) XXX_MessageName() string         { return protoPackage + "MsgReplyCrossDomain" }
func (msg MsgReplyCrossDomain) String() string {
	return fmt.Sprintf("MsgReplyCrossDomain{Handle: %s, Values: %v, Success: %t}", msg.Handle, msg.RemoteValues, msg.Success)
}

// MsgFinalizeCrossDomain executes a fulfilled request
type MsgFinalizeCrossDomain struct {
	Sender string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
	Handle string `protobuf:"bytes,2,opt,name=handle,proto3" json:"handle"`
}

func (msg MsgFinalizeCrossDomain) ValidateBasic() error {
	if msg.Handle == "" {
		return errors.Wrap(ErrRequestNotFound, "empty handle")
	}
	return validAddr("sender", msg.Sender)
}
func (msg MsgFinalizeCrossDomain) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }
func (*MsgFinalizeCrossDomain) ProtoMessage()                   {}
func (msg *MsgFinalizeCrossDomain) Reset()                      { *msg = MsgFinalizeCrossDomain{} }
func (*MsgFinalizeCrossDomain) XXX_MessageName() string {
	return protoPackage + "MsgFinalizeCrossDomain"
}
func (msg MsgFinalizeCrossDomain) String() string {
	return fmt.Sprintf("MsgFinalizeCrossDomain{Sender: %s, Handle: %s}", msg.Sender, msg.Handle)
}

// MsgRecoverCrossDomain unwinds an expired or stale request
type MsgRecoverCrossDomain struct {
	Authority string `protobuf:"bytes,1,opt,name=authority,proto3" json:"authority"`
	Handle    string `protobuf:"bytes,2,opt,name=handle,proto3" json:"handle"`
}

func (msg MsgRecoverCrossDomain) ValidateBasic() error {
	if msg.Handle == "" {
		return errors.Wrap(ErrRequestNotFound, "empty handle")
	}
	return validAddr("authority", msg.Authority)
}
func (msg MsgRecoverCrossDomain) GetSigners() []sdk.AccAddress { return signer(msg.Authority) }
func (*MsgRecoverCrossDomain) ProtoMessage()                   {}
func (msg *MsgRecoverCrossDomain) Reset()                      { *msg = MsgRecoverCrossDomain{} }
func (*MsgRecoverCrossDomain) XXX_MessageName() string         { return protoPackage + "MsgRecoverCrossDomain" }
func (msg MsgRecoverCrossDomain) String() string {
	return fmt.Sprintf("MsgRecoverCrossDomain{Handle: %s}", msg.Handle)
}

// ============ Admin ============

// MsgUpdateParams replaces module params
type MsgUpdateParams struct {
	Authority string `protobuf:"bytes,1,opt,name=authority,proto3" json:"authority"`
	Params    Params `protobuf:"bytes,2,opt,name=params,proto3,customtype=Params" json:"params"`
}

func (msg MsgUpdateParams) ValidateBasic() error {
	if err := validAddr("authority", msg.Authority); err != nil {
		return err
	}
	return msg.Params.Validate()
}
func (msg MsgUpdateParams) GetSigners() []sdk.AccAddress { return signer(msg.Authority) }
func (*MsgUpdateParams) ProtoMessage()                   {}
func (msg *MsgUpdateParams) Reset()                      { *msg = MsgUpdateParams{} }
func (*MsgUpdateParams) XXX_MessageName() string         { return protoPackage + "MsgUpdateParams" }
func (msg MsgUpdateParams) String() string {
	return fmt.Sprintf("MsgUpdateParams{Authority: %s, %s}", msg.Authority, msg.Params)
}

// MsgPause halts value-moving operations
type MsgPause struct {
	Authority string `protobuf:"bytes,1,opt,name=authority,proto3" json:"authority"`
}

func (msg MsgPause) ValidateBasic() error         { return validAddr("authority", msg.Authority) }
func (msg MsgPause) GetSigners() []sdk.AccAddress { return signer(msg.Authority) }
func (*MsgPause) ProtoMessage()                   {}
func (msg *MsgPause) Reset()                      { *msg = MsgPause{} }
func (*MsgPause) XXX_MessageName() string         { return protoPackage + "MsgPause" }
func (msg MsgPause) String() string               { return fmt.Sprintf("MsgPause{Authority: %s}", msg.Authority) }

// MsgUnpause resumes operations
type MsgUnpause struct {
	Authority string `protobuf:"bytes,1,opt,name=authority,proto3" json:"authority"`
}

func (msg MsgUnpause) ValidateBasic() error         { return validAddr("authority", msg.Authority) }
func (msg MsgUnpause) GetSigners() []sdk.AccAddress { return signer(msg.Authority) }
func (*MsgUnpause) ProtoMessage()                   {}
func (msg *MsgUnpause) Reset()                      { *msg = MsgUnpause{} }
func (*MsgUnpause) XXX_MessageName() string         { return protoPackage + "MsgUnpause" }
func (msg MsgUnpause) String() string               { return fmt.Sprintf("MsgUnpause{Authority: %s}", msg.Authority) }

// MsgFlagModule marks a valuation module safe or unsafe
type MsgFlagModule struct {
	Authority string `protobuf:"bytes,1,opt,name=authority,proto3" json:"authority"`
	Module    string `protobuf:"bytes,2,opt,name=module,proto3" json:"module"`
	Unsafe    bool   `protobuf:"varint,3,opt,name=unsafe,proto3" json:"unsafe"`
}

func (msg MsgFlagModule) ValidateBasic() error {
	if msg.Module == "" {
		return errors.Wrap(ErrModuleNotFound, "empty module name")
	}
	return validAddr("authority", msg.Authority)
}
func (msg MsgFlagModule) GetSigners() []sdk.AccAddress { return signer(msg.Authority) }
func (*MsgFlagModule) ProtoMessage()                   {}
func (msg *MsgFlagModule) Reset()                      { *msg = MsgFlagModule{} }
func (*MsgFlagModule) XXX_MessageName() string         { return protoPackage + "MsgFlagModule" }
func (msg MsgFlagModule) String() string {
	return fmt.Sprintf("MsgFlagModule{Module: %s, Unsafe: %t}", msg.Module, msg.Unsafe)
}

// MsgEmptyResponse is returned by messages without a payload
type MsgEmptyResponse struct{}

func (*MsgEmptyResponse) ProtoMessage()           {}
func (msg *MsgEmptyResponse) Reset()              { *msg = MsgEmptyResponse{} }
func (*MsgEmptyResponse) XXX_MessageName() string { return protoPackage + "MsgEmptyResponse" }
func (MsgEmptyResponse) String() string            { return "MsgEmptyResponse{}" }
