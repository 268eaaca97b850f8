package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/openalpha/hwmvault/x/vault/types"
)

// MsgServer defines the vault MsgServer
type MsgServer struct {
	keeper *Keeper
}

var _ types.MsgServer = (*MsgServer)(nil)

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// Deposit handles MsgDeposit
func (m *MsgServer) Deposit(ctx context.Context, msg *types.MsgDeposit) (*types.MsgDepositResponse, error) {
	assets, err := types.ParsePositiveInt("assets", msg.Assets)
	if err != nil {
		return nil, err
	}
	shares, err := m.keeper.Deposit(ctx, msg.Sender, msg.Receiver, assets)
	if err != nil {
		return nil, err
	}
	return &types.MsgDepositResponse{Shares: shares.String()}, nil
}

// Mint handles MsgMint
func (m *MsgServer) Mint(ctx context.Context, msg *types.MsgMint) (*types.MsgMintResponse, error) {
	shares, err := types.ParsePositiveInt("shares", msg.Shares)
	if err != nil {
		return nil, err
	}
	assets, err := m.keeper.Mint(ctx, msg.Sender, msg.Receiver, shares)
	if err != nil {
		return nil, err
	}
	return &types.MsgMintResponse{Assets: assets.String()}, nil
}

// MultiAssetDeposit handles MsgMultiAssetDeposit
func (m *MsgServer) MultiAssetDeposit(ctx context.Context, msg *types.MsgMultiAssetDeposit) (*types.MsgDepositResponse, error) {
	amounts, err := parseAmounts(msg.Amounts)
	if err != nil {
		return nil, err
	}
	shares, err := m.keeper.MultiAssetDeposit(ctx, msg.Sender, msg.Receiver, msg.Denoms, amounts)
	if err != nil {
		return nil, err
	}
	return &types.MsgDepositResponse{Shares: shares.String()}, nil
}

// Withdraw handles MsgWithdraw
func (m *MsgServer) Withdraw(ctx context.Context, msg *types.MsgWithdraw) (*types.MsgWithdrawResponse, error) {
	assets, err := types.ParsePositiveInt("assets", msg.Assets)
	if err != nil {
		return nil, err
	}
	shares, err := m.keeper.Withdraw(ctx, msg.Sender, msg.Receiver, msg.Owner, assets)
	if err != nil {
		return nil, err
	}
	return &types.MsgWithdrawResponse{Shares: shares.String()}, nil
}

// Redeem handles MsgRedeem
func (m *MsgServer) Redeem(ctx context.Context, msg *types.MsgRedeem) (*types.MsgRedeemResponse, error) {
	shares, err := types.ParsePositiveInt("shares", msg.Shares)
	if err != nil {
		return nil, err
	}
	assets, err := m.keeper.Redeem(ctx, msg.Sender, msg.Receiver, msg.Owner, shares)
	if err != nil {
		return nil, err
	}
	return &types.MsgRedeemResponse{Assets: assets.String()}, nil
}

// Transfer handles MsgTransfer
func (m *MsgServer) Transfer(ctx context.Context, msg *types.MsgTransfer) (*types.MsgEmptyResponse, error) {
	shares, err := types.ParsePositiveInt("shares", msg.Shares)
	if err != nil {
		return nil, err
	}
	if err := m.keeper.Transfer(ctx, msg.Sender, msg.Recipient, shares); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// TransferFrom handles MsgTransferFrom
func (m *MsgServer) TransferFrom(ctx context.Context, msg *types.MsgTransferFrom) (*types.MsgEmptyResponse, error) {
	shares, err := types.ParsePositiveInt("shares", msg.Shares)
	if err != nil {
		return nil, err
	}
	if err := m.keeper.TransferFrom(ctx, msg.Spender, msg.From, msg.To, shares); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// Approve handles MsgApprove
func (m *MsgServer) Approve(ctx context.Context, msg *types.MsgApprove) (*types.MsgEmptyResponse, error) {
	shares, ok := math.NewIntFromString(msg.Shares)
	if !ok || shares.IsNegative() {
		return nil, types.ErrZeroAmount.Wrapf("invalid allowance %q", msg.Shares)
	}
	if err := m.keeper.Approve(ctx, msg.Owner, msg.Spender, shares); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// Accrue handles MsgAccrue
func (m *MsgServer) Accrue(ctx context.Context, msg *types.MsgAccrue) (*types.MsgEmptyResponse, error) {
	if _, err := m.keeper.AccrueFees(ctx, msg.Holder); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// RequestWithdrawal handles MsgRequestWithdrawal
func (m *MsgServer) RequestWithdrawal(ctx context.Context, msg *types.MsgRequestWithdrawal) (*types.MsgRequestWithdrawalResponse, error) {
	assets, err := types.ParsePositiveInt("assets", msg.Assets)
	if err != nil {
		return nil, err
	}
	req, err := m.keeper.RequestWithdrawal(ctx, msg.Sender, msg.Holder, assets)
	if err != nil {
		return nil, err
	}
	return &types.MsgRequestWithdrawalResponse{
		Shares:    req.Shares.String(),
		ExpiresAt: req.ExpiresAt,
	}, nil
}

// FinalizeWithdrawal handles MsgFinalizeWithdrawal
func (m *MsgServer) FinalizeWithdrawal(ctx context.Context, msg *types.MsgFinalizeWithdrawal) (*types.MsgFinalizeWithdrawalResponse, error) {
	p, err := m.keeper.FinalizeWithdrawal(ctx, msg.Sender, msg.Holder, msg.Receiver)
	if err != nil {
		return nil, err
	}
	return &types.MsgFinalizeWithdrawalResponse{
		Gross: p.Gross.String(),
		Fee:   p.Fee.String(),
		Net:   p.Net.String(),
	}, nil
}

// ClearWithdrawal handles MsgClearWithdrawal
func (m *MsgServer) ClearWithdrawal(ctx context.Context, msg *types.MsgClearWithdrawal) (*types.MsgEmptyResponse, error) {
	if err := m.keeper.ClearRequest(ctx, msg.Holder, msg.Holder); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// SetDepositCap handles MsgSetDepositCap
func (m *MsgServer) SetDepositCap(ctx context.Context, msg *types.MsgSetDepositCap) (*types.MsgEmptyResponse, error) {
	limit, ok := math.NewIntFromString(msg.Cap)
	if !ok {
		return nil, types.ErrInvalidParams.Wrapf("invalid cap %q", msg.Cap)
	}
	if err := m.keeper.SetDepositCap(ctx, msg.Authority, msg.Holder, limit); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// CreateCrossDomainRequest handles MsgCreateCrossDomainRequest
func (m *MsgServer) CreateCrossDomainRequest(ctx context.Context, msg *types.MsgCreateCrossDomainRequest) (*types.MsgCreateCrossDomainRequestResponse, error) {
	action, err := types.ParseActionType(msg.Action)
	if err != nil {
		return nil, err
	}
	req, err := m.keeper.CreateRequest(ctx, msg.Initiator, action, msg.Payload, msg.Options)
	if err != nil {
		return nil, err
	}
	return &types.MsgCreateCrossDomainRequestResponse{Handle: req.Handle}, nil
}

// ReplyCrossDomain handles MsgReplyCrossDomain
func (m *MsgServer) ReplyCrossDomain(ctx context.Context, msg *types.MsgReplyCrossDomain) (*types.MsgEmptyResponse, error) {
	values := make([]math.Int, len(msg.RemoteValues))
	for i, s := range msg.RemoteValues {
		v, ok := math.NewIntFromString(s)
		if !ok {
			return nil, types.ErrInvalidRequestState.Wrapf("invalid remote value %q", s)
		}
		values[i] = v
	}
	if err := m.keeper.Reply(ctx, msg.Coordinator, msg.Handle, values, msg.Success); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// FinalizeCrossDomain handles MsgFinalizeCrossDomain
func (m *MsgServer) FinalizeCrossDomain(ctx context.Context, msg *types.MsgFinalizeCrossDomain) (*types.MsgEmptyResponse, error) {
	if err := m.keeper.FinalizeRequest(ctx, msg.Sender, msg.Handle); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// RecoverCrossDomain handles MsgRecoverCrossDomain
func (m *MsgServer) RecoverCrossDomain(ctx context.Context, msg *types.MsgRecoverCrossDomain) (*types.MsgEmptyResponse, error) {
	if err := m.keeper.RecoverRequest(ctx, msg.Authority, msg.Handle); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// UpdateParams handles MsgUpdateParams
func (m *MsgServer) UpdateParams(ctx context.Context, msg *types.MsgUpdateParams) (*types.MsgEmptyResponse, error) {
	if err := m.keeper.UpdateParams(ctx, msg.Authority, msg.Params); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// Pause handles MsgPause
func (m *MsgServer) Pause(ctx context.Context, msg *types.MsgPause) (*types.MsgEmptyResponse, error) {
	if err := m.keeper.Pause(ctx, msg.Authority); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// Unpause handles MsgUnpause
func (m *MsgServer) Unpause(ctx context.Context, msg *types.MsgUnpause) (*types.MsgEmptyResponse, error) {
	if err := m.keeper.Unpause(ctx, msg.Authority); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// FlagModule handles MsgFlagModule
func (m *MsgServer) FlagModule(ctx context.Context, msg *types.MsgFlagModule) (*types.MsgEmptyResponse, error) {
	if err := m.keeper.FlagModule(ctx, msg.Authority, msg.Module, msg.Unsafe); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

func parseAmounts(raw []string) ([]math.Int, error) {
	out := make([]math.Int, len(raw))
	for i, s := range raw {
		v, err := types.ParsePositiveInt("amount", s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
