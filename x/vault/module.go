package vault

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"
	"github.com/spf13/cobra"

	"github.com/openalpha/hwmvault/x/vault/client/cli"
	"github.com/openalpha/hwmvault/x/vault/keeper"
	"github.com/openalpha/hwmvault/x/vault/types"
)

const (
	ModuleName = types.ModuleName
)

var (
	_ module.AppModuleBasic = AppModuleBasic{}
	_ appmodule.AppModule   = AppModule{}
)

// AppModuleBasic defines the basic application module for the vault
type AppModuleBasic struct{}

// Name returns the module's name
func (AppModuleBasic) Name() string {
	return ModuleName
}

// RegisterLegacyAminoCodec registers the module's types on the given LegacyAmino codec
func (AppModuleBasic) RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&types.MsgDeposit{}, "vault/MsgDeposit", nil)
	cdc.RegisterConcrete(&types.MsgMint{}, "vault/MsgMint", nil)
	cdc.RegisterConcrete(&types.MsgMultiAssetDeposit{}, "vault/MsgMultiAssetDeposit", nil)
	cdc.RegisterConcrete(&types.MsgWithdraw{}, "vault/MsgWithdraw", nil)
	cdc.RegisterConcrete(&types.MsgRedeem{}, "vault/MsgRedeem", nil)
	cdc.RegisterConcrete(&types.MsgTransfer{}, "vault/MsgTransfer", nil)
	cdc.RegisterConcrete(&types.MsgTransferFrom{}, "vault/MsgTransferFrom", nil)
	cdc.RegisterConcrete(&types.MsgApprove{}, "vault/MsgApprove", nil)
	cdc.RegisterConcrete(&types.MsgAccrue{}, "vault/MsgAccrue", nil)
	cdc.RegisterConcrete(&types.MsgRequestWithdrawal{}, "vault/MsgRequestWithdrawal", nil)
	cdc.RegisterConcrete(&types.MsgFinalizeWithdrawal{}, "vault/MsgFinalizeWithdrawal", nil)
	cdc.RegisterConcrete(&types.MsgClearWithdrawal{}, "vault/MsgClearWithdrawal", nil)
	cdc.RegisterConcrete(&types.MsgSetDepositCap{}, "vault/MsgSetDepositCap", nil)
	cdc.RegisterConcrete(&types.MsgCreateCrossDomainRequest{}, "vault/MsgCreateCrossDomainRequest", nil)
	cdc.RegisterConcrete(&types.MsgReplyCrossDomain{}, "vault/MsgReplyCrossDomain", nil)
	cdc.RegisterConcrete(&types.MsgFinalizeCrossDomain{}, "vault/MsgFinalizeCrossDomain", nil)
	cdc.RegisterConcrete(&types.MsgRecoverCrossDomain{}, "vault/MsgRecoverCrossDomain", nil)
	cdc.RegisterConcrete(&types.MsgUpdateParams{}, "vault/MsgUpdateParams", nil)
	cdc.RegisterConcrete(&types.MsgPause{}, "vault/MsgPause", nil)
	cdc.RegisterConcrete(&types.MsgUnpause{}, "vault/MsgUnpause", nil)
	cdc.RegisterConcrete(&types.MsgFlagModule{}, "vault/MsgFlagModule", nil)
}

// RegisterInterfaces registers the module's interface types
func (AppModuleBasic) RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	types.RegisterInterfaces(registry)
}

// DefaultGenesis returns default genesis state as raw bytes
func (AppModuleBasic) DefaultGenesis(cdc codec.JSONCodec) json.RawMessage {
	return types.MustMarshalGenesis(types.DefaultGenesis())
}

// ValidateGenesis performs genesis state validation
func (AppModuleBasic) ValidateGenesis(cdc codec.JSONCodec, config client.TxEncodingConfig, bz json.RawMessage) error {
	var gs types.GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return fmt.Errorf("failed to unmarshal %s genesis state: %w", ModuleName, err)
	}
	return gs.Validate()
}

// RegisterGRPCGatewayRoutes registers the gRPC Gateway routes for the module
func (AppModuleBasic) RegisterGRPCGatewayRoutes(clientCtx client.Context, mux *runtime.ServeMux) {
	// TODO: register gateway routes once the query service has proto definitions
}

// GetTxCmd returns the root tx command
func (AppModuleBasic) GetTxCmd() *cobra.Command {
	return cli.GetTxCmd()
}

// GetQueryCmd returns the root query command
func (AppModuleBasic) GetQueryCmd() *cobra.Command {
	return cli.GetQueryCmd()
}

// AppModule implements an application module for the vault
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object
func NewAppModule(k *keeper.Keeper) AppModule {
	return AppModule{
		AppModuleBasic: AppModuleBasic{},
		keeper:         k,
	}
}

// Name returns the module's name
func (am AppModule) Name() string {
	return ModuleName
}

// RegisterServices registers module services
func (am AppModule) RegisterServices(cfg module.Configurator) {
	types.RegisterMsgServer(cfg.MsgServer(), keeper.NewMsgServerImpl(am.keeper))
}

// InitGenesis loads genesis state
func (am AppModule) InitGenesis(ctx sdk.Context, cdc codec.JSONCodec, data json.RawMessage) {
	var gs types.GenesisState
	if err := json.Unmarshal(data, &gs); err != nil {
		panic(fmt.Errorf("failed to unmarshal %s genesis state: %w", ModuleName, err))
	}
	if err := am.keeper.InitGenesis(ctx, gs); err != nil {
		panic(err)
	}
}

// ExportGenesis exports the module state
func (am AppModule) ExportGenesis(ctx sdk.Context, cdc codec.JSONCodec) json.RawMessage {
	return types.MustMarshalGenesis(am.keeper.ExportGenesis(ctx))
}

// IsOnePerModuleType implements the depinject.OnePerModuleType interface
func (am AppModule) IsOnePerModuleType() {}

// IsAppModule implements the appmodule.AppModule interface
func (am AppModule) IsAppModule() {}

// EndBlocker expires stale cross-domain requests
func (am AppModule) EndBlocker(ctx sdk.Context) error {
	_, err := am.keeper.EndBlocker(ctx)
	return err
}
