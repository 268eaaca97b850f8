package app

import (
	"encoding/json"
	"fmt"

	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	servertypes "github.com/cosmos/cosmos-sdk/server/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	vaulttypes "github.com/openalpha/hwmvault/x/vault/types"
)

// ExportAppStateAndValidators exports the auth, bank and vault state at the
// last committed height. modulesToExport limits the output when non-empty.
func (app *App) ExportAppStateAndValidators(modulesToExport []string) (servertypes.ExportedApp, error) {
	height := app.LastBlockHeight() + 1
	ctx := app.NewContextLegacy(true, cmtproto.Header{Height: height})

	wanted := func(name string) bool {
		if len(modulesToExport) == 0 {
			return true
		}
		for _, m := range modulesToExport {
			if m == name {
				return true
			}
		}
		return false
	}

	genesis := make(map[string]json.RawMessage)
	if wanted(authtypes.ModuleName) {
		genesis[authtypes.ModuleName] = app.appCodec.MustMarshalJSON(app.AccountKeeper.ExportGenesis(ctx))
	}
	if wanted(banktypes.ModuleName) {
		genesis[banktypes.ModuleName] = app.appCodec.MustMarshalJSON(app.BankKeeper.ExportGenesis(ctx))
	}
	if wanted(vaulttypes.ModuleName) {
		gs := app.VaultKeeper.ExportGenesis(ctx)
		if err := gs.Validate(); err != nil {
			return servertypes.ExportedApp{}, fmt.Errorf("exported vault state is invalid: %w", err)
		}
		genesis[vaulttypes.ModuleName] = vaulttypes.MustMarshalGenesis(gs)
	}

	appState, err := json.MarshalIndent(genesis, "", "  ")
	if err != nil {
		return servertypes.ExportedApp{}, err
	}

	return servertypes.ExportedApp{
		AppState:        appState,
		Height:          height,
		ConsensusParams: app.GetConsensusParams(ctx),
	}, nil
}
