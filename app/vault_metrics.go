package app

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/metrics"
	vaultkeeper "github.com/openalpha/hwmvault/x/vault/keeper"
	vaulttypes "github.com/openalpha/hwmvault/x/vault/types"
)

// Fee recipient labels used on the fee share gauge
const (
	feeLabelPool     = "pool"
	feeLabelProtocol = "protocol"
)

// vaultSnapshot samples the pool for the metrics collector
func (app *App) vaultSnapshot(ctx sdk.Context, report vaultkeeper.BlockReport) (metrics.VaultSnapshot, error) {
	summary, err := app.VaultQuery.Vault(ctx)
	if err != nil {
		return metrics.VaultSnapshot{}, err
	}
	return buildSnapshot(ctx.BlockHeight(), summary, report,
		app.VaultKeeper.GetAllCrossDomainRequests(ctx),
		func(addr string) math.Int { return app.VaultKeeper.BalanceOf(ctx, addr) },
	), nil
}

func buildSnapshot(
	height int64,
	summary *vaultkeeper.VaultSummary,
	report vaultkeeper.BlockReport,
	requests []vaulttypes.CrossDomainRequest,
	balanceOf func(addr string) math.Int,
) metrics.VaultSnapshot {
	params := summary.Params
	s := metrics.VaultSnapshot{
		Height:             height,
		NAV:                summary.TotalAssets,
		Supply:             summary.TotalSupply,
		Price:              summary.PricePerShare,
		AssetDecimals:      params.AssetDecimals,
		ShareDecimals:      params.ShareDecimals(),
		Healthy:            summary.Healthy,
		FailedModules:      summary.FailedModules,
		PendingWithdrawals: report.Pending,
		MaturedWithdrawals: report.Matured,
		ExpiredRequests:    report.Expired,
		RequestsByStatus:   make(map[string]int),
		FeeShares:          make(map[string]math.Int),
	}

	// every status is reported so drained gauges go back to zero
	for _, status := range []vaulttypes.RequestStatus{
		vaulttypes.RequestStatusCreated,
		vaulttypes.RequestStatusFulfilled,
		vaulttypes.RequestStatusFinalized,
		vaulttypes.RequestStatusExpired,
		vaulttypes.RequestStatusRecovered,
	} {
		s.RequestsByStatus[string(status)] = 0
	}
	for _, r := range requests {
		s.RequestsByStatus[string(r.Status)]++
	}

	if params.FeeRecipient != "" {
		s.FeeShares[feeLabelPool] = balanceOf(params.FeeRecipient)
	}
	if params.ProtocolFeeRecipient != "" {
		s.FeeShares[feeLabelProtocol] = balanceOf(params.ProtocolFeeRecipient)
	}
	return s
}
