package app

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	vaultkeeper "github.com/openalpha/hwmvault/x/vault/keeper"
	vaulttypes "github.com/openalpha/hwmvault/x/vault/types"
)

func TestBuildSnapshot(t *testing.T) {
	params := vaulttypes.DefaultParams()
	params.FeeRecipient = "pool-treasury"
	summary := &vaultkeeper.VaultSummary{
		TotalAssets:   math.NewInt(3_000_000),
		TotalSupply:   math.NewInt(3_000_000_000_000),
		PricePerShare: math.NewInt(1_000_000),
		Healthy:       true,
		Params:        params,
	}
	report := vaultkeeper.BlockReport{Expired: 1, Pending: 2, Matured: 1}
	requests := []vaulttypes.CrossDomainRequest{
		{Handle: "a", Status: vaulttypes.RequestStatusCreated},
		{Handle: "b", Status: vaulttypes.RequestStatusCreated},
		{Handle: "c", Status: vaulttypes.RequestStatusExpired},
	}
	balances := map[string]math.Int{"pool-treasury": math.NewInt(42)}

	s := buildSnapshot(7, summary, report, requests, func(addr string) math.Int { return balances[addr] })

	require.Equal(t, int64(7), s.Height)
	require.Equal(t, uint32(12), s.ShareDecimals)
	require.Equal(t, 2, s.RequestsByStatus["created"])
	require.Equal(t, 1, s.RequestsByStatus["expired"])
	require.Equal(t, 0, s.RequestsByStatus["finalized"])
	require.Equal(t, 2, s.PendingWithdrawals)
	require.Equal(t, "42", s.FeeShares[feeLabelPool].String())
	_, ok := s.FeeShares[feeLabelProtocol]
	require.False(t, ok)
}
