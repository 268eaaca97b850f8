package metrics

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestToFloat(t *testing.T) {
	require.Equal(t, 1.5, ToFloat(math.NewInt(1_500_000), 6))
	require.Equal(t, 0.0, ToFloat(math.Int{}, 6))
	require.Equal(t, 42.0, ToFloat(math.NewInt(42), 0))
}

func TestRecordVault(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordVault(VaultSnapshot{
		Height:             12,
		NAV:                math.NewInt(2_500_000_000),
		Supply:             math.NewInt(2_000_000_000_000_000),
		Price:              math.NewInt(1_250_000),
		AssetDecimals:      6,
		ShareDecimals:      12,
		FailedModules:      []string{"lending"},
		PendingWithdrawals: 3,
		MaturedWithdrawals: 1,
		ExpiredRequests:    2,
		RequestsByStatus:   map[string]int{"created": 4, "fulfilled": 1},
		FeeShares:          map[string]math.Int{"pool": math.NewInt(5_000_000_000_000)},
	})

	require.Equal(t, 12.0, testutil.ToFloat64(c.BlockHeight))
	require.Equal(t, 2500.0, testutil.ToFloat64(c.NAV))
	require.Equal(t, 2000.0, testutil.ToFloat64(c.TotalSupply))
	require.Equal(t, 1.25, testutil.ToFloat64(c.PricePerShare))
	require.Equal(t, 0.0, testutil.ToFloat64(c.Healthy))
	require.Equal(t, 1.0, testutil.ToFloat64(c.ModuleFailures.WithLabelValues("lending")))
	require.Equal(t, 3.0, testutil.ToFloat64(c.WithdrawalsPending))
	require.Equal(t, 2.0, testutil.ToFloat64(c.RequestsExpired))
	require.Equal(t, 4.0, testutil.ToFloat64(c.Requests.WithLabelValues("created")))
	require.Equal(t, 5.0, testutil.ToFloat64(c.FeeShares.WithLabelValues("pool")))
}

func TestRecordRelayerReply(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.RecordRelayerReply(true, 20)
	c.RecordRelayerReply(false, 20)
	c.RecordRelayerReply(true, 20)

	require.Equal(t, 2.0, testutil.ToFloat64(c.RelayerReplies.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.RelayerReplies.WithLabelValues("failure")))
}
