package sdk

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/hwmvault/api"
	"github.com/openalpha/hwmvault/api/types"
	"github.com/openalpha/hwmvault/metrics"
	"github.com/openalpha/hwmvault/x/vault/keeper"
	vaulttypes "github.com/openalpha/hwmvault/x/vault/types"
)

var holder = sdktypes.AccAddress([]byte("holder______________"))

func setupClient(t *testing.T) (*Client, *api.Standalone) {
	t.Helper()
	pool, err := api.NewStandalone(vaulttypes.DefaultParams(), authtypes.NewModuleAddress("gov").String(), log.NewNopLogger())
	require.NoError(t, err)

	pool.Bank.Fund(holder, sdktypes.NewCoins(sdktypes.NewInt64Coin(vaulttypes.DefaultDenom, 3_000_000)))
	require.NoError(t, pool.Do(func(ctx sdktypes.Context, k *keeper.Keeper) error {
		_, err := k.Deposit(ctx, holder.String(), holder.String(), math.NewInt(3_000_000))
		return err
	}))

	cfg := api.DefaultConfig()
	cfg.DisableRateLimit = true
	srv := api.NewServer(cfg, pool, metrics.NewCollector(prometheus.NewRegistry()), log.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	srv.StartFeeds(ctx)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return NewClient(ts.URL), pool
}

func TestClientReads(t *testing.T) {
	c, _ := setupClient(t)
	ctx := context.Background()

	v, err := c.Vault(ctx)
	require.NoError(t, err)
	require.Equal(t, "3000000", v.TotalAssets)

	p, err := c.Price(ctx)
	require.NoError(t, err)
	require.Equal(t, "1000000", p.PricePerShare)

	h, err := c.Holder(ctx, holder.String())
	require.NoError(t, err)
	require.Equal(t, "3000000000000", h.Balance)

	w, err := c.Withdrawals(ctx, 0, 0)
	require.NoError(t, err)
	require.Zero(t, w.Total)
}

func TestClientErrors(t *testing.T) {
	c, _ := setupClient(t)
	ctx := context.Background()

	_, err := c.Request(ctx, "unknown")
	require.ErrorIs(t, err, types.ErrNotFound)

	_, err = c.Holder(ctx, "garbage")
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestClientSubscribe(t *testing.T) {
	c, _ := setupClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updates, err := c.Subscribe(ctx, "price")
	require.NoError(t, err)

	select {
	case u := <-updates:
		require.Equal(t, "subscribed", u.Type)
		require.Equal(t, "price", u.Channel)
	case <-ctx.Done():
		t.Fatal("no subscription confirmation")
	}
}

func TestUpdateDecodesPayload(t *testing.T) {
	var u Update
	require.NoError(t, json.Unmarshal([]byte(`{"type":"update","channel":"price","data":{"price_per_share":"5"}}`), &u))
	var p types.PriceResponse
	require.NoError(t, json.Unmarshal(u.Data, &p))
	require.Equal(t, "5", p.PricePerShare)
}
