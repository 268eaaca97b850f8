package app

import (
	"context"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gorilla/mux"

	vaultapi "github.com/openalpha/hwmvault/api"
	"github.com/openalpha/hwmvault/api/handlers"
	"github.com/openalpha/hwmvault/api/middleware"
	"github.com/openalpha/hwmvault/api/websocket"
	"github.com/openalpha/hwmvault/metrics"
)

const vaultBroadcastInterval = time.Second

// registerVaultAPI serves the vault REST routes and the /v1/vault/ws feed on
// the node's API router, reading the latest committed state.
func (app *App) registerVaultAPI(r *mux.Router, logger log.Logger) {
	svc := vaultapi.NewKeeperService(app.VaultKeeper, func() (sdk.Context, error) {
		return app.CreateQueryContext(0, false)
	})
	collector := metrics.GetCollector()
	handlers.NewVaultHandler(svc).RegisterRoutes(r, middleware.Metrics(collector))

	hub := websocket.NewHub(websocket.DefaultHubConfig(), collector, logger)
	go hub.Run(context.Background())
	go websocket.NewBroadcaster(hub, svc, vaultBroadcastInterval, logger).Run(context.Background())
	r.HandleFunc("/v1/vault/ws", hub.ServeWS)
}
