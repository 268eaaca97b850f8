package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/openalpha/hwmvault/api"
	"github.com/openalpha/hwmvault/metrics"
	"github.com/openalpha/hwmvault/x/vault/keeper"
	vaulttypes "github.com/openalpha/hwmvault/x/vault/types"
)

// Runs the vault API over an in-memory pool. Against a node, the same routes
// are served by vaultd's API server.
func main() {
	host := flag.String("host", "0.0.0.0", "Server host")
	port := flag.Int("port", 8080, "Server port")
	benchMode := flag.Bool("bench", false, "Disable rate limiting")
	seed := flag.Int64("seed", 1_000_000_000, "Base asset units deposited by a demo holder at start")
	yieldBps := flag.Int64("yield-bps", 1, "Simulated yield per interval in basis points of NAV")
	interval := flag.Duration("interval", 5*time.Second, "Simulated block interval")
	queue := flag.Bool("queue", true, "Enable the withdrawal queue")
	flag.Parse()

	logger := log.NewLogger(os.Stdout).With("module", "api-main")

	params := vaulttypes.DefaultParams()
	params.QueueEnabled = *queue
	params.FeeRecipient = sdk.AccAddress([]byte("fee_recipient_______")).String()
	pool, err := api.NewStandalone(params, authtypes.NewModuleAddress("gov").String(), logger)
	if err != nil {
		logger.Error("failed to create pool", "error", err)
		os.Exit(1)
	}
	if *seed > 0 {
		demo := sdk.AccAddress([]byte("demo_holder_________"))
		pool.Bank.Fund(demo, sdk.NewCoins(sdk.NewInt64Coin(params.Denom, *seed)))
		err := pool.Do(func(ctx sdk.Context, k *keeper.Keeper) error {
			_, err := k.Deposit(ctx, demo.String(), demo.String(), math.NewInt(*seed))
			return err
		})
		if err != nil {
			logger.Error("failed to seed pool", "error", err)
			os.Exit(1)
		}
		logger.Info("seeded pool", "holder", demo.String(), "assets", *seed)
	}

	config := api.DefaultConfig()
	config.Host = *host
	config.Port = *port
	config.DisableRateLimit = *benchMode
	server := api.NewServer(config, pool, metrics.GetCollector(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go simulate(ctx, pool, *yieldBps, *interval, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	logger.Info("vault API started",
		"addr", config.Host, "port", config.Port,
		"ws", "/ws", "health", "/health",
	)
	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
}

// simulate advances blocks and credits yield so subscribers see movement
func simulate(ctx context.Context, pool *api.Standalone, yieldBps int64, interval time.Duration, logger log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pool.Advance(interval)
			if yieldBps > 0 {
				v, err := pool.Vault(ctx)
				if err != nil {
					continue
				}
				nav, ok := math.NewIntFromString(v.TotalAssets)
				if ok && nav.IsPositive() {
					pool.Yield(nav.MulRaw(yieldBps).QuoRaw(10_000))
				}
			}
			err := pool.Do(func(ctx sdk.Context, k *keeper.Keeper) error {
				_, err := k.EndBlocker(ctx)
				return err
			})
			if err != nil {
				logger.Error("end block failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
