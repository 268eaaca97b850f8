package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"
	"github.com/gorilla/mux"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/openalpha/hwmvault/metrics"
	"github.com/openalpha/hwmvault/offchain/relayer"
)

const flagEnvFile = "env-file"

// RelayerCmd groups the coordinator relayer commands
func RelayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "relayer",
		Short:                      "Cross-domain value relayer",
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}
	cmd.AddCommand(relayerStartCmd())
	return cmd
}

func relayerStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Collect remote values from NATS and reply as the pool coordinator",
		Long: `Subscribes to cross-domain queries and per-domain answers, and signs
MsgReplyCrossDomain with the --from key once every domain answered or the
reply deadline passed. Configuration is read from HWMVAULT_RELAYER_* variables
and an optional env file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			envFile, _ := cmd.Flags().GetString(flagEnvFile)
			cfg, err := relayer.LoadConfig(envFile)
			if err != nil {
				return err
			}
			if from := clientCtx.GetFromAddress().String(); from != cfg.Coordinator {
				return fmt.Errorf("--from %s does not match coordinator %s", from, cfg.Coordinator)
			}
			txf, err := tx.NewFactoryCLI(clientCtx, cmd.Flags())
			if err != nil {
				return err
			}

			logger := log.NewLogger(cmd.ErrOrStderr())

			store, err := relayer.OpenPendingStore(cfg.DataDir, cfg.DBBackend)
			if err != nil {
				return err
			}
			defer store.Close()

			nc, err := nats.Connect(cfg.NATSURL, nats.Name("hwmvault-relayer"), nats.MaxReconnects(-1))
			if err != nil {
				return fmt.Errorf("connect nats: %w", err)
			}
			defer nc.Drain()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := metrics.GetCollector()
			metricsSrv := serveMetrics(cfg.MetricsAddr, logger)
			defer shutdown(metricsSrv)

			submitter := relayer.NewChainSubmitter(clientCtx, txf, relayer.DefaultChainSubmitterConfig())
			r := relayer.New(cfg, store, submitter, collector, logger)
			if err := r.Start(ctx, nc); err != nil {
				return err
			}

			<-ctx.Done()
			logger.Info("relayer stopping")
			return r.Stop()
		},
	}

	cmd.Flags().String(flagEnvFile, ".env", "env file with HWMVAULT_RELAYER_* settings")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

func serveMetrics(addr string, logger log.Logger) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
