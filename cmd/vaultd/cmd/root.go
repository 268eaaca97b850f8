package cmd

import (
	"io"
	"os"
	"time"

	"cosmossdk.io/log"
	confixcmd "cosmossdk.io/tools/confix/cmd"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/config"
	"github.com/cosmos/cosmos-sdk/client/debug"
	"github.com/cosmos/cosmos-sdk/client/keys"
	"github.com/cosmos/cosmos-sdk/client/pruning"
	"github.com/cosmos/cosmos-sdk/client/snapshot"
	"github.com/cosmos/cosmos-sdk/server"
	serverconfig "github.com/cosmos/cosmos-sdk/server/config"
	servertypes "github.com/cosmos/cosmos-sdk/server/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	authcli "github.com/cosmos/cosmos-sdk/x/auth/client/cli"
	"github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/cosmos/cosmos-sdk/x/crisis"
	genutilcli "github.com/cosmos/cosmos-sdk/x/genutil/client/cli"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	tmcfg "github.com/cometbft/cometbft/config"

	"github.com/openalpha/hwmvault/app"
	"github.com/openalpha/hwmvault/offchain/relayer"
	vaultcli "github.com/openalpha/hwmvault/x/vault/client/cli"
)

// flagRelayerNATS is the app.toml key for the node-side query publisher
const flagRelayerNATS = "relayer.nats-url"

// NewRootCmd creates a new root command for vaultd
func NewRootCmd() *cobra.Command {
	// Set config
	initSDKConfig()

	tempApp := app.NewApp(
		log.NewNopLogger(),
		dbm.NewMemDB(),
		nil,
		false,
		nil,
	)
	encodingConfig := app.MakeEncodingConfig()

	initClientCtx := client.Context{}.
		WithCodec(encodingConfig.Codec).
		WithInterfaceRegistry(encodingConfig.InterfaceRegistry).
		WithTxConfig(encodingConfig.TxConfig).
		WithLegacyAmino(encodingConfig.Amino).
		WithInput(os.Stdin).
		WithAccountRetriever(types.AccountRetriever{}).
		WithHomeDir(app.DefaultNodeHome).
		WithViper("HWMVAULT")

	rootCmd := &cobra.Command{
		Use:   "vaultd",
		Short: "hwmvault - pooled investment vault with high-water-mark fees",
		Long: `hwmvault runs a share-accounted investment pool. Holders deposit a base asset
for shares, pay performance fees only on gains above their own high-water mark,
and can value positions held in linked pools on other domains.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			initClientCtx = initClientCtx.WithCmdContext(cmd.Context())
			initClientCtx, err := client.ReadPersistentCommandFlags(initClientCtx, cmd.Flags())
			if err != nil {
				return err
			}

			initClientCtx, err = config.ReadFromClientConfig(initClientCtx)
			if err != nil {
				return err
			}

			if err := client.SetCmdClientContextHandler(initClientCtx, cmd); err != nil {
				return err
			}

			customAppTemplate, customAppConfig := initAppConfig()
			customCMTConfig := initCometBFTConfig()

			return server.InterceptConfigsPreRunHandler(cmd, customAppTemplate, customAppConfig, customCMTConfig)
		},
	}

	initRootCmd(rootCmd, encodingConfig, tempApp.BasicModuleManager)

	return rootCmd
}

func initRootCmd(rootCmd *cobra.Command, encodingConfig app.EncodingConfig, basicManager module.BasicManager) {
	rootCmd.AddCommand(
		genutilcli.InitCmd(basicManager, app.DefaultNodeHome),
		debug.Cmd(),
		confixcmd.ConfigCommand(),
		pruning.Cmd(newApp, app.DefaultNodeHome),
		snapshot.Cmd(newApp),
	)

	server.AddCommands(rootCmd, app.DefaultNodeHome, newApp, appExport, addModuleInitFlags)

	// Add genesis commands
	genesisCmd := genutilcli.Commands(encodingConfig.TxConfig, basicManager, app.DefaultNodeHome)
	rootCmd.AddCommand(genesisCmd)

	// Add query commands
	queryCmd := &cobra.Command{
		Use:                        "query",
		Aliases:                    []string{"q"},
		Short:                      "Querying subcommands",
		DisableFlagParsing:         false,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}
	queryCmd.AddCommand(
		authcli.QueryTxsByEventsCmd(),
		authcli.QueryTxCmd(),
		vaultcli.GetQueryCmd(),
	)
	rootCmd.AddCommand(queryCmd)

	// Add transaction commands
	txCmd := &cobra.Command{
		Use:                        "tx",
		Short:                      "Transactions subcommands",
		DisableFlagParsing:         false,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}
	txCmd.AddCommand(
		authcli.GetSignCommand(),
		authcli.GetBroadcastCommand(),
		vaultcli.GetTxCmd(),
	)
	rootCmd.AddCommand(txCmd)

	// Add keybase commands
	rootCmd.AddCommand(
		keys.Commands(),
		RelayerCmd(),
		VersionCmd(),
	)
}

func addModuleInitFlags(startCmd *cobra.Command) {
	crisis.AddModuleInitFlags(startCmd)
}

// newApp creates a new Cosmos SDK app. When relayer.nats-url is configured,
// cross-domain queries are also published to the relayer bus.
func newApp(
	logger log.Logger,
	db dbm.DB,
	traceStore io.Writer,
	appOpts servertypes.AppOptions,
) servertypes.Application {
	baseappOptions := server.DefaultBaseappOptions(appOpts)

	vaultApp := app.NewApp(
		logger,
		db,
		traceStore,
		true,
		appOpts,
		baseappOptions...,
	)

	if url, _ := appOpts.Get(flagRelayerNATS).(string); url != "" {
		nc, err := nats.Connect(url, nats.Name("hwmvault-node"), nats.MaxReconnects(-1))
		if err != nil {
			logger.Error("relayer bus unavailable, cross-domain queries stay local", "url", url, "error", err)
		} else {
			vaultApp.Messenger.OnSend(relayer.NewQueryPublisher(nc, logger).Forward)
			logger.Info("publishing cross-domain queries", "url", url, "subject", relayer.QuerySubject)
		}
	}

	return vaultApp
}

// appExport creates a new app (optionally at a given height) and exports state
func appExport(
	logger log.Logger,
	db dbm.DB,
	traceStore io.Writer,
	height int64,
	forZeroHeight bool,
	jailAllowedAddrs []string,
	appOpts servertypes.AppOptions,
	modulesToExport []string,
) (servertypes.ExportedApp, error) {
	// Create app without loading latest version
	vaultApp := app.NewApp(
		logger,
		db,
		traceStore,
		height == -1,
		appOpts,
	)

	if height != -1 {
		if err := vaultApp.LoadHeight(height); err != nil {
			return servertypes.ExportedApp{}, err
		}
	}

	return vaultApp.ExportAppStateAndValidators(modulesToExport)
}

// initSDKConfig initializes the SDK config
func initSDKConfig() {
	// Set prefixes (optional, using defaults)
}

// RelayerAppConfig is the [relayer] section of app.toml
type RelayerAppConfig struct {
	NATSURL string `mapstructure:"nats-url"`
}

const relayerConfigTemplate = `
###############################################################################
###                           Relayer Configuration                         ###
###############################################################################

[relayer]

# NATS server cross-domain queries are published to. Empty keeps them local.
nats-url = "{{ .Relayer.NATSURL }}"
`

// initAppConfig returns custom app config template and config
func initAppConfig() (string, interface{}) {
	type CustomAppConfig struct {
		serverconfig.Config

		Relayer RelayerAppConfig `mapstructure:"relayer"`
	}

	customAppConfig := CustomAppConfig{
		Config: *serverconfig.DefaultConfig(),
	}

	customAppTemplate := serverconfig.DefaultConfigTemplate + relayerConfigTemplate

	return customAppTemplate, customAppConfig
}

// initCometBFTConfig returns the CometBFT config. Vault operations are not
// latency sensitive, so blocks are paced for steady one-second commits.
func initCometBFTConfig() *tmcfg.Config {
	cfg := tmcfg.DefaultConfig()

	// ===========================================
	// Consensus Configuration
	// ===========================================
	cfg.Consensus.TimeoutPropose = time.Second
	cfg.Consensus.TimeoutPrevote = 500 * time.Millisecond
	cfg.Consensus.TimeoutPrecommit = 500 * time.Millisecond
	cfg.Consensus.TimeoutCommit = time.Second

	// ===========================================
	// Mempool Configuration
	// ===========================================
	cfg.Mempool.Size = 5000
	cfg.Mempool.Recheck = true

	return cfg
}

// VersionCmd returns a command to print the version
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("hwmvault v0.1.0")
		},
	}
}
