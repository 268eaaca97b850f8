package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"

	"github.com/openalpha/hwmvault/x/vault/keeper"
	"github.com/openalpha/hwmvault/x/vault/types"
)

// GetQueryCmd returns the cli query commands for the vault module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Querying commands for the vault module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryParams(),
		CmdQuerySupply(),
		CmdQueryHolder(),
		CmdQueryWithdrawal(),
		CmdQueryRequest(),
	)

	return cmd
}

func prefixed(prefix []byte, id string) []byte {
	return append(append([]byte{}, prefix...), []byte(id)...)
}

// queryRaw reads key from the vault store and prints it as indented JSON
func queryRaw(cmd *cobra.Command, key []byte, what string) error {
	clientCtx, err := client.GetClientQueryContext(cmd)
	if err != nil {
		return err
	}
	bz, _, err := clientCtx.QueryStore(key, types.StoreKey)
	if err != nil {
		return err
	}
	if len(bz) == 0 {
		return fmt.Errorf("%s not found", what)
	}
	var v json.RawMessage = bz
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return nil
}

// CmdQueryParams returns the command to query module parameters
func CmdQueryParams() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Query vault parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryRaw(cmd, keeper.ParamsKey, "params")
		},
	}
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQuerySupply returns the command to query total share supply
func CmdQuerySupply() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supply",
		Short: "Query total share supply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryRaw(cmd, keeper.SupplyKey, "supply")
		},
	}
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryHolder returns the command to query a holder record
func CmdQueryHolder() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holder [address]",
		Short: "Query a holder's balance, high-water mark and capacity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryRaw(cmd, prefixed(keeper.HolderKeyPrefix, args[0]), "holder "+args[0])
		},
	}
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryWithdrawal returns the command to query a pending withdrawal
func CmdQueryWithdrawal() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdrawal [holder]",
		Short: "Query a holder's pending withdrawal request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryRaw(cmd, prefixed(keeper.WithdrawalKeyPrefix, args[0]), "withdrawal for "+args[0])
		},
	}
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryRequest returns the command to query a cross-domain request
func CmdQueryRequest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request [handle]",
		Short: "Query a cross-domain request by handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryRaw(cmd, prefixed(keeper.RequestKeyPrefix, args[0]), "request "+args[0])
		},
	}
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}
