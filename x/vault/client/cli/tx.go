package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/hwmvault/x/vault/types"
)

const (
	flagReceiver = "receiver"
	flagOwner    = "owner"
	flagOptions  = "options"
)

// GetTxCmd returns the transaction commands for the vault module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Vault transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdDeposit(),
		CmdMint(),
		CmdMultiAssetDeposit(),
		CmdWithdraw(),
		CmdRedeem(),
		CmdTransfer(),
		CmdApprove(),
		CmdAccrue(),
		CmdRequestWithdrawal(),
		CmdFinalizeWithdrawal(),
		CmdClearWithdrawal(),
		CmdCreateRequest(),
		CmdFinalizeRequest(),
	)

	return cmd
}

// sendTx validates msg and broadcasts it from the --from key
func sendTx(cmd *cobra.Command, build func(from string) sdk.Msg) error {
	clientCtx, err := client.GetClientTxContext(cmd)
	if err != nil {
		return err
	}
	msg := build(clientCtx.GetFromAddress().String())
	if v, ok := msg.(sdk.HasValidateBasic); ok {
		if err := v.ValidateBasic(); err != nil {
			return err
		}
	}
	return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
}

// receiverOr returns --receiver, defaulting to from
func receiverOr(cmd *cobra.Command, from string) string {
	if r, _ := cmd.Flags().GetString(flagReceiver); r != "" {
		return r
	}
	return from
}

func ownerOr(cmd *cobra.Command, from string) string {
	if o, _ := cmd.Flags().GetString(flagOwner); o != "" {
		return o
	}
	return from
}

// CmdDeposit returns the command to deposit base assets
func CmdDeposit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit [assets]",
		Short: "Deposit base assets and receive shares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgDeposit{Sender: from, Receiver: receiverOr(cmd, from), Assets: args[0]}
			})
		},
	}
	cmd.Flags().String(flagReceiver, "", "Share recipient (defaults to sender)")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdMint returns the command to mint an exact share amount
func CmdMint() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint [shares]",
		Short: "Mint exactly the given shares, paying the rounded-up assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgMint{Sender: from, Receiver: receiverOr(cmd, from), Shares: args[0]}
			})
		},
	}
	cmd.Flags().String(flagReceiver, "", "Share recipient (defaults to sender)")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdMultiAssetDeposit returns the command to deposit several supported assets
func CmdMultiAssetDeposit() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "multi-deposit [coins]",
		Short:   "Deposit several supported assets in one transaction",
		Example: "multi-deposit 1000000uusdc,500000000000000000uweth",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coins, err := sdk.ParseCoinsNormalized(args[0])
			if err != nil {
				return fmt.Errorf("invalid coins: %w", err)
			}
			denoms := make([]string, len(coins))
			amounts := make([]string, len(coins))
			for i, c := range coins {
				denoms[i], amounts[i] = c.Denom, c.Amount.String()
			}
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgMultiAssetDeposit{Sender: from, Receiver: receiverOr(cmd, from), Denoms: denoms, Amounts: amounts}
			})
		},
	}
	cmd.Flags().String(flagReceiver, "", "Share recipient (defaults to sender)")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdWithdraw returns the command to withdraw exact assets
func CmdWithdraw() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw [assets]",
		Short: "Withdraw exactly the given assets, burning the rounded-up shares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgWithdraw{Sender: from, Receiver: receiverOr(cmd, from), Owner: ownerOr(cmd, from), Assets: args[0]}
			})
		},
	}
	cmd.Flags().String(flagReceiver, "", "Asset recipient (defaults to sender)")
	cmd.Flags().String(flagOwner, "", "Share owner (defaults to sender)")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRedeem returns the command to redeem exact shares
func CmdRedeem() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redeem [shares]",
		Short: "Redeem exactly the given shares for the rounded-down assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgRedeem{Sender: from, Receiver: receiverOr(cmd, from), Owner: ownerOr(cmd, from), Shares: args[0]}
			})
		},
	}
	cmd.Flags().String(flagReceiver, "", "Asset recipient (defaults to sender)")
	cmd.Flags().String(flagOwner, "", "Share owner (defaults to sender)")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdTransfer returns the command to transfer shares
func CmdTransfer() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer [recipient] [shares]",
		Short: "Transfer shares, carrying the sender's high-water mark",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgTransfer{Sender: from, Recipient: args[0], Shares: args[1]}
			})
		},
	}
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdApprove returns the command to set a share allowance
func CmdApprove() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve [spender] [shares]",
		Short: "Allow spender to move up to the given shares",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgApprove{Owner: from, Spender: args[0], Shares: args[1]}
			})
		},
	}
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdAccrue returns the command to checkpoint a holder's performance fee
func CmdAccrue() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accrue [holder]",
		Short: "Charge the performance fee on a holder's gain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgAccrue{Sender: from, Holder: args[0]}
			})
		},
	}
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRequestWithdrawal returns the command to queue a withdrawal
func CmdRequestWithdrawal() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request-withdrawal [assets]",
		Short: "Lock shares worth the given assets until the timelock expires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgRequestWithdrawal{Sender: from, Holder: ownerOr(cmd, from), Assets: args[0]}
			})
		},
	}
	cmd.Flags().String(flagOwner, "", "Holder (defaults to sender)")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdFinalizeWithdrawal returns the command to finalize a matured withdrawal
func CmdFinalizeWithdrawal() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finalize-withdrawal",
		Short: "Burn a matured request's shares and receive the net assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgFinalizeWithdrawal{Sender: from, Holder: ownerOr(cmd, from), Receiver: receiverOr(cmd, from)}
			})
		},
	}
	cmd.Flags().String(flagOwner, "", "Holder (defaults to sender)")
	cmd.Flags().String(flagReceiver, "", "Asset recipient (defaults to sender)")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdClearWithdrawal returns the command to cancel the sender's withdrawal request
func CmdClearWithdrawal() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-withdrawal",
		Short: "Cancel the pending withdrawal and unlock its shares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgClearWithdrawal{Holder: from}
			})
		},
	}
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdCreateRequest returns the command to open a cross-domain request
func CmdCreateRequest() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create-request [action] [payload-json]",
		Short:   "Defer an action until remote pool values are reported",
		Example: `create-request deposit '{"receiver":"cosmos1...","assets":"1000000"}'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := types.ParseActionType(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			var payload types.ActionPayload
			if err := json.Unmarshal([]byte(args[1]), &payload); err != nil {
				return fmt.Errorf("invalid payload: %w", err)
			}
			options, _ := cmd.Flags().GetString(flagOptions)
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgCreateCrossDomainRequest{
					Initiator: from,
					Action:    string(action),
					Payload:   payload,
					Options:   []byte(options),
				}
			})
		},
	}
	cmd.Flags().String(flagOptions, "", "Messenger options passed through unchanged")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdFinalizeRequest returns the command to finalize a fulfilled request
func CmdFinalizeRequest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finalize-request [handle]",
		Short: "Execute a fulfilled cross-domain request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendTx(cmd, func(from string) sdk.Msg {
				return &types.MsgFinalizeCrossDomain{Sender: from, Handle: args[0]}
			})
		},
	}
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
