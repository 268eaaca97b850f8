package keeper

import (
	"strconv"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BlockReport summarizes one EndBlocker pass
type BlockReport struct {
	Expired  int
	Matured  int
	Pending  int
	NAVError error
}

// EndBlocker expires cross-domain requests past their grace window and
// reports the withdrawal queue
func (k *Keeper) EndBlocker(ctx sdk.Context) (BlockReport, error) {
	start := time.Now()
	var report BlockReport

	expireStart := time.Now()
	report.Expired = k.ExpireRequests(ctx)
	expireDuration := time.Since(expireStart)

	queueStart := time.Now()
	report.Pending = len(k.PendingWithdrawals(ctx))
	report.Matured = len(k.MaturedWithdrawals(ctx, ctx.BlockTime()))
	queueDuration := time.Since(queueStart)

	// lenient so a broken module shows up in logs instead of halting the block
	if _, err := k.Aggregate(ctx, k.IdleBalance(ctx), PolicyLenient); err != nil {
		report.NAVError = err
	}

	k.logger.Debug("vault EndBlocker completed",
		"block", ctx.BlockHeight(),
		"total_ms", time.Since(start).Milliseconds(),
		"expire_ms", expireDuration.Milliseconds(),
		"queue_ms", queueDuration.Milliseconds(),
		"requests_expired", report.Expired,
		"withdrawals_pending", report.Pending,
		"withdrawals_matured", report.Matured,
	)

	if report.Expired > 0 {
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				"vault_endblock",
				sdk.NewAttribute("block_height", strconv.FormatInt(ctx.BlockHeight(), 10)),
				sdk.NewAttribute("requests_expired", strconv.Itoa(report.Expired)),
			),
		)
	}
	return report, nil
}
