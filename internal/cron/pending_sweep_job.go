package cron

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/orders"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
)

type pendingSweeper interface {
	SweepExpiredPendingOrders(ctx context.Context) (*orders.SweepResult, error)
}

type PendingSweepJobParams struct {
	Logger  *logger.Logger
	Sweeper pendingSweeper
}

// NewPendingSweepJob promotes stale Pending orders every cycle.
func NewPendingSweepJob(params PendingSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("order sweeper required")
	}
	return &pendingSweepJob{logg: params.Logger, sweeper: params.Sweeper}, nil
}

type pendingSweepJob struct {
	logg    *logger.Logger
	sweeper pendingSweeper
}

func (j *pendingSweepJob) Name() string { return "order-pending-sweep" }

// Run reports per-order failures as one combined error so the cycle counts the
// job as failed, while the promoted orders stay promoted.
func (j *pendingSweepJob) Run(ctx context.Context) error {
	result, err := j.sweeper.SweepExpiredPendingOrders(ctx)
	if err != nil {
		return fmt.Errorf("pending sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":   result.Cutoff,
		"promoted": result.PromotedCount,
		"failed":   len(result.Failures),
	})
	j.logg.Info(logCtx, "pending order sweep complete")

	var combined error
	for _, failure := range result.Failures {
		combined = multierr.Append(combined, errors.New(failure))
	}
	return combined
}
