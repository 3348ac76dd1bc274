package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
)

const sweepBatchLimit = 500

// SweepExpiredPendingOrders promotes Pending orders older than the timeout to
// Confirmed, one transaction per order. Per-order failures are collected, never
// returned. An order that moved on before its turn is skipped silently.
func (s *service) SweepExpiredPendingOrders(ctx context.Context) (*SweepResult, error) {
	cutoff := s.nowUTC().Add(-s.pendingTimeout)
	ids, err := s.repo.FindPendingBefore(ctx, cutoff, sweepBatchLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "find expired pending orders")
	}

	result := &SweepResult{Failures: []string{}, Cutoff: cutoff}
	note := fmt.Sprintf("Automatically confirmed after %s in Pending.", s.pendingTimeout)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			result.Failures = append(result.Failures, fmt.Sprintf("order %s: %v", id, err))
			continue
		}
		_, err := s.UpdateOrderStatus(ctx, UpdateStatusInput{
			OrderID: id,
			Status:  enums.OrderStatusConfirmed,
			Note:    note,
		})
		switch {
		case err == nil:
			result.PromotedCount++
		case isBenignSweepError(err):
			s.logg.Info(s.sweepLogCtx(ctx, id, err), "order.sweep_skipped")
		default:
			result.Failures = append(result.Failures, fmt.Sprintf("order %s: %v", id, err))
			s.logg.Warn(s.sweepLogCtx(ctx, id, err), "order.sweep_failed")
		}
	}

	s.metrics.AddSweep(result.PromotedCount, len(result.Failures))
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"cutoff":   cutoff,
		"promoted": result.PromotedCount,
		"failed":   len(result.Failures),
	})
	s.logg.Info(logCtx, "order.sweep_complete")
	return result, nil
}

// isBenignSweepError covers a lost race with a concurrent transition or delete.
func isBenignSweepError(err error) bool {
	return pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) || pkgerrors.HasCode(err, pkgerrors.CodeNotFound)
}

func (s *service) sweepLogCtx(ctx context.Context, id uuid.UUID, err error) context.Context {
	return s.logg.WithField(s.logg.WithOrderID(ctx, id.String()), "error", err.Error())
}
