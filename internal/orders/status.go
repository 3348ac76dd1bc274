package orders

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/history"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/loyalty"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox/payloads"
)

// UpdateOrderStatus applies one edge of the state machine. Cancelling releases
// every item's stock and reverses the order's loyalty effect in the same
// transaction as the status write and the history append.
func (s *service) UpdateOrderStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if !input.Status.IsValid() {
		return nil, s.reject(validationError("unknown order status", map[string]any{"status": input.Status}))
	}

	var (
		updated     *models.Order
		from        enums.OrderStatus
		compensated bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUpdate(ctx, input.OrderID)
		if err != nil {
			return err
		}
		from = order.Status

		if !CanTransition(order.Status, input.Status) {
			return invalidTransition(order.Status, input.Status)
		}

		if input.Status == enums.OrderStatusCancelled {
			if err := s.compensate(ctx, tx, order, true); err != nil {
				return err
			}
			compensated = true
		}

		now := s.nowUTC()
		swapped, err := repo.UpdateStatus(ctx, order.ID, order.Status, input.Status, now)
		if err != nil {
			return err
		}
		if !swapped {
			return invalidTransition(order.Status, input.Status)
		}

		if _, err := s.history.WithTx(tx).Append(ctx, history.Entry{
			OrderID: order.ID,
			Status:  input.Status,
			Note:    strings.TrimSpace(input.Note),
			ActorID: input.ActorID,
			At:      now,
		}); err != nil {
			return err
		}

		if err := s.emit(ctx, tx, outbox.DomainEvent{
			EventType:   enums.EventOrderStatusChanged,
			AggregateID: order.ID,
			Actor:       actorRef(input.ActorID),
			OccurredAt:  now,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:    order.ID,
				From:       order.Status,
				To:         input.Status,
				Note:       strings.TrimSpace(input.Note),
				ActorID:    input.ActorID,
				ChangedAt:  now,
				Compensate: compensated,
			},
		}); err != nil {
			return err
		}

		order.Status = input.Status
		order.UpdatedAt = now
		updated = order
		return nil
	})
	if err != nil {
		return nil, s.reject(pkgerrors.EnsureTyped(err, pkgerrors.CodePersistence, "apply status transition"))
	}

	s.metrics.IncTransition(string(from), string(input.Status))
	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, updated.ID.String()), map[string]any{
		"from":        from,
		"to":          input.Status,
		"compensated": compensated,
		"system":      input.ActorID == nil,
	})
	s.logg.Info(logCtx, "order.status_changed")
	return updated, nil
}

// compensate undoes the ledger effects of an order. Stock is released only on
// cancellation; administrative deletion keeps inventory where it is.
func (s *service) compensate(ctx context.Context, tx *gorm.DB, order *models.Order, releaseStock bool) error {
	if releaseStock {
		ledger := s.inventory.WithTx(tx)
		for _, item := range order.Items {
			err := ledger.Release(ctx, item.ProductID, item.Size, item.Quantity)
			if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
				logCtx := s.logg.WithFields(ctx, map[string]any{"product_id": item.ProductID, "size": item.Size})
				s.logg.Warn(logCtx, "stock release skipped for retired product size")
				continue
			}
			if err != nil {
				return err
			}
		}
	}

	if order.CustomerID == nil {
		return nil
	}
	earned := loyalty.PointsEarned(order.TotalAmount)
	if earned == 0 && order.LoyaltyPointsUsed == 0 {
		return nil
	}
	_, err := s.loyalty.WithTx(tx).Reverse(ctx, *order.CustomerID, order.LoyaltyPointsUsed, earned)
	return err
}

func invalidTransition(from, to enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, "status transition not allowed").
		WithDetails(map[string]any{
			"from":    from,
			"to":      to,
			"allowed": AllowedTransitions(from),
		})
}
