package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox/payloads"
)

// DeleteOrder removes an order, its items and its history. It is allowed for
// orders without items or in Cancelled/Completed. Loyalty is reversed for
// orders that were never cancelled.
//
// NOTE: deletion does not return stock to inventory, unlike cancellation.
// This mirrors the storefront's established behaviour; change it only as a
// deliberate product decision.
func (s *service) DeleteOrder(ctx context.Context, input DeleteOrderInput) error {
	var (
		status      enums.OrderStatus
		orderNumber string
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUpdate(ctx, input.OrderID)
		if err != nil {
			return err
		}
		status = order.Status
		orderNumber = order.OrderNumber

		hasItems := len(order.Items) > 0
		if hasItems && order.Status != enums.OrderStatusCancelled && order.Status != enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeConflict, "only cancelled or completed orders can be deleted").
				WithDetails(map[string]any{
					"status":  order.Status,
					"allowed": []enums.OrderStatus{enums.OrderStatusCancelled, enums.OrderStatusCompleted},
				})
		}

		if hasItems && order.Status != enums.OrderStatusCancelled {
			if err := s.compensate(ctx, tx, order, false); err != nil {
				return err
			}
		}

		if err := repo.DeleteItems(ctx, order.ID); err != nil {
			return err
		}
		if err := s.history.WithTx(tx).DeleteByOrder(ctx, order.ID); err != nil {
			return err
		}
		if err := repo.Delete(ctx, order.ID); err != nil {
			return err
		}

		now := s.nowUTC()
		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:   enums.EventOrderDeleted,
			AggregateID: order.ID,
			Actor:       actorRef(input.ActorID),
			OccurredAt:  now,
			Data: payloads.OrderDeletedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Status:      order.Status,
				DeletedAt:   now,
			},
		})
	})
	if err != nil {
		return s.reject(pkgerrors.EnsureTyped(err, pkgerrors.CodePersistence, "delete order"))
	}

	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, input.OrderID.String()), map[string]any{
		"order_number": orderNumber,
		"status":       status,
	})
	s.logg.Info(logCtx, "order.deleted")
	return nil
}
