package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/history"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/loyalty"
	dbpkg "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox/payloads"
)

const orderNumberConstraint = "order_number"

// CreateOrder validates the cart, then commits the order, its items, the stock
// reservations, the loyalty update and the Pending history entry in one transaction.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	input.OrderNumber = strings.TrimSpace(input.OrderNumber)

	plan, err := s.validateCart(ctx, input)
	if err != nil {
		return nil, s.reject(err)
	}

	now := s.nowUTC()
	order := &models.Order{
		ID:              uuid.New(),
		CustomerID:      input.CustomerID,
		OrderNumber:     input.OrderNumber,
		TotalAmount:     input.TotalAmount.Round(2),
		DiscountAmount:  input.DiscountAmount.Round(2),
		PromoCode:       trimmedOrNil(input.PromoCode),
		PaymentMethod:   input.PaymentMethod,
		DeliveryName:    strings.TrimSpace(input.Delivery.Name),
		DeliveryPhone:   strings.TrimSpace(input.Delivery.Phone),
		DeliveryEmail:   strings.TrimSpace(input.Delivery.Email),
		DeliveryAddress: strings.TrimSpace(input.Delivery.Address),
		DeliveryCity:    strings.TrimSpace(input.Delivery.City),
		DeliveryZipcode: strings.TrimSpace(input.Delivery.Zipcode),
		Status:          enums.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.PaymentMethod.RequiresReference() {
		order.PaymentReference = trimmedOrNil(input.PaymentReference)
	}
	if input.RedeemLoyalty {
		order.LoyaltyPointsUsed = loyalty.RedemptionCost
	}

	result := &CreateOrderResult{
		OrderID:            order.ID,
		OrderNumber:        order.OrderNumber,
		Status:             order.Status,
		PointsEarned:       plan.pointsEarned,
		LoyaltyPointsUsed:  order.LoyaltyPointsUsed,
		LowStockProductIDs: []int64{},
		FreeItem:           plan.freeItem,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateOrder(ctx, order); err != nil {
			if dbpkg.IsUniqueViolation(err, orderNumberConstraint) {
				return duplicateOrderNumber(order.OrderNumber)
			}
			return err
		}

		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			items = append(items, models.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Size:      item.Size,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice.Round(2),
			})
		}
		if err := s.repo.WithTx(tx).CreateItems(ctx, items); err != nil {
			return err
		}

		ledger := s.inventory.WithTx(tx)
		flagged := map[int64]struct{}{}
		for _, key := range plan.keys {
			remaining, err := ledger.Reserve(ctx, key.ProductID, key.Size, plan.demand[key])
			if err != nil {
				return err
			}
			if remaining <= plan.variants[key].LowStockThreshold {
				if _, ok := flagged[key.ProductID]; !ok {
					flagged[key.ProductID] = struct{}{}
					result.LowStockProductIDs = append(result.LowStockProductIDs, key.ProductID)
				}
			}
		}

		if input.CustomerID != nil {
			points := s.loyalty.WithTx(tx)
			if err := points.EnsureProfile(ctx, *input.CustomerID); err != nil {
				return err
			}
			var balance int
			var err error
			if input.RedeemLoyalty {
				balance, err = points.Redeem(ctx, *input.CustomerID, plan.pointsEarned)
			} else {
				balance, err = points.Accrue(ctx, *input.CustomerID, plan.pointsEarned)
			}
			if err != nil {
				return err
			}
			result.PointsBalance = balance
		}

		if _, err := s.history.WithTx(tx).Append(ctx, history.Entry{
			OrderID: order.ID,
			Status:  enums.OrderStatusPending,
			Note:    creationNote(input, plan.pointsEarned),
			ActorID: input.ActorID,
			At:      now,
		}); err != nil {
			return err
		}

		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:   enums.EventOrderCreated,
			AggregateID: order.ID,
			Actor:       actorRef(input.ActorID),
			OccurredAt:  now,
			Data: payloads.OrderCreatedEvent{
				OrderID:           order.ID,
				OrderNumber:       order.OrderNumber,
				CustomerID:        order.CustomerID,
				TotalAmount:       order.TotalAmount.StringFixed(2),
				PointsEarned:      plan.pointsEarned,
				LoyaltyPointsUsed: order.LoyaltyPointsUsed,
				LowStockProducts:  result.LowStockProductIDs,
			},
		})
	})
	if err != nil {
		return nil, s.reject(pkgerrors.EnsureTyped(err, pkgerrors.CodePersistence, "commit order"))
	}

	s.metrics.IncCreated()
	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID.String()), map[string]any{
		"order_number":   order.OrderNumber,
		"points_earned":  plan.pointsEarned,
		"points_used":    order.LoyaltyPointsUsed,
		"low_stock":      result.LowStockProductIDs,
		"guest":          input.CustomerID == nil,
		"payment_method": order.PaymentMethod,
	})
	s.logg.Info(logCtx, "order.created")

	return result, nil
}

func creationNote(input CreateOrderInput, earned int) string {
	switch {
	case input.CustomerID == nil:
		return "Order placed as guest; no loyalty points earned."
	case input.RedeemLoyalty:
		return fmt.Sprintf("Order placed. Redeemed %d points for a free coffee and earned %d points.", loyalty.RedemptionCost, earned)
	default:
		return fmt.Sprintf("Order placed. Earned %d points.", earned)
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
