package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
)

// OrderCreatedEvent announces a committed order.
type OrderCreatedEvent struct {
	OrderID           uuid.UUID  `json:"order_id"`
	OrderNumber       string     `json:"order_number"`
	CustomerID        *uuid.UUID `json:"customer_id,omitempty"`
	TotalAmount       string     `json:"total_amount"`
	PointsEarned      int        `json:"points_earned"`
	LoyaltyPointsUsed int        `json:"loyalty_points_used"`
	LowStockProducts  []int64    `json:"low_stock_product_ids,omitempty"`
}

// OrderStatusChangedEvent is emitted for every applied transition.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	From       enums.OrderStatus `json:"from"`
	To         enums.OrderStatus `json:"to"`
	Note       string            `json:"note,omitempty"`
	ActorID    *uuid.UUID        `json:"actor_id,omitempty"`
	ChangedAt  time.Time         `json:"changed_at"`
	Compensate bool              `json:"compensated"`
}

// OrderDeletedEvent is emitted when an administrator removes an order.
type OrderDeletedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Status      enums.OrderStatus `json:"status"`
	DeletedAt   time.Time         `json:"deleted_at"`
}
