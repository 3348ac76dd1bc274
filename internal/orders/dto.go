package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
)

// CreateOrderInput is a cart submission. CustomerID nil places a guest order.
type CreateOrderInput struct {
	CustomerID       *uuid.UUID
	ActorID          *uuid.UUID
	OrderNumber      string
	TotalAmount      decimal.Decimal
	DiscountAmount   decimal.Decimal
	PromoCode        *string
	PaymentMethod    enums.PaymentMethod
	PaymentReference *string
	Delivery         DeliveryInput
	RedeemLoyalty    bool
	Items            []LineItemInput
}

type DeliveryInput struct {
	Name    string
	Phone   string
	Email   string
	Address string
	City    string
	Zipcode string
}

type LineItemInput struct {
	ProductID int64
	Size      enums.ProductSize
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateOrderResult reports the committed order and its ledger effects.
type CreateOrderResult struct {
	OrderID            uuid.UUID         `json:"orderId"`
	OrderNumber        string            `json:"orderNumber"`
	Status             enums.OrderStatus `json:"status"`
	PointsEarned       int               `json:"pointsEarned"`
	PointsBalance      int               `json:"pointsBalance"`
	LoyaltyPointsUsed  int               `json:"loyaltyPointsUsed"`
	LowStockProductIDs []int64           `json:"lowStockProductIds"`
	FreeItem           *FreeItem         `json:"freeItem,omitempty"`
}

// FreeItem is the cheapest coffee-type line when points are redeemed. It is
// informational only and never affects pricing.
type FreeItem struct {
	ProductID int64             `json:"productId"`
	Size      enums.ProductSize `json:"size"`
	UnitPrice decimal.Decimal   `json:"unitPrice"`
}

type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
	Note    string
	ActorID *uuid.UUID
}

type DeleteOrderInput struct {
	OrderID uuid.UUID
	ActorID *uuid.UUID
}

type ListOrdersInput struct {
	Page   int
	Limit  int
	Search string
}

type OrderList struct {
	Orders     []models.Order `json:"orders"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

type SweepResult struct {
	PromotedCount int       `json:"promotedCount"`
	Failures      []string  `json:"failures"`
	Cutoff        time.Time `json:"cutoff"`
}
