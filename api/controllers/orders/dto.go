package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalorders "github.com/BanSimplified567/isladelcafe2025-sub000/internal/orders"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
)

type createOrderRequest struct {
	OrderNumber      string            `json:"orderNumber" validate:"required,max=64"`
	TotalAmount      decimal.Decimal   `json:"totalAmount"`
	DiscountAmount   decimal.Decimal   `json:"discountAmount"`
	PromoCode        *string           `json:"promoCode" validate:"omitempty,max=32"`
	PaymentMethod    string            `json:"paymentMethod" validate:"required,oneof=GCash Pickup"`
	PaymentReference *string           `json:"paymentReference" validate:"omitempty,max=64"`
	Delivery         deliveryRequest   `json:"delivery"`
	RedeemLoyalty    bool              `json:"redeemLoyalty"`
	Items            []lineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type deliveryRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required,max=255"`
	City    string `json:"city" validate:"required,max=120"`
	Zipcode string `json:"zipcode" validate:"required,max=16"`
}

type lineItemRequest struct {
	ProductID int64           `json:"productId" validate:"required,gt=0"`
	Size      string          `json:"size" validate:"required,oneof=Small Medium Large"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// toInput stamps the acting user. Staff place walk-in orders, so only a
// customer token makes the order theirs.
func (r createOrderRequest) toInput(actorID *uuid.UUID, role enums.UserRole) internalorders.CreateOrderInput {
	customerID := actorID
	if role.IsStaff() {
		customerID = nil
	}
	items := make([]internalorders.LineItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, internalorders.LineItemInput{
			ProductID: item.ProductID,
			Size:      enums.ProductSize(item.Size),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return internalorders.CreateOrderInput{
		CustomerID:       customerID,
		ActorID:          actorID,
		OrderNumber:      r.OrderNumber,
		TotalAmount:      r.TotalAmount,
		DiscountAmount:   r.DiscountAmount,
		PromoCode:        r.PromoCode,
		PaymentMethod:    enums.PaymentMethod(r.PaymentMethod),
		PaymentReference: r.PaymentReference,
		Delivery: internalorders.DeliveryInput{
			Name:    r.Delivery.Name,
			Phone:   r.Delivery.Phone,
			Email:   r.Delivery.Email,
			Address: r.Delivery.Address,
			City:    r.Delivery.City,
			Zipcode: r.Delivery.Zipcode,
		},
		RedeemLoyalty: r.RedeemLoyalty,
		Items:         items,
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

type orderResponse struct {
	ID                uuid.UUID           `json:"id"`
	CustomerID        *uuid.UUID          `json:"customerId"`
	OrderNumber       string              `json:"orderNumber"`
	TotalAmount       decimal.Decimal     `json:"totalAmount"`
	DiscountAmount    decimal.Decimal     `json:"discountAmount"`
	PromoCode         *string             `json:"promoCode"`
	PaymentMethod     enums.PaymentMethod `json:"paymentMethod"`
	PaymentReference  *string             `json:"paymentReference"`
	Delivery          deliveryResponse    `json:"delivery"`
	LoyaltyPointsUsed int                 `json:"loyaltyPointsUsed"`
	Status            enums.OrderStatus   `json:"status"`
	Items             []itemResponse      `json:"items"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type deliveryResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

type itemResponse struct {
	ProductID int64             `json:"productId"`
	Size      enums.ProductSize `json:"size"`
	Quantity  int               `json:"quantity"`
	UnitPrice decimal.Decimal   `json:"unitPrice"`
}

type historyResponse struct {
	Status    enums.OrderStatus `json:"status"`
	Note      string            `json:"note"`
	ActorID   *uuid.UUID        `json:"actorId"`
	CreatedAt time.Time         `json:"createdAt"`
}

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	TotalCount int64           `json:"totalCount"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

func toOrderResponse(order *models.Order) orderResponse {
	items := make([]itemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, itemResponse{
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return orderResponse{
		ID:               order.ID,
		CustomerID:       order.CustomerID,
		OrderNumber:      order.OrderNumber,
		TotalAmount:      order.TotalAmount,
		DiscountAmount:   order.DiscountAmount,
		PromoCode:        order.PromoCode,
		PaymentMethod:    order.PaymentMethod,
		PaymentReference: order.PaymentReference,
		Delivery: deliveryResponse{
			Name:    order.DeliveryName,
			Phone:   order.DeliveryPhone,
			Email:   order.DeliveryEmail,
			Address: order.DeliveryAddress,
			City:    order.DeliveryCity,
			Zipcode: order.DeliveryZipcode,
		},
		LoyaltyPointsUsed: order.LoyaltyPointsUsed,
		Status:            order.Status,
		Items:             items,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

func toHistoryResponse(entries []models.OrderHistoryEntry) []historyResponse {
	out := make([]historyResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, historyResponse{
			Status:    entry.Status,
			Note:      entry.Note,
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		})
	}
	return out
}

func toOrderListResponse(list *internalorders.OrderList) orderListResponse {
	orders := make([]orderResponse, 0, len(list.Orders))
	for i := range list.Orders {
		orders = append(orders, toOrderResponse(&list.Orders[i]))
	}
	return orderListResponse{
		Orders:     orders,
		TotalCount: list.TotalCount,
		Page:       list.Page,
		Limit:      list.Limit,
		TotalPages: list.TotalPages,
	}
}
