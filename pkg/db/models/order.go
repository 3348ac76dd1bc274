package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
)

// Order is the aggregate root persisted by the order engine.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID        *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	OrderNumber       string              `gorm:"column:order_number;not null;uniqueIndex"`
	TotalAmount       decimal.Decimal     `gorm:"column:total_amount;type:numeric(10,2);not null"`
	DiscountAmount    decimal.Decimal     `gorm:"column:discount_amount;type:numeric(10,2);not null;default:0"`
	PromoCode         *string             `gorm:"column:promo_code"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PaymentReference  *string             `gorm:"column:payment_reference"`
	DeliveryName      string              `gorm:"column:delivery_name;not null"`
	DeliveryPhone     string              `gorm:"column:delivery_phone;not null"`
	DeliveryEmail     string              `gorm:"column:delivery_email;not null"`
	DeliveryAddress   string              `gorm:"column:delivery_address;not null"`
	DeliveryCity      string              `gorm:"column:delivery_city;not null"`
	DeliveryZipcode   string              `gorm:"column:delivery_zipcode;not null"`
	LoyaltyPointsUsed int                 `gorm:"column:loyalty_points_used;not null;default:0"`
	Status            enums.OrderStatus   `gorm:"column:status;not null"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at"`
	UpdatedAt         time.Time           `gorm:"column:updated_at"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// OrderItem is a line item snapshot; the unit price is never re-read from the catalog.
type OrderItem struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null"`
	ProductID int64             `gorm:"column:product_id;not null"`
	Size      enums.ProductSize `gorm:"column:size;not null"`
	Quantity  int               `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal   `gorm:"column:unit_price;type:numeric(10,2);not null"`
}

// OrderHistoryEntry is an append-only status record.
type OrderHistoryEntry struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null"`
	Status    enums.OrderStatus `gorm:"column:status;not null"`
	Note      string            `gorm:"column:note;not null;default:''"`
	ActorID   *uuid.UUID        `gorm:"column:actor_id;type:uuid"`
	CreatedAt time.Time         `gorm:"column:created_at"`
}

func (OrderHistoryEntry) TableName() string { return "order_history" }
