package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
)

// Product is the catalog entry the order engine reads for classification and thresholds.
type Product struct {
	ID                int64         `gorm:"column:id;primaryKey;autoIncrement"`
	Name              string        `gorm:"column:name;not null"`
	Category          string        `gorm:"column:category;not null"`
	IsCoffee          *bool         `gorm:"column:is_coffee"`
	IsActive          bool          `gorm:"column:is_active;not null;default:true"`
	LowStockThreshold int           `gorm:"column:low_stock_threshold;not null;default:5"`
	Sizes             []ProductSize `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductSize holds the per-size price and inventory counter.
type ProductSize struct {
	ProductID int64             `gorm:"column:product_id;primaryKey"`
	Size      enums.ProductSize `gorm:"column:size;primaryKey"`
	Price     decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null"`
	StockQty  int               `gorm:"column:stock_qty;not null;default:0"`
}

func (ProductSize) TableName() string { return "product_sizes" }
