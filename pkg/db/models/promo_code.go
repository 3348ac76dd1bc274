package models

import "github.com/shopspring/decimal"

type PromoCode struct {
	Code            string          `gorm:"column:code;primaryKey"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true"`
}
