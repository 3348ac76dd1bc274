package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
)

// Variant is a sellable (product, size) pair joined with its product metadata.
type Variant struct {
	ProductID         int64
	Size              enums.ProductSize
	Name              string
	Category          string
	CoffeeFlag        *bool
	IsActive          bool
	Price             decimal.Decimal
	StockQty          int
	LowStockThreshold int
}

// Key identifies a variant.
type Key struct {
	ProductID int64
	Size      enums.ProductSize
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVariants(ctx context.Context, keys []Key) (map[Key]Variant, error)
	FindActivePromo(ctx context.Context, code string) (*models.PromoCode, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

type variantRow struct {
	ProductID         int64
	Size              enums.ProductSize
	Name              string
	Category          string
	IsCoffee          *bool
	IsActive          bool
	Price             decimal.Decimal
	StockQty          int
	LowStockThreshold int
}

// FindVariants loads every requested variant; missing pairs are absent from the map.
func (r *repository) FindVariants(ctx context.Context, keys []Key) (map[Key]Variant, error) {
	out := make(map[Key]Variant, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(keys))
	seen := map[int64]struct{}{}
	for _, k := range keys {
		if _, ok := seen[k.ProductID]; ok {
			continue
		}
		seen[k.ProductID] = struct{}{}
		ids = append(ids, k.ProductID)
	}

	var rows []variantRow
	err := r.db.WithContext(ctx).
		Table("product_sizes AS ps").
		Select("ps.product_id, ps.size, p.name, p.category, p.is_coffee, p.is_active, ps.price, ps.stock_qty, p.low_stock_threshold").
		Joins("JOIN products p ON p.id = ps.product_id").
		Where("ps.product_id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	wanted := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}
	for _, row := range rows {
		key := Key{ProductID: row.ProductID, Size: row.Size}
		if _, ok := wanted[key]; !ok {
			continue
		}
		out[key] = Variant{
			ProductID:         row.ProductID,
			Size:              row.Size,
			Name:              row.Name,
			Category:          row.Category,
			CoffeeFlag:        row.IsCoffee,
			IsActive:          row.IsActive,
			Price:             row.Price,
			StockQty:          row.StockQty,
			LowStockThreshold: row.LowStockThreshold,
		}
	}
	return out, nil
}

// FindActivePromo returns nil when the code is unknown or inactive.
func (r *repository) FindActivePromo(ctx context.Context, code string) (*models.PromoCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var promo models.PromoCode
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ? AND is_active = ?", strings.ToUpper(code), true).
		First(&promo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
}
