package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
)

// Ledger mutates per-(product, size) stock counters.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	// Reserve decrements the counter only when it holds at least qty and
	// returns the remaining quantity.
	Reserve(ctx context.Context, productID int64, size enums.ProductSize, qty int) (int, error)
	// Release increments the counter unconditionally.
	Release(ctx context.Context, productID int64, size enums.ProductSize, qty int) error
	Available(ctx context.Context, productID int64, size enums.ProductSize) (int, error)
}

type ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) Ledger {
	return &ledger{db: db}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	if tx == nil {
		return l
	}
	return &ledger{db: tx}
}

func (l *ledger) Reserve(ctx context.Context, productID int64, size enums.ProductSize, qty int) (int, error) {
	if qty <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "reservation quantity must be positive")
	}

	res := l.db.WithContext(ctx).Exec(`
		UPDATE product_sizes
		SET stock_qty = stock_qty - ?
		WHERE product_id = ? AND size = ? AND stock_qty >= ?
	`, qty, productID, size, qty)
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		available, err := l.Available(ctx, productID, size)
		if err != nil && !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return 0, err
		}
		return 0, InsufficientStock(productID, size, qty, available)
	}

	return l.Available(ctx, productID, size)
}

func (l *ledger) Release(ctx context.Context, productID int64, size enums.ProductSize, qty int) error {
	if qty <= 0 {
		return nil
	}
	res := l.db.WithContext(ctx).Exec(`
		UPDATE product_sizes
		SET stock_qty = stock_qty + ?
		WHERE product_id = ? AND size = ?
	`, qty, productID, size)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product size not found").
			WithDetails(map[string]any{"productId": productID, "size": size})
	}
	return nil
}

func (l *ledger) Available(ctx context.Context, productID int64, size enums.ProductSize) (int, error) {
	var qty []int
	err := l.db.WithContext(ctx).
		Table("product_sizes").
		Where("product_id = ? AND size = ?", productID, size).
		Pluck("stock_qty", &qty).Error
	if err != nil {
		return 0, err
	}
	if len(qty) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "product size not found").
			WithDetails(map[string]any{"productId": productID, "size": size})
	}
	return qty[0], nil
}

// InsufficientStock builds the typed rejection for a short (product, size).
func InsufficientStock(productID int64, size enums.ProductSize, requested, available int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{
			"productId": productID,
			"size":      size,
			"requested": requested,
			"available": available,
		})
}
