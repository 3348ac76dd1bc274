package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
)

// Trail is the append-only order status log.
type Trail interface {
	WithTx(tx *gorm.DB) Trail
	Append(ctx context.Context, entry Entry) (*models.OrderHistoryEntry, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistoryEntry, error)
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) error
}

// Entry is the input for a single history append. A nil ActorID records a system actor.
type Entry struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
	Note    string
	ActorID *uuid.UUID
	At      time.Time
}

type trail struct {
	db *gorm.DB
}

func NewTrail(db *gorm.DB) Trail {
	return &trail{db: db}
}

func (t *trail) WithTx(tx *gorm.DB) Trail {
	if tx == nil {
		return t
	}
	return &trail{db: tx}
}

func (t *trail) Append(ctx context.Context, entry Entry) (*models.OrderHistoryEntry, error) {
	at := entry.At
	if at.IsZero() {
		at = time.Now()
	}
	row := &models.OrderHistoryEntry{
		OrderID:   entry.OrderID,
		Status:    entry.Status,
		Note:      entry.Note,
		ActorID:   entry.ActorID,
		CreatedAt: at.UTC(),
	}
	if err := t.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ListByOrder returns entries newest first; id breaks ties within the same timestamp.
func (t *trail) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistoryEntry, error) {
	var entries []models.OrderHistoryEntry
	err := t.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteByOrder is reserved for administrative order deletion.
func (t *trail) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	return t.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderHistoryEntry{}).Error
}
