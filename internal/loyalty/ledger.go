package loyalty

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
)

const (
	// RedemptionCost is the fixed number of points one free coffee costs.
	RedemptionCost = 100
	pointsPerUnit  = 10
)

// Ledger reads and mutates customer point balances.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	FindProfile(ctx context.Context, userID uuid.UUID) (*models.CustomerProfile, error)
	EnsureProfile(ctx context.Context, userID uuid.UUID) error
	Redeem(ctx context.Context, userID uuid.UUID, earned int) (int, error)
	Accrue(ctx context.Context, userID uuid.UUID, earned int) (int, error)
	Reverse(ctx context.Context, userID uuid.UUID, used, earned int) (int, error)
}

type ledger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLedger(db *gorm.DB) Ledger {
	return &ledger{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	if tx == nil {
		return l
	}
	return &ledger{db: tx, now: l.now}
}

// FindProfile returns nil when the customer has no profile row yet.
func (l *ledger) FindProfile(ctx context.Context, userID uuid.UUID) (*models.CustomerProfile, error) {
	var profile models.CustomerProfile
	err := l.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (l *ledger) EnsureProfile(ctx context.Context, userID uuid.UUID) error {
	profile := models.CustomerProfile{UserID: userID, UpdatedAt: l.now()}
	return l.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&profile).Error
}

// Redeem spends RedemptionCost and credits earned in a single guarded update.
func (l *ledger) Redeem(ctx context.Context, userID uuid.UUID, earned int) (int, error) {
	res := l.db.WithContext(ctx).Exec(`
		UPDATE customer_profiles
		SET points_balance = points_balance + ? - ?,
			points_used_lifetime = points_used_lifetime + ?,
			updated_at = ?
		WHERE user_id = ? AND points_balance >= ?
	`, earned, RedemptionCost, RedemptionCost, l.now(), userID, RedemptionCost)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeInsufficientLoyalty, "at least 100 loyalty points are required")
	}
	return l.balance(ctx, userID)
}

func (l *ledger) Accrue(ctx context.Context, userID uuid.UUID, earned int) (int, error) {
	res := l.db.WithContext(ctx).Exec(`
		UPDATE customer_profiles
		SET points_balance = points_balance + ?, updated_at = ?
		WHERE user_id = ?
	`, earned, l.now(), userID)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "customer profile not found")
	}
	return l.balance(ctx, userID)
}

// Reverse undoes an order's loyalty effect: the balance moves by used-earned and
// lifetime usage drops by used, both floored at zero. A missing profile is a no-op.
func (l *ledger) Reverse(ctx context.Context, userID uuid.UUID, used, earned int) (int, error) {
	delta := used - earned
	res := l.db.WithContext(ctx).Exec(`
		UPDATE customer_profiles
		SET points_balance = CASE WHEN points_balance + ? < 0 THEN 0 ELSE points_balance + ? END,
			points_used_lifetime = CASE WHEN points_used_lifetime - ? < 0 THEN 0 ELSE points_used_lifetime - ? END,
			updated_at = ?
		WHERE user_id = ?
	`, delta, delta, used, used, l.now(), userID)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	return l.balance(ctx, userID)
}

func (l *ledger) balance(ctx context.Context, userID uuid.UUID) (int, error) {
	var balances []int
	err := l.db.WithContext(ctx).
		Model(&models.CustomerProfile{}).
		Where("user_id = ?", userID).
		Pluck("points_balance", &balances).Error
	if err != nil {
		return 0, err
	}
	if len(balances) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "customer profile not found")
	}
	return balances[0], nil
}
