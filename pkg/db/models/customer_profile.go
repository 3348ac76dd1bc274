package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerProfile carries the loyalty balance keyed by user.
type CustomerProfile struct {
	UserID             uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	PointsBalance      int       `gorm:"column:points_balance;not null;default:0"`
	PointsUsedLifetime int       `gorm:"column:points_used_lifetime;not null;default:0"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
