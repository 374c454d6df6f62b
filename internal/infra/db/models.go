package db

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type alertModel struct {
	ID              string          `gorm:"primaryKey;size:36"`
	OwnerAddress    string          `gorm:"index:idx_alerts_owner_deleted,priority:1;not null"`
	Ticker          string          `gorm:"not null"`
	TargetPrice     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Comparison      string          `gorm:"size:2;not null"`
	DeleteOnTrigger bool            `gorm:"not null"`
	Status          string          `gorm:"index:idx_alerts_status_deleted,priority:1;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index:idx_alerts_owner_deleted,priority:2;index:idx_alerts_status_deleted,priority:2"`
}

func (alertModel) TableName() string {
	return "alerts"
}
