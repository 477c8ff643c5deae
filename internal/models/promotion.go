package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promotion defines a deposit bonus: bonus = amount * BonusPercent / 100,
// wagered at BonusAmount * TurnoverMultiplier before withdrawal.
type Promotion struct {
	ID                 int             `gorm:"primaryKey;autoIncrement" json:"id"`
	Title              string          `gorm:"column:title;size:255;not null" json:"title"`
	BonusPercent       decimal.Decimal `gorm:"column:bonus_percent;type:decimal(10,2);not null" json:"bonus_percent"`
	TurnoverMultiplier decimal.Decimal `gorm:"column:turnover_multiplier;type:decimal(10,2);not null" json:"turnover_multiplier"`
	Status             int             `gorm:"column:status;default:1" json:"status"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Promotion) TableName() string {
	return "promotions"
}
