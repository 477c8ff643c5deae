package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Turnover obligation types.
const (
	TurnoverDefault   = "default"
	TurnoverPromotion = "promotion"
	TurnoverSpinBonus = "spin_bonus"
)

// Turnover obligation statuses.
const (
	TurnoverActive    = "active"
	TurnoverInactive  = "inactive"
	TurnoverCompleted = "completed"
)

// TurnoverObligation tracks a wagering requirement tied to one transaction.
// RemainingTurnover only ever decreases while the obligation is active;
// status flips to completed exactly when it reaches zero.
type TurnoverObligation struct {
	ID                int             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId            int             `gorm:"column:user_id;not null;index:idx_turnover_user_status" json:"user_id"`
	TransactionId     int             `gorm:"column:transaction_id;not null;index:idx_turnover_trx_type,unique" json:"transaction_id"`
	Type              string          `gorm:"column:type;size:20;not null;index:idx_turnover_trx_type,unique" json:"type"`
	Status            string          `gorm:"column:status;size:20;not null;default:active;index:idx_turnover_user_status" json:"status"`
	DepositAmount     decimal.Decimal `gorm:"column:deposit_amount;type:decimal(20,2);not null" json:"deposit_amount"`
	TargetTurnover    decimal.Decimal `gorm:"column:target_turnover;type:decimal(20,2);not null" json:"target_turnover"`
	RemainingTurnover decimal.Decimal `gorm:"column:remaining_turnover;type:decimal(20,2);not null" json:"remaining_turnover"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (TurnoverObligation) TableName() string {
	return "turnover"
}
