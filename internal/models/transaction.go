package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TrxDeposit   = "deposit"
	TrxWithdraw  = "withdraw"
	TrxWin       = "win"
	TrxLoss      = "loss"
	TrxSpinBonus = "spin_bonus"
)

// Transaction statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Transaction is one row per money-moving event. ConversionRate is the
// currency rate snapshotted at creation time; it is never recomputed.
type Transaction struct {
	ID                  int             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId              *int            `gorm:"column:user_id;index:idx_trx_user_status" json:"user_id"`
	AffiliateId         *int            `gorm:"column:affiliate_id;index" json:"affiliate_id"`
	Type                string          `gorm:"column:type;size:20;not null;index" json:"type"`
	Amount              decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	BonusAmount         decimal.Decimal `gorm:"column:bonus_amount;type:decimal(20,2);default:0.00" json:"bonus_amount"`
	CurrencyId          int             `gorm:"column:currency_id;not null" json:"currency_id"`
	ConversionRate      decimal.Decimal `gorm:"column:conversion_rate;type:decimal(20,6);not null" json:"conversion_rate"`
	PromotionId         *int            `gorm:"column:promotion_id" json:"promotion_id"`
	GatewayId           *int            `gorm:"column:gateway_id" json:"gateway_id"`
	Status              string          `gorm:"column:status;size:20;not null;default:pending;index:idx_trx_user_status" json:"status"`
	CustomTransactionId string          `gorm:"column:custom_transaction_id;size:40;uniqueIndex" json:"custom_transaction_id"`
	Notes               string          `gorm:"column:notes;type:text" json:"notes"`
	ProcessedBy         string          `gorm:"column:processed_by;size:50" json:"processed_by"`
	ProcessedByUser     *int            `gorm:"column:processed_by_user" json:"processed_by_user"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
