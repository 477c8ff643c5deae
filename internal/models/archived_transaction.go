package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArchivedTransaction is a cold copy of a settled transaction moved out of
// the hot table by the nightly archive sweep.
type ArchivedTransaction struct {
	ID                  int             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId              *int            `gorm:"column:user_id;index" json:"user_id"`
	AffiliateId         *int            `gorm:"column:affiliate_id" json:"affiliate_id"`
	Type                string          `gorm:"column:type;size:20;not null" json:"type"`
	Amount              decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	BonusAmount         decimal.Decimal `gorm:"column:bonus_amount;type:decimal(20,2);default:0.00" json:"bonus_amount"`
	CurrencyId          int             `gorm:"column:currency_id" json:"currency_id"`
	ConversionRate      decimal.Decimal `gorm:"column:conversion_rate;type:decimal(20,6)" json:"conversion_rate"`
	Status              string          `gorm:"column:status;size:20;not null" json:"status"`
	CustomTransactionId string          `gorm:"column:custom_transaction_id;size:40;index" json:"custom_transaction_id"`
	Notes               string          `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt           time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (ArchivedTransaction) TableName() string {
	return "archived_transactions"
}
