package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company ledger entry types. Main balance is:
// admin_deposit + player_withdraw + admin_withdraw
// - player_deposit - promotion - spin_bonus (approved rows only).
const (
	LedgerAdminDeposit   = "admin_deposit"
	LedgerPlayerDeposit  = "player_deposit"
	LedgerPromotion      = "promotion"
	LedgerSpinBonus      = "spin_bonus"
	LedgerPlayerWithdraw = "player_withdraw"
	LedgerAdminWithdraw  = "admin_withdraw"
)

// CompanyLedgerEntry is the operator-side record posted alongside transaction
// approvals. At most one row exists per (transaction_id, type) pair;
// re-approval updates the row in place.
type CompanyLedgerEntry struct {
	ID            int             `gorm:"primaryKey;autoIncrement" json:"id"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Type          string          `gorm:"column:type;size:30;not null;index:idx_ledger_trx_type,unique" json:"type"`
	Status        string          `gorm:"column:status;size:20;not null;default:approved" json:"status"`
	TransactionId *int            `gorm:"column:transaction_id;index:idx_ledger_trx_type,unique" json:"transaction_id"`
	PromotionId   *int            `gorm:"column:promotion_id" json:"promotion_id"`
	CurrencyId    int             `gorm:"column:currency_id" json:"currency_id"`
	Notes         string          `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CompanyLedgerEntry) TableName() string {
	return "admin_main_balance"
}
