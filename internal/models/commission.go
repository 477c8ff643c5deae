package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission record statuses.
const (
	CommissionPending  = "pending"
	CommissionApproved = "approved"
	CommissionRejected = "rejected"
	CommissionPaid     = "paid"
	CommissionSettled  = "settled"
)

// CommissionRecord is one payout line per affiliate per settled bet.
// CommissionAmount is signed from the house perspective: positive when the
// player lost, negative when the player won.
type CommissionRecord struct {
	ID               int             `gorm:"primaryKey;autoIncrement" json:"id"`
	BetResultId      int             `gorm:"column:bet_result_id;not null;index" json:"bet_result_id"`
	PlayerId         int             `gorm:"column:player_id;not null;index" json:"player_id"`
	AdminUserId      int             `gorm:"column:admin_user_id;not null;index:idx_comm_admin_status" json:"admin_user_id"`
	CommissionAmount decimal.Decimal `gorm:"column:commission_amount;type:decimal(20,2);not null" json:"commission_amount"`
	Percentage       decimal.Decimal `gorm:"column:percentage;type:decimal(10,2);not null" json:"percentage"`
	Status           string          `gorm:"column:status;size:20;not null;default:pending;index:idx_comm_admin_status" json:"status"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CommissionRecord) TableName() string {
	return "commission"
}
