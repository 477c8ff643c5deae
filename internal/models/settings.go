package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the single operator configuration row. Services never read it
// directly; HelperService.LoadSettings copies it into a snapshot that is
// passed into each cascade.
type Settings struct {
	ID                        int             `gorm:"primaryKey;autoIncrement" json:"id"`
	DefaultTurnoverMultiplier decimal.Decimal `gorm:"column:default_turnover_multiplier;type:decimal(10,2);default:1.00" json:"default_turnover_multiplier"`
	MinWithdrawableBalance    decimal.Decimal `gorm:"column:min_withdrawable_balance;type:decimal(20,2);default:0.00" json:"min_withdrawable_balance"`
	TurnoverBreakFloor        decimal.Decimal `gorm:"column:turnover_break_floor;type:decimal(20,2);default:20.00" json:"turnover_break_floor"`
	CreatedAt                 time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Settings) TableName() string {
	return "settings"
}
