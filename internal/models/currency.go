package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency holds the current conversion rate to USD. The rate in force at
// transaction-creation time is snapshotted onto the transaction row; later
// changes here never affect existing rows.
type Currency struct {
	ID             int             `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string          `gorm:"column:code;size:10;not null;uniqueIndex" json:"code"`
	Name           string          `gorm:"column:name;size:100" json:"name"`
	ConversionRate decimal.Decimal `gorm:"column:conversion_rate;type:decimal(20,6);not null" json:"conversion_rate"`
	Status         int             `gorm:"column:status;default:1" json:"status"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Currency) TableName() string {
	return "currencies"
}
