package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User roles.
const (
	RolePlayer         = "player"
	RoleAffiliate      = "affiliate"
	RoleSuperAffiliate = "superAffiliate"
	RoleAdmin          = "admin"
)

// KYC statuses.
const (
	KycRequired = "required"
	KycPending  = "pending"
	KycVerified = "verified"
)

// Account statuses.
const (
	AccountActive    = "active"
	AccountSuspended = "suspended"
	AccountClosed    = "closed"
)

// User is the narrow account record the engine needs: KYC/account status for
// withdrawal gating, role and referral links for the commission cascade, and
// the affiliate's withdrawable commission balance.
type User struct {
	ID                int             `gorm:"primaryKey;autoIncrement" json:"id"`
	Username          string          `gorm:"column:username;size:100;not null;uniqueIndex" json:"username"`
	Role              string          `gorm:"column:role;size:30;not null;default:player" json:"role"`
	ReferredBy        *int            `gorm:"column:referred_by;index" json:"referred_by"`
	ParentAgentId     *int            `gorm:"column:parent_agent_id;index" json:"parent_agent_id"`
	CommissionPercent decimal.Decimal `gorm:"column:commission_percent;type:decimal(10,2);default:0.00" json:"commission_percent"`
	RemainingBalance  decimal.Decimal `gorm:"column:remaining_balance;type:decimal(20,2);default:0.00" json:"remaining_balance"`
	KycStatus         string          `gorm:"column:kyc_status;size:20;not null;default:pending" json:"kyc_status"`
	Status            string          `gorm:"column:status;size:20;not null;default:active" json:"status"`
	CurrencyId        int             `gorm:"column:currency_id;default:1" json:"currency_id"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
