package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bet result statuses.
const (
	BetPending = "pending"
	BetWon     = "won"
	BetLost    = "lost"
	BetVoid    = "void"
)

// BetResult binds one issued session token to one settleable bet. The token
// is consumed by the settlement call; a settled row never transitions again.
type BetResult struct {
	ID            int             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId        int             `gorm:"column:user_id;not null;index" json:"user_id"`
	GameId        string          `gorm:"column:game_id;size:100" json:"game_id"`
	GameSessionId string          `gorm:"column:game_session_id;size:100;index" json:"game_session_id"`
	SessionToken  string          `gorm:"column:session_token;size:40;uniqueIndex;not null" json:"session_token"`
	BetAmount     decimal.Decimal `gorm:"column:bet_amount;type:decimal(20,2);not null" json:"bet_amount"`
	WinAmount     decimal.Decimal `gorm:"column:win_amount;type:decimal(20,2);default:0.00" json:"win_amount"`
	LossAmount    decimal.Decimal `gorm:"column:loss_amount;type:decimal(20,2);default:0.00" json:"loss_amount"`
	Status        string          `gorm:"column:status;size:20;not null;default:pending" json:"status"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BetResult) TableName() string {
	return "bet_results"
}
