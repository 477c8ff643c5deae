package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ledger-service/internal/models"
	"ledger-service/pkg/money"
)

// BalanceService derives player balances from the append-only transaction
// log. It never mutates state and is safe to call inside or outside a
// database transaction.
type BalanceService struct {
	DB *gorm.DB
}

func NewBalanceService(db *gorm.DB) *BalanceService {
	return &BalanceService{DB: db}
}

// TypeTotals holds the per-type sums of a player's transactions, approved
// and pending reported separately, in native currency and USD equivalent.
type TypeTotals struct {
	Approved    decimal.Decimal `json:"approved"`
	Pending     decimal.Decimal `json:"pending"`
	ApprovedUSD decimal.Decimal `json:"approvedUsd"`
	PendingUSD  decimal.Decimal `json:"pendingUsd"`
}

// PlayerBalance is a derived, read-only snapshot. CurrentBalance counts
// approved rows only: deposits + spin bonuses + wins - withdrawals - losses.
type PlayerBalance struct {
	UserId            int             `json:"userId"`
	CurrencyId        *int            `json:"currencyId"`
	Deposit           TypeTotals      `json:"deposit"`
	SpinBonus         TypeTotals      `json:"spinBonus"`
	Withdraw          TypeTotals      `json:"withdraw"`
	Win               TypeTotals      `json:"win"`
	Loss              TypeTotals      `json:"loss"`
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
	CurrentBalanceUSD decimal.Decimal `json:"currentBalanceUsd"`
}

func zeroTotals() TypeTotals {
	return TypeTotals{
		Approved:    decimal.Zero,
		Pending:     decimal.Zero,
		ApprovedUSD: decimal.Zero,
		PendingUSD:  decimal.Zero,
	}
}

func emptyBalance(userId int, currencyId *int) PlayerBalance {
	return PlayerBalance{
		UserId:            userId,
		CurrencyId:        currencyId,
		Deposit:           zeroTotals(),
		SpinBonus:         zeroTotals(),
		Withdraw:          zeroTotals(),
		Win:               zeroTotals(),
		Loss:              zeroTotals(),
		CurrentBalance:    decimal.Zero,
		CurrentBalanceUSD: decimal.Zero,
	}
}

// BuildPlayerBalance folds transaction rows into a balance snapshot. Each
// row's USD equivalent divides by that row's own stored conversion rate, so
// historical values survive later rate changes. A user with no rows yields an
// all-zero snapshot, not an error.
func BuildPlayerBalance(userId int, currencyId *int, rows []models.Transaction) (PlayerBalance, error) {
	bal := emptyBalance(userId, currencyId)

	for _, row := range rows {
		if row.Status == models.StatusRejected {
			continue
		}

		usd, ok := money.USDEquivalent(row.Amount, row.ConversionRate)
		if !ok {
			return PlayerBalance{}, fmt.Errorf("%w: transaction %d has no conversion rate", ErrInvariantViolation, row.ID)
		}

		var totals *TypeTotals
		switch row.Type {
		case models.TrxDeposit:
			totals = &bal.Deposit
		case models.TrxSpinBonus:
			totals = &bal.SpinBonus
		case models.TrxWithdraw:
			totals = &bal.Withdraw
		case models.TrxWin:
			totals = &bal.Win
		case models.TrxLoss:
			totals = &bal.Loss
		default:
			continue
		}

		if row.Status == models.StatusApproved {
			totals.Approved = totals.Approved.Add(row.Amount)
			totals.ApprovedUSD = totals.ApprovedUSD.Add(usd)
		} else {
			totals.Pending = totals.Pending.Add(row.Amount)
			totals.PendingUSD = totals.PendingUSD.Add(usd)
		}
	}

	bal.CurrentBalance = bal.Deposit.Approved.
		Add(bal.SpinBonus.Approved).
		Add(bal.Win.Approved).
		Sub(bal.Withdraw.Approved).
		Sub(bal.Loss.Approved)
	bal.CurrentBalanceUSD = bal.Deposit.ApprovedUSD.
		Add(bal.SpinBonus.ApprovedUSD).
		Add(bal.Win.ApprovedUSD).
		Sub(bal.Withdraw.ApprovedUSD).
		Sub(bal.Loss.ApprovedUSD)

	return bal, nil
}

// CalculatePlayerBalance aggregates a player's transactions into a snapshot,
// optionally restricted to one currency. Uses the provided tx so callers can
// read a consistent view inside their own transaction.
func (s *BalanceService) CalculatePlayerBalance(tx *gorm.DB, userId int, currencyId *int) (PlayerBalance, error) {
	if tx == nil {
		tx = s.DB
	}

	query := tx.Where("user_id = ?", userId)
	if currencyId != nil {
		query = query.Where("currency_id = ?", *currencyId)
	}

	var rows []models.Transaction
	if err := query.Find(&rows).Error; err != nil {
		return PlayerBalance{}, err
	}

	return BuildPlayerBalance(userId, currencyId, rows)
}

// CompanyMainBalance computes the operator's main balance from approved
// company ledger rows: admin_deposit + player_withdraw + admin_withdraw
// - player_deposit - promotion - spin_bonus.
func (s *BalanceService) CompanyMainBalance() (decimal.Decimal, error) {
	var rows []models.CompanyLedgerEntry
	if err := s.DB.Where("status = ?", models.StatusApproved).Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, row := range rows {
		switch row.Type {
		case models.LedgerAdminDeposit, models.LedgerPlayerWithdraw, models.LedgerAdminWithdraw:
			total = total.Add(row.Amount)
		case models.LedgerPlayerDeposit, models.LedgerPromotion, models.LedgerSpinBonus:
			total = total.Sub(row.Amount)
		}
	}
	return total, nil
}
