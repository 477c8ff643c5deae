package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger-service/internal/models"
	"ledger-service/pkg/money"
)

// WithdrawalService gates player withdrawals behind the eligibility rules and
// serializes balance checks against concurrent settlement.
type WithdrawalService struct {
	DB       *gorm.DB
	Helper   *HelperService
	Balance  *BalanceService
	Turnover *TurnoverService
}

func NewWithdrawalService(db *gorm.DB, helper *HelperService, balance *BalanceService, turnover *TurnoverService) *WithdrawalService {
	return &WithdrawalService{DB: db, Helper: helper, Balance: balance, Turnover: turnover}
}

// EvaluateWithdrawEligibility applies the denial rules in priority order and
// returns the first one that fires: KYC, then account status, then minimum
// balance, then open turnover. A denied player sees exactly one reason even
// when several apply.
func EvaluateWithdrawEligibility(user models.User, currentBalance decimal.Decimal, hasActiveTurnover bool, settings SettingsSnapshot) error {
	if user.KycStatus == models.KycRequired {
		return ErrKycRequired
	}
	if user.Status != models.AccountActive {
		return ErrAccountInactive
	}
	if currentBalance.LessThan(settings.MinWithdrawableBalance) {
		return ErrInsufficientBalance
	}
	if hasActiveTurnover {
		return ErrTurnoverPending
	}
	return nil
}

// WithdrawCapability is the guard's answer for the player-facing check.
type WithdrawCapability struct {
	CanWithdraw    bool            `json:"canWithdraw"`
	Reason         string          `json:"reason,omitempty"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
}

// CheckWithdrawCapability runs the eligibility guard without side effects.
func (s *WithdrawalService) CheckWithdrawCapability(userId int) (*WithdrawCapability, error) {
	var user models.User
	if err := s.DB.First(&user, userId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userId)
		}
		return nil, err
	}

	balance, err := s.Balance.CalculatePlayerBalance(nil, userId, nil)
	if err != nil {
		return nil, err
	}

	obligations, err := s.Turnover.ActiveObligations(nil, userId, false)
	if err != nil {
		return nil, err
	}

	settings := s.Helper.LoadSettings()
	capability := &WithdrawCapability{CurrentBalance: balance.CurrentBalance}

	if err := EvaluateWithdrawEligibility(user, balance.CurrentBalance, len(obligations) > 0, settings); err != nil {
		capability.Reason = err.Error()
		return capability, nil
	}

	capability.CanWithdraw = true
	return capability, nil
}

type WithdrawDTO struct {
	UserId     int
	Amount     decimal.Decimal
	CurrencyId int
	GatewayId  *int
	Notes      string
}

// CreateWithdraw records a pending withdrawal after the full eligibility
// guard passes. The guard, the balance check and the insert run under a lock
// on the user row so a settlement racing this call cannot overdraw the
// derived balance.
func (s *WithdrawalService) CreateWithdraw(data WithdrawDTO) (*models.Transaction, error) {
	if data.Amount.IsZero() || data.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	rate, err := s.Helper.LookupConversionRate(data.CurrencyId)
	if err != nil {
		return nil, err
	}

	settings := s.Helper.LoadSettings()

	var trx models.Transaction
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, data.UserId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: user %d", ErrNotFound, data.UserId)
			}
			return err
		}

		balance, err := s.Balance.CalculatePlayerBalance(tx, data.UserId, nil)
		if err != nil {
			return err
		}

		obligations, err := s.Turnover.ActiveObligations(tx, data.UserId, false)
		if err != nil {
			return err
		}

		if err := EvaluateWithdrawEligibility(user, balance.CurrentBalance, len(obligations) > 0, settings); err != nil {
			return err
		}
		if data.Amount.GreaterThan(balance.CurrentBalance) {
			return ErrInsufficientBalance
		}

		trxNo, err := s.Helper.GenerateTransactionNo(tx)
		if err != nil {
			return err
		}

		trx = models.Transaction{
			UserId:              &data.UserId,
			Type:                models.TrxWithdraw,
			Amount:              money.Round(data.Amount),
			CurrencyId:          data.CurrencyId,
			ConversionRate:      rate,
			GatewayId:           data.GatewayId,
			Status:              models.StatusPending,
			CustomTransactionId: trxNo,
			Notes:               data.Notes,
		}
		return tx.Create(&trx).Error
	})
	if err != nil {
		return nil, err
	}

	s.Helper.EmitEvent("withdraw.requested", map[string]interface{}{
		"transactionId": trx.ID,
		"userId":        data.UserId,
		"amount":        trx.Amount.String(),
	})

	return &trx, nil
}
