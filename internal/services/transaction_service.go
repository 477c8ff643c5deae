package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger-service/internal/models"
	"ledger-service/pkg/money"
)

// TransactionService owns the transaction log and the approval state machine.
// Every status change runs its side effects inside one database transaction;
// each effect step is an upsert, so re-running a transition never duplicates
// obligations or ledger rows.
type TransactionService struct {
	DB       *gorm.DB
	Helper   *HelperService
	Turnover *TurnoverService
}

func NewTransactionService(db *gorm.DB, helper *HelperService, turnover *TurnoverService) *TransactionService {
	return &TransactionService{DB: db, Helper: helper, Turnover: turnover}
}

type DepositDTO struct {
	UserId      int
	Amount      decimal.Decimal
	CurrencyId  int
	PromotionId *int
	GatewayId   *int
	Notes       string
}

type DepositResult struct {
	TransactionId       int    `json:"transactionId"`
	CustomTransactionId string `json:"customTransactionId"`
}

// CreateDeposit records a pending deposit. The currency's conversion rate is
// snapshotted onto the row; later rate changes never touch it. No balance or
// obligation moves until the deposit is approved.
func (s *TransactionService) CreateDeposit(data DepositDTO) (*DepositResult, error) {
	if data.Amount.IsZero() || data.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	var user models.User
	if err := s.DB.First(&user, data.UserId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, data.UserId)
		}
		return nil, err
	}

	if data.PromotionId != nil {
		var promo models.Promotion
		if err := s.DB.Where("id = ? AND status = 1", *data.PromotionId).First(&promo).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("%w: promotion %d", ErrNotFound, *data.PromotionId)
			}
			return nil, err
		}
	}

	rate, err := s.Helper.LookupConversionRate(data.CurrencyId)
	if err != nil {
		return nil, err
	}

	var trx models.Transaction
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		trxNo, err := s.Helper.GenerateTransactionNo(tx)
		if err != nil {
			return err
		}

		trx = models.Transaction{
			UserId:              &data.UserId,
			Type:                models.TrxDeposit,
			Amount:              money.Round(data.Amount),
			CurrencyId:          data.CurrencyId,
			ConversionRate:      rate,
			PromotionId:         data.PromotionId,
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

	s.Helper.EmitEvent("deposit.requested", map[string]interface{}{
		"transactionId": trx.ID,
		"userId":        data.UserId,
		"amount":        trx.Amount.String(),
	})

	return &DepositResult{
		TransactionId:       trx.ID,
		CustomTransactionId: trx.CustomTransactionId,
	}, nil
}

// upsertLedgerEntry posts or refreshes the company ledger row keyed by
// (transactionId, entryType). Re-approval lands on the same row.
func upsertLedgerEntry(tx *gorm.DB, trx *models.Transaction, entryType string, amount decimal.Decimal) error {
	var existing models.CompanyLedgerEntry
	err := tx.Where("transaction_id = ? AND type = ?", trx.ID, entryType).First(&existing).Error
	if err == nil {
		return tx.Model(&existing).Updates(map[string]interface{}{
			"amount": money.Round(amount),
			"status": models.StatusApproved,
		}).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	entry := models.CompanyLedgerEntry{
		Amount:        money.Round(amount),
		Type:          entryType,
		Status:        models.StatusApproved,
		TransactionId: &trx.ID,
		PromotionId:   trx.PromotionId,
		CurrencyId:    trx.CurrencyId,
	}
	return tx.Create(&entry).Error
}

// syncLedgerStatus pushes the transaction's status onto its ledger rows so the
// company balance, which counts approved rows only, tracks rejections.
func syncLedgerStatus(tx *gorm.DB, transactionId int, status string) error {
	return tx.Model(&models.CompanyLedgerEntry{}).
		Where("transaction_id = ?", transactionId).
		Update("status", status).Error
}

// applyApprovalEffects runs the ordered effect steps of an approval: the
// default turnover obligation, then the promotion bonus with its obligation
// and ledger row, then the base ledger entry. Every step is keyed on
// (transaction id, type), so a repeated approval converges on the same rows.
func (s *TransactionService) applyApprovalEffects(tx *gorm.DB, trx *models.Transaction, settings SettingsSnapshot) error {
	if trx.UserId == nil {
		return nil
	}
	userId := *trx.UserId

	switch trx.Type {
	case models.TrxDeposit:
		target := trx.Amount.Mul(settings.DefaultTurnoverMultiplier)
		if err := s.Turnover.UpsertObligation(tx, userId, trx.ID, models.TurnoverDefault, trx.Amount, target); err != nil {
			return err
		}

		if trx.PromotionId != nil {
			var promo models.Promotion
			if err := tx.First(&promo, *trx.PromotionId).Error; err != nil {
				return fmt.Errorf("%w: promotion %d", ErrNotFound, *trx.PromotionId)
			}

			bonus := money.Round(money.Percent(trx.Amount, promo.BonusPercent))
			if err := tx.Model(trx).Update("bonus_amount", bonus).Error; err != nil {
				return err
			}
			trx.BonusAmount = bonus

			bonusTarget := bonus.Mul(promo.TurnoverMultiplier)
			if err := s.Turnover.UpsertObligation(tx, userId, trx.ID, models.TurnoverPromotion, bonus, bonusTarget); err != nil {
				return err
			}
			if err := upsertLedgerEntry(tx, trx, models.LedgerPromotion, bonus); err != nil {
				return err
			}
		}

		return upsertLedgerEntry(tx, trx, models.LedgerPlayerDeposit, trx.Amount)

	case models.TrxSpinBonus:
		target := trx.Amount.Mul(settings.DefaultTurnoverMultiplier)
		if err := s.Turnover.UpsertObligation(tx, userId, trx.ID, models.TurnoverSpinBonus, trx.Amount, target); err != nil {
			return err
		}
		return upsertLedgerEntry(tx, trx, models.LedgerSpinBonus, trx.Amount)

	case models.TrxWithdraw:
		return upsertLedgerEntry(tx, trx, models.LedgerPlayerWithdraw, trx.Amount)
	}

	// win/loss rows are posted approved by settlement and carry no ledger
	// side effects of their own.
	return nil
}

// UpdateTransactionStatus moves a player transaction between pending,
// approved and rejected. Approval runs the effect cascade; leaving approved
// retires the transaction's obligations (inactive, never completed) and syncs
// its ledger rows. All of it commits or none of it does.
func (s *TransactionService) UpdateTransactionStatus(transactionId int, status, notes, processedBy string, processedByUser *int) (*models.Transaction, error) {
	if status != models.StatusPending && status != models.StatusApproved && status != models.StatusRejected {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	settings := s.Helper.LoadSettings()

	var trx models.Transaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&trx, transactionId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: transaction %d", ErrNotFound, transactionId)
			}
			return err
		}

		if trx.UserId == nil {
			return fmt.Errorf("%w: transaction %d is an affiliate transaction", ErrValidation, transactionId)
		}

		updates := map[string]interface{}{
			"status":            status,
			"notes":             notes,
			"processed_by":      processedBy,
			"processed_by_user": processedByUser,
		}
		if err := tx.Model(&trx).Updates(updates).Error; err != nil {
			return err
		}
		trx.Status = status
		trx.Notes = notes

		if status == models.StatusApproved {
			return s.applyApprovalEffects(tx, &trx, settings)
		}

		if err := s.Turnover.DeactivateForTransaction(tx, trx.ID); err != nil {
			return err
		}
		return syncLedgerStatus(tx, trx.ID, status)
	})
	if err != nil {
		return nil, err
	}

	s.Helper.EmitEvent("transaction."+status, map[string]interface{}{
		"transactionId": trx.ID,
		"userId":        *trx.UserId,
		"type":          trx.Type,
		"amount":        trx.Amount.String(),
	})

	return &trx, nil
}

type SpinBonusDTO struct {
	UserId             int
	Amount             decimal.Decimal
	CurrencyId         int
	TurnoverMultiplier decimal.Decimal
	Notes              string
}

// ClaimSpinBonus posts a spin bonus directly as approved and immediately runs
// the approval effects: the bonus is credited and its wagering obligation
// opens in the same transaction. A positive TurnoverMultiplier overrides the
// operator default for this bonus only.
func (s *TransactionService) ClaimSpinBonus(data SpinBonusDTO) (*models.Transaction, error) {
	if data.Amount.IsZero() || data.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if data.TurnoverMultiplier.IsNegative() {
		return nil, fmt.Errorf("%w: turnover multiplier must not be negative", ErrValidation)
	}

	var user models.User
	if err := s.DB.First(&user, data.UserId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, data.UserId)
		}
		return nil, err
	}

	rate, err := s.Helper.LookupConversionRate(data.CurrencyId)
	if err != nil {
		return nil, err
	}

	settings := s.Helper.LoadSettings()
	if data.TurnoverMultiplier.IsPositive() {
		settings.DefaultTurnoverMultiplier = data.TurnoverMultiplier
	}

	var trx models.Transaction
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		trxNo, err := s.Helper.GenerateTransactionNo(tx)
		if err != nil {
			return err
		}

		trx = models.Transaction{
			UserId:              &data.UserId,
			Type:                models.TrxSpinBonus,
			Amount:              money.Round(data.Amount),
			CurrencyId:          data.CurrencyId,
			ConversionRate:      rate,
			Status:              models.StatusApproved,
			CustomTransactionId: trxNo,
			Notes:               data.Notes,
		}
		if err := tx.Create(&trx).Error; err != nil {
			return err
		}

		return s.applyApprovalEffects(tx, &trx, settings)
	})
	if err != nil {
		return nil, err
	}

	s.Helper.EmitEvent("spinBonus.claimed", map[string]interface{}{
		"transactionId": trx.ID,
		"userId":        data.UserId,
		"amount":        trx.Amount.String(),
	})

	return &trx, nil
}

// ClaimNotification approves a spin bonus that was awarded as a pending
// transaction. The claim must come from the awarded user; approval runs the
// same effect cascade as any other approval.
func (s *TransactionService) ClaimNotification(transactionId, userId int) (*models.Transaction, error) {
	var trx models.Transaction
	if err := s.DB.First(&trx, transactionId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: transaction %d", ErrNotFound, transactionId)
		}
		return nil, err
	}

	if trx.UserId == nil || *trx.UserId != userId {
		return nil, fmt.Errorf("%w: transaction %d does not belong to user %d", ErrValidation, transactionId, userId)
	}
	if trx.Type != models.TrxSpinBonus {
		return nil, fmt.Errorf("%w: transaction %d is not a claimable bonus", ErrValidation, transactionId)
	}
	if trx.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: transaction %d already %s", ErrValidation, transactionId, trx.Status)
	}

	return s.UpdateTransactionStatus(transactionId, models.StatusApproved, trx.Notes, "system", &userId)
}

// RecordAdminLedger posts an operator funding movement (admin_deposit or
// admin_withdraw) straight onto the company ledger. These rows have no player
// transaction behind them.
func (s *TransactionService) RecordAdminLedger(entryType string, amount decimal.Decimal, currencyId int, notes string) (*models.CompanyLedgerEntry, error) {
	if entryType != models.LedgerAdminDeposit && entryType != models.LedgerAdminWithdraw {
		return nil, fmt.Errorf("%w: unknown ledger type %q", ErrValidation, entryType)
	}
	if amount.IsZero() || amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	entry := models.CompanyLedgerEntry{
		Amount:     money.Round(amount),
		Type:       entryType,
		Status:     models.StatusApproved,
		CurrencyId: currencyId,
		Notes:      notes,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
