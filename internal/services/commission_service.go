package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger-service/internal/models"
	"ledger-service/pkg/money"
)

// CommissionService posts tiered affiliate commissions from settled bets and
// settles affiliate withdrawals against them.
type CommissionService struct {
	DB     *gorm.DB
	Helper *HelperService
}

func NewCommissionService(db *gorm.DB, helper *HelperService) *CommissionService {
	return &CommissionService{DB: db, Helper: helper}
}

// CommissionShare is one computed payout line before persistence.
type CommissionShare struct {
	AdminUserId int
	Percentage  decimal.Decimal
	Amount      decimal.Decimal
}

// SplitShares computes the commission lines for a settled bet. The amount is
// positive when the player lost and negative when the player won; a
// break-even bet yields no shares. A lone super-affiliate takes its full
// percentage; an affiliate under a super-affiliate takes its own percentage
// while the super-affiliate takes the marginal difference. An affiliate
// percentage above its super-affiliate's is a configuration fault and aborts
// the settlement.
func SplitShares(referrer models.User, upline *models.User, winAmount, lossAmount decimal.Decimal) ([]CommissionShare, error) {
	var base decimal.Decimal
	sign := decimal.NewFromInt(1)

	switch {
	case lossAmount.IsPositive():
		base = lossAmount
	case winAmount.IsPositive():
		base = winAmount
		sign = decimal.NewFromInt(-1)
	default:
		return nil, nil
	}

	var shares []CommissionShare

	appendShare := func(adminUserId int, pct decimal.Decimal) {
		amount := money.Round(money.Percent(base, pct).Mul(sign))
		if amount.IsZero() {
			return
		}
		shares = append(shares, CommissionShare{
			AdminUserId: adminUserId,
			Percentage:  pct,
			Amount:      amount,
		})
	}

	switch referrer.Role {
	case models.RoleSuperAffiliate:
		appendShare(referrer.ID, referrer.CommissionPercent)

	case models.RoleAffiliate:
		appendShare(referrer.ID, referrer.CommissionPercent)

		if upline != nil {
			marginal := upline.CommissionPercent.Sub(referrer.CommissionPercent)
			if marginal.IsNegative() {
				return nil, fmt.Errorf("%w: affiliate %d commission %s exceeds super-affiliate %d commission %s",
					ErrInvariantViolation, referrer.ID, referrer.CommissionPercent, upline.ID, upline.CommissionPercent)
			}
			appendShare(upline.ID, marginal)
		}

	default:
		return nil, nil
	}

	return shares, nil
}

// resolveReferrer walks the player's referral link and returns the referring
// affiliate plus its super-affiliate upline, if any. Players without a
// commissionable referrer yield (nil, nil).
func (s *CommissionService) resolveReferrer(tx *gorm.DB, player *models.User) (*models.User, *models.User, error) {
	if player.ReferredBy == nil {
		return nil, nil, nil
	}

	var referrer models.User
	if err := tx.First(&referrer, *player.ReferredBy).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	if referrer.Role != models.RoleAffiliate && referrer.Role != models.RoleSuperAffiliate {
		return nil, nil, nil
	}

	if referrer.Role == models.RoleAffiliate && referrer.ParentAgentId != nil {
		var upline models.User
		if err := tx.First(&upline, *referrer.ParentAgentId).Error; err == nil &&
			upline.Role == models.RoleSuperAffiliate {
			return &referrer, &upline, nil
		} else if err != nil && err != gorm.ErrRecordNotFound {
			return nil, nil, err
		}
	}

	return &referrer, nil, nil
}

// Cascade posts commission rows for a settled bet inside the caller's
// transaction. Zero-valued rows are never inserted.
func (s *CommissionService) Cascade(tx *gorm.DB, bet *models.BetResult) error {
	var player models.User
	if err := tx.First(&player, bet.UserId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	referrer, upline, err := s.resolveReferrer(tx, &player)
	if err != nil {
		return err
	}
	if referrer == nil {
		return nil
	}

	shares, err := SplitShares(*referrer, upline, bet.WinAmount, bet.LossAmount)
	if err != nil {
		return err
	}

	for _, share := range shares {
		record := models.CommissionRecord{
			BetResultId:      bet.ID,
			PlayerId:         player.ID,
			AdminUserId:      share.AdminUserId,
			CommissionAmount: share.Amount,
			Percentage:       share.Percentage,
			Status:           models.CommissionPending,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
	}

	return nil
}

// UpdateCommissionStatus moves a pending commission row to approved or
// rejected. Approval credits the affiliate's withdrawable balance.
func (s *CommissionService) UpdateCommissionStatus(commissionId int, status string) (*models.CommissionRecord, error) {
	if status != models.CommissionApproved && status != models.CommissionRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrValidation)
	}

	var record models.CommissionRecord
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, commissionId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: commission %d", ErrNotFound, commissionId)
			}
			return err
		}

		if record.Status != models.CommissionPending {
			return fmt.Errorf("%w: commission %d is %s", ErrValidation, commissionId, record.Status)
		}

		if err := tx.Model(&record).Update("status", status).Error; err != nil {
			return err
		}

		if status == models.CommissionApproved {
			if err := tx.Model(&models.User{}).
				Where("id = ?", record.AdminUserId).
				Update("remaining_balance", gorm.Expr("remaining_balance + ?", record.CommissionAmount)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	record.Status = status
	return &record, nil
}

type AffiliateWithdrawDTO struct {
	AffiliateId int
	Amount      decimal.Decimal
	CurrencyId  int
}

// RequestAffiliateWithdraw creates a pending withdraw transaction against an
// affiliate's commission balance. Approved commissions are marked paid at
// request time and the withdrawable balance is debited immediately; the
// admission check and the debit run under a lock on the affiliate row.
func (s *CommissionService) RequestAffiliateWithdraw(data AffiliateWithdrawDTO) (*models.Transaction, error) {
	if data.Amount.IsZero() || data.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	rate, err := s.Helper.LookupConversionRate(data.CurrencyId)
	if err != nil {
		return nil, err
	}

	var trx models.Transaction
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var affiliate models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&affiliate, data.AffiliateId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: affiliate %d", ErrNotFound, data.AffiliateId)
			}
			return err
		}

		if affiliate.Role != models.RoleAffiliate && affiliate.Role != models.RoleSuperAffiliate {
			return fmt.Errorf("%w: user %d is not an affiliate", ErrValidation, data.AffiliateId)
		}
		if affiliate.RemainingBalance.LessThan(data.Amount) {
			return ErrInsufficientBalance
		}

		trxNo, err := s.Helper.GenerateTransactionNo(tx)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.CommissionRecord{}).
			Where("admin_user_id = ? AND status = ?", data.AffiliateId, models.CommissionApproved).
			Update("status", models.CommissionPaid).Error; err != nil {
			return err
		}

		if err := tx.Model(&affiliate).
			Update("remaining_balance", gorm.Expr("remaining_balance - ?", money.Round(data.Amount))).Error; err != nil {
			return err
		}

		trx = models.Transaction{
			AffiliateId:         &data.AffiliateId,
			Type:                models.TrxWithdraw,
			Amount:              money.Round(data.Amount),
			CurrencyId:          data.CurrencyId,
			ConversionRate:      rate,
			Status:              models.StatusPending,
			CustomTransactionId: trxNo,
		}
		return tx.Create(&trx).Error
	})
	if err != nil {
		return nil, err
	}

	s.Helper.EmitEvent("affiliate.withdraw.requested", map[string]interface{}{
		"transactionId": trx.ID,
		"affiliateId":   data.AffiliateId,
		"amount":        trx.Amount.String(),
	})

	return &trx, nil
}

// UpdateAffiliateWithdrawStatus drives the affiliate-withdraw variant of the
// state machine. Approval settles the affiliate's paid commissions; rejection
// reverts them to approved and restores the withdrawn amount only when no
// commission had reached paid, otherwise the withdrawable balance is zeroed
// because those funds were already disbursed through the paid commissions.
func (s *CommissionService) UpdateAffiliateWithdrawStatus(transactionId int, status, notes string) (*models.Transaction, error) {
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrValidation)
	}

	var trx models.Transaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&trx, transactionId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: transaction %d", ErrNotFound, transactionId)
			}
			return err
		}

		if trx.AffiliateId == nil || trx.Type != models.TrxWithdraw {
			return fmt.Errorf("%w: transaction %d is not an affiliate withdrawal", ErrValidation, transactionId)
		}
		// Only pending withdrawals settle. Replaying the transition would
		// restore the withdrawn amount a second time.
		if trx.Status != models.StatusPending {
			return fmt.Errorf("%w: transaction %d already %s", ErrValidation, transactionId, trx.Status)
		}

		if err := tx.Model(&trx).Updates(map[string]interface{}{
			"status": status,
			"notes":  notes,
		}).Error; err != nil {
			return err
		}

		if status == models.StatusApproved {
			return tx.Model(&models.CommissionRecord{}).
				Where("admin_user_id = ? AND status = ?", *trx.AffiliateId, models.CommissionPaid).
				Update("status", models.CommissionSettled).Error
		}

		res := tx.Model(&models.CommissionRecord{}).
			Where("admin_user_id = ? AND status = ?", *trx.AffiliateId, models.CommissionPaid).
			Update("status", models.CommissionApproved)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return tx.Model(&models.User{}).
				Where("id = ?", *trx.AffiliateId).
				Update("remaining_balance", gorm.Expr("remaining_balance + ?", trx.Amount)).Error
		}
		return tx.Model(&models.User{}).
			Where("id = ?", *trx.AffiliateId).
			Update("remaining_balance", decimal.Zero).Error
	})
	if err != nil {
		return nil, err
	}

	s.Helper.EmitEvent("affiliate.withdraw."+status, map[string]interface{}{
		"transactionId": trx.ID,
		"affiliateId":   *trx.AffiliateId,
		"amount":        trx.Amount.String(),
	})

	trx.Status = status
	return &trx, nil
}
