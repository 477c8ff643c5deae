package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger-service/internal/models"
	"ledger-service/pkg/money"
)

// TurnoverService owns wagering obligations: creation when deposits and
// bonuses are approved, FIFO consumption as bets settle.
type TurnoverService struct {
	DB *gorm.DB
}

func NewTurnoverService(db *gorm.DB) *TurnoverService {
	return &TurnoverService{DB: db}
}

// ObligationUpdate is one step of a consumption plan.
type ObligationUpdate struct {
	ObligationId int
	Consumed     decimal.Decimal
	NewRemaining decimal.Decimal
	Completed    bool
}

// PlanConsumption walks active obligations oldest-first and drains betAmount
// across them: each obligation absorbs as much as it can, the residual
// carries to the next. An obligation reaching zero is marked completed.
// Nothing is ever refunded within a plan.
func PlanConsumption(obligations []models.TurnoverObligation, betAmount decimal.Decimal) ([]ObligationUpdate, error) {
	if betAmount.IsNegative() {
		return nil, fmt.Errorf("%w: negative bet amount", ErrValidation)
	}

	residual := betAmount
	var plan []ObligationUpdate

	for _, ob := range obligations {
		if residual.IsZero() {
			break
		}
		if ob.RemainingTurnover.IsNegative() {
			return nil, fmt.Errorf("%w: obligation %d has negative remaining turnover", ErrInvariantViolation, ob.ID)
		}
		if ob.RemainingTurnover.IsZero() {
			continue
		}

		if ob.RemainingTurnover.GreaterThan(residual) {
			plan = append(plan, ObligationUpdate{
				ObligationId: ob.ID,
				Consumed:     residual,
				NewRemaining: money.Round(ob.RemainingTurnover.Sub(residual)),
				Completed:    false,
			})
			residual = decimal.Zero
		} else {
			plan = append(plan, ObligationUpdate{
				ObligationId: ob.ID,
				Consumed:     ob.RemainingTurnover,
				NewRemaining: decimal.Zero,
				Completed:    true,
			})
			residual = residual.Sub(ob.RemainingTurnover)
		}
	}

	return plan, nil
}

// UpsertObligation creates or refreshes the obligation keyed by
// (transactionId, obType). Re-approval reactivates and resets the existing
// row instead of inserting a second one.
func (s *TurnoverService) UpsertObligation(tx *gorm.DB, userId, transactionId int, obType string, depositAmount, targetTurnover decimal.Decimal) error {
	target := money.Round(targetTurnover)

	var existing models.TurnoverObligation
	err := tx.Where("transaction_id = ? AND type = ?", transactionId, obType).First(&existing).Error
	if err == nil {
		// An active obligation with an unchanged target is already being
		// consumed; resetting it would hand back wagered-off turnover.
		if existing.Status == models.TurnoverActive && existing.TargetTurnover.Equal(target) {
			return nil
		}
		return tx.Model(&existing).Updates(map[string]interface{}{
			"status":             models.TurnoverActive,
			"deposit_amount":     money.Round(depositAmount),
			"target_turnover":    target,
			"remaining_turnover": target,
		}).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	ob := models.TurnoverObligation{
		UserId:            userId,
		TransactionId:     transactionId,
		Type:              obType,
		Status:            models.TurnoverActive,
		DepositAmount:     money.Round(depositAmount),
		TargetTurnover:    target,
		RemainingTurnover: target,
	}
	return tx.Create(&ob).Error
}

// DeactivateForTransaction retires every obligation of a rejected or
// re-pended transaction. Retired obligations become inactive, never
// completed, and are never reactivated except through re-approval.
func (s *TurnoverService) DeactivateForTransaction(tx *gorm.DB, transactionId int) error {
	return tx.Model(&models.TurnoverObligation{}).
		Where("transaction_id = ?", transactionId).
		Update("status", models.TurnoverInactive).Error
}

// ActiveObligations lists a user's open obligations oldest-first, optionally
// locking the rows for the caller's transaction.
func (s *TurnoverService) ActiveObligations(tx *gorm.DB, userId int, lock bool) ([]models.TurnoverObligation, error) {
	if tx == nil {
		tx = s.DB
	}

	query := tx.Where("user_id = ? AND status = ? AND remaining_turnover > 0", userId, models.TurnoverActive).
		Order("id ASC")
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var obligations []models.TurnoverObligation
	if err := query.Find(&obligations).Error; err != nil {
		return nil, err
	}
	return obligations, nil
}

// Consume drains betAmount from the user's active obligations inside the
// caller's transaction. balanceAfter is the player's balance once the bet's
// loss is applied; at or below the configured floor the player can no longer
// meaningfully progress, so all open obligations are force-completed instead.
func (s *TurnoverService) Consume(tx *gorm.DB, userId int, betAmount, balanceAfter decimal.Decimal, settings SettingsSnapshot) error {
	if balanceAfter.LessThanOrEqual(settings.TurnoverBreakFloor) {
		return tx.Model(&models.TurnoverObligation{}).
			Where("user_id = ? AND status = ?", userId, models.TurnoverActive).
			Updates(map[string]interface{}{
				"remaining_turnover": decimal.Zero,
				"status":             models.TurnoverCompleted,
			}).Error
	}

	obligations, err := s.ActiveObligations(tx, userId, true)
	if err != nil {
		return err
	}

	plan, err := PlanConsumption(obligations, betAmount)
	if err != nil {
		return err
	}

	for _, step := range plan {
		status := models.TurnoverActive
		if step.Completed {
			status = models.TurnoverCompleted
		}

		res := tx.Model(&models.TurnoverObligation{}).
			Where("id = ? AND status = ?", step.ObligationId, models.TurnoverActive).
			Updates(map[string]interface{}{
				"remaining_turnover": step.NewRemaining,
				"status":             status,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: obligation %d changed underneath settlement", ErrConcurrencyConflict, step.ObligationId)
		}
	}

	return nil
}
