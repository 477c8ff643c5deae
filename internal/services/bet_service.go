package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger-service/internal/models"
	"ledger-service/pkg/money"
)

// BetService issues bet sessions and settles their results: win/loss rows on
// the transaction log, FIFO turnover consumption, and the commission cascade,
// all under one database transaction per settlement.
type BetService struct {
	DB         *gorm.DB
	Helper     *HelperService
	Balance    *BalanceService
	Turnover   *TurnoverService
	Commission *CommissionService
}

func NewBetService(db *gorm.DB, helper *HelperService, balance *BalanceService, turnover *TurnoverService, commission *CommissionService) *BetService {
	return &BetService{DB: db, Helper: helper, Balance: balance, Turnover: turnover, Commission: commission}
}

// CreateBetSession issues the token a later settlement call binds to. One
// token, one settleable bet.
func (s *BetService) CreateBetSession(userId int, gameId string, betAmount decimal.Decimal) (*models.BetResult, error) {
	if betAmount.IsZero() || betAmount.IsNegative() {
		return nil, fmt.Errorf("%w: bet amount must be positive", ErrValidation)
	}

	var user models.User
	if err := s.DB.First(&user, userId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userId)
		}
		return nil, err
	}

	bet := models.BetResult{
		UserId:       userId,
		GameId:       gameId,
		SessionToken: uuid.NewString(),
		BetAmount:    money.Round(betAmount),
		Status:       models.BetPending,
	}
	if err := s.DB.Create(&bet).Error; err != nil {
		return nil, err
	}
	return &bet, nil
}

// UpdateBetResult settles the pending bet bound to sessionToken. A settled
// token never settles again. Won and lost bets post an approved win or loss
// transaction, consume the bet amount from the player's open obligations and
// run the commission cascade; void bets only close the row. The user row is
// locked for the whole settlement so concurrent bets serialize.
func (s *BetService) UpdateBetResult(sessionToken, betStatus string, winAmount, lossAmount decimal.Decimal, gameSessionId string) (bool, error) {
	switch betStatus {
	case models.BetWon, models.BetLost, models.BetVoid:
	default:
		return false, fmt.Errorf("%w: unknown bet status %q", ErrValidation, betStatus)
	}
	if winAmount.IsNegative() || lossAmount.IsNegative() {
		return false, fmt.Errorf("%w: amounts must not be negative", ErrValidation)
	}
	if betStatus == models.BetWon && winAmount.IsZero() {
		return false, fmt.Errorf("%w: won bet requires a win amount", ErrValidation)
	}
	if betStatus == models.BetLost && lossAmount.IsZero() {
		return false, fmt.Errorf("%w: lost bet requires a loss amount", ErrValidation)
	}
	// A settlement carries one outcome; a stray amount on the other side
	// would feed the commission cascade from the wrong direction.
	if betStatus == models.BetWon && lossAmount.IsPositive() {
		return false, fmt.Errorf("%w: won bet cannot carry a loss amount", ErrValidation)
	}
	if betStatus == models.BetLost && winAmount.IsPositive() {
		return false, fmt.Errorf("%w: lost bet cannot carry a win amount", ErrValidation)
	}
	if betStatus == models.BetVoid && (winAmount.IsPositive() || lossAmount.IsPositive()) {
		return false, fmt.Errorf("%w: void bet cannot carry amounts", ErrValidation)
	}

	settings := s.Helper.LoadSettings()

	var bet models.BetResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_token = ?", sessionToken).
			First(&bet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: bet session %s", ErrNotFound, sessionToken)
			}
			return err
		}
		if bet.Status != models.BetPending {
			return fmt.Errorf("%w: bet session %s already settled as %s", ErrValidation, sessionToken, bet.Status)
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, bet.UserId).Error; err != nil {
			return err
		}

		res := tx.Model(&models.BetResult{}).
			Where("id = ? AND status = ?", bet.ID, models.BetPending).
			Updates(map[string]interface{}{
				"status":          betStatus,
				"win_amount":      money.Round(winAmount),
				"loss_amount":     money.Round(lossAmount),
				"game_session_id": gameSessionId,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: bet %d settled concurrently", ErrConcurrencyConflict, bet.ID)
		}
		bet.Status = betStatus
		bet.WinAmount = money.Round(winAmount)
		bet.LossAmount = money.Round(lossAmount)
		bet.GameSessionId = gameSessionId

		if betStatus == models.BetVoid {
			return nil
		}

		rate, err := s.Helper.LookupConversionRate(user.CurrencyId)
		if err != nil {
			return err
		}

		trxType := models.TrxLoss
		amount := bet.LossAmount
		if betStatus == models.BetWon {
			trxType = models.TrxWin
			amount = bet.WinAmount
		}

		trxNo, err := s.Helper.GenerateTransactionNo(tx)
		if err != nil {
			return err
		}
		trx := models.Transaction{
			UserId:              &bet.UserId,
			Type:                trxType,
			Amount:              amount,
			CurrencyId:          user.CurrencyId,
			ConversionRate:      rate,
			Status:              models.StatusApproved,
			CustomTransactionId: trxNo,
			Notes:               "bet " + bet.SessionToken,
		}
		if err := tx.Create(&trx).Error; err != nil {
			return err
		}

		balance, err := s.Balance.CalculatePlayerBalance(tx, bet.UserId, nil)
		if err != nil {
			return err
		}

		if err := s.Turnover.Consume(tx, bet.UserId, bet.BetAmount, balance.CurrentBalance, settings); err != nil {
			return err
		}

		return s.Commission.Cascade(tx, &bet)
	})
	if err != nil {
		return false, err
	}

	s.Helper.EmitEvent("bet.settled", map[string]interface{}{
		"betResultId":  bet.ID,
		"userId":       bet.UserId,
		"status":       bet.Status,
		"betAmount":    bet.BetAmount.String(),
		"winAmount":    bet.WinAmount.String(),
		"lossAmount":   bet.LossAmount.String(),
		"sessionToken": bet.SessionToken,
	})

	return true, nil
}
