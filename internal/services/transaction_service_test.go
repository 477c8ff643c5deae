package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ledger-service/internal/models"
)

func newTransactionService() *TransactionService {
	helper := NewHelperService(testDB, nil)
	turnover := NewTurnoverService(testDB)
	return NewTransactionService(testDB, helper, turnover)
}

func TestDepositApprovalEffects(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	seedCurrency(t, 1, "1")
	testDB.Create(&models.Settings{
		DefaultTurnoverMultiplier: dec("2"),
		MinWithdrawableBalance:    dec("0"),
		TurnoverBreakFloor:        dec("20"),
	})
	user := seedUser(t, models.User{Username: "depositor", Role: models.RolePlayer, CurrencyId: 1})

	svc := newTransactionService()

	created, err := svc.CreateDeposit(DepositDTO{UserId: user.ID, Amount: dec("100"), CurrencyId: 1})
	require.NoError(t, err)
	require.NotEmpty(t, created.CustomTransactionId)

	trx, err := svc.UpdateTransactionStatus(created.TransactionId, models.StatusApproved, "ok", "admin", nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, trx.Status)

	var ob models.TurnoverObligation
	require.NoError(t, testDB.Where("transaction_id = ? AND type = ?", trx.ID, models.TurnoverDefault).First(&ob).Error)
	require.Equal(t, "200", ob.TargetTurnover.String())
	require.Equal(t, models.TurnoverActive, ob.Status)

	var entry models.CompanyLedgerEntry
	require.NoError(t, testDB.Where("transaction_id = ? AND type = ?", trx.ID, models.LedgerPlayerDeposit).First(&entry).Error)
	require.Equal(t, "100", entry.Amount.String())
	require.Equal(t, models.StatusApproved, entry.Status)
}

func TestReApprovalDoesNotDuplicateEffects(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	seedCurrency(t, 1, "1")
	user := seedUser(t, models.User{Username: "flipflop", Role: models.RolePlayer, CurrencyId: 1})

	svc := newTransactionService()

	created, err := svc.CreateDeposit(DepositDTO{UserId: user.ID, Amount: dec("100"), CurrencyId: 1})
	require.NoError(t, err)

	// approve, reject, approve again
	_, err = svc.UpdateTransactionStatus(created.TransactionId, models.StatusApproved, "", "admin", nil)
	require.NoError(t, err)
	_, err = svc.UpdateTransactionStatus(created.TransactionId, models.StatusRejected, "suspicious", "admin", nil)
	require.NoError(t, err)
	_, err = svc.UpdateTransactionStatus(created.TransactionId, models.StatusApproved, "cleared", "admin", nil)
	require.NoError(t, err)

	var obligations int64
	testDB.Model(&models.TurnoverObligation{}).
		Where("transaction_id = ?", created.TransactionId).
		Count(&obligations)
	require.EqualValues(t, 1, obligations)

	var ledgerRows int64
	testDB.Model(&models.CompanyLedgerEntry{}).
		Where("transaction_id = ?", created.TransactionId).
		Count(&ledgerRows)
	require.EqualValues(t, 1, ledgerRows)

	var ob models.TurnoverObligation
	testDB.Where("transaction_id = ?", created.TransactionId).First(&ob)
	require.Equal(t, models.TurnoverActive, ob.Status)
}

func TestRejectionFlipsObligationsInactiveAndSyncsLedger(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	seedCurrency(t, 1, "1")
	user := seedUser(t, models.User{Username: "rejected", Role: models.RolePlayer, CurrencyId: 1})

	svc := newTransactionService()

	created, err := svc.CreateDeposit(DepositDTO{UserId: user.ID, Amount: dec("100"), CurrencyId: 1})
	require.NoError(t, err)
	_, err = svc.UpdateTransactionStatus(created.TransactionId, models.StatusApproved, "", "admin", nil)
	require.NoError(t, err)
	_, err = svc.UpdateTransactionStatus(created.TransactionId, models.StatusRejected, "chargeback", "admin", nil)
	require.NoError(t, err)

	var ob models.TurnoverObligation
	testDB.Where("transaction_id = ?", created.TransactionId).First(&ob)
	require.Equal(t, models.TurnoverInactive, ob.Status)

	var entry models.CompanyLedgerEntry
	testDB.Where("transaction_id = ?", created.TransactionId).First(&entry)
	require.Equal(t, models.StatusRejected, entry.Status)

	// Rejected rows carry no weight in either balance.
	balance := NewBalanceService(testDB)
	bal, err := balance.CalculatePlayerBalance(nil, user.ID, nil)
	require.NoError(t, err)
	require.True(t, bal.CurrentBalance.IsZero())

	company, err := balance.CompanyMainBalance()
	require.NoError(t, err)
	require.True(t, company.IsZero())
}

func TestPromotionDepositOpensTwoObligations(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	seedCurrency(t, 1, "1")
	user := seedUser(t, models.User{Username: "promoted", Role: models.RolePlayer, CurrencyId: 1})
	promo := models.Promotion{Title: "Reload 20%", BonusPercent: dec("20"), TurnoverMultiplier: dec("5"), Status: 1}
	require.NoError(t, testDB.Create(&promo).Error)

	svc := newTransactionService()

	created, err := svc.CreateDeposit(DepositDTO{
		UserId:      user.ID,
		Amount:      dec("100"),
		CurrencyId:  1,
		PromotionId: &promo.ID,
	})
	require.NoError(t, err)

	trx, err := svc.UpdateTransactionStatus(created.TransactionId, models.StatusApproved, "", "admin", nil)
	require.NoError(t, err)
	require.Equal(t, "20", trx.BonusAmount.String())

	var promoOb models.TurnoverObligation
	require.NoError(t, testDB.Where("transaction_id = ? AND type = ?", trx.ID, models.TurnoverPromotion).First(&promoOb).Error)
	require.Equal(t, "100", promoOb.TargetTurnover.String())

	var defaultOb models.TurnoverObligation
	require.NoError(t, testDB.Where("transaction_id = ? AND type = ?", trx.ID, models.TurnoverDefault).First(&defaultOb).Error)

	var promoEntry models.CompanyLedgerEntry
	require.NoError(t, testDB.Where("transaction_id = ? AND type = ?", trx.ID, models.LedgerPromotion).First(&promoEntry).Error)
	require.Equal(t, "20", promoEntry.Amount.String())
}

func TestClaimSpinBonusPostsApprovedWithObligation(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	seedCurrency(t, 1, "1")
	user := seedUser(t, models.User{Username: "spinner", Role: models.RolePlayer, CurrencyId: 1})

	svc := newTransactionService()

	trx, err := svc.ClaimSpinBonus(SpinBonusDTO{UserId: user.ID, Amount: dec("15"), CurrencyId: 1})
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, trx.Status)

	var ob models.TurnoverObligation
	require.NoError(t, testDB.Where("transaction_id = ? AND type = ?", trx.ID, models.TurnoverSpinBonus).First(&ob).Error)

	var entry models.CompanyLedgerEntry
	require.NoError(t, testDB.Where("transaction_id = ? AND type = ?", trx.ID, models.LedgerSpinBonus).First(&entry).Error)
}
