package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ledger-service/internal/models"
)

func affiliate(id int, pct string) models.User {
	return models.User{ID: id, Role: models.RoleAffiliate, CommissionPercent: dec(pct)}
}

func superAffiliate(id int, pct string) models.User {
	return models.User{ID: id, Role: models.RoleSuperAffiliate, CommissionPercent: dec(pct)}
}

func TestSplitSharesTwoTierOnLoss(t *testing.T) {
	// Affiliate at 10% under a super-affiliate at 25%, player loses 100:
	// affiliate +10, super-affiliate takes the marginal 15% = +15.
	aff := affiliate(2, "10")
	sup := superAffiliate(3, "25")

	shares, err := SplitShares(aff, &sup, decimal.Zero, dec("100"))
	require.NoError(t, err)
	require.Len(t, shares, 2)

	require.Equal(t, 2, shares[0].AdminUserId)
	require.Equal(t, "10", shares[0].Amount.String())
	require.Equal(t, 3, shares[1].AdminUserId)
	require.Equal(t, "15", shares[1].Amount.String())
}

func TestSplitSharesTwoTierOnWin(t *testing.T) {
	// Same hierarchy, player wins 100: both shares are negative.
	aff := affiliate(2, "10")
	sup := superAffiliate(3, "25")

	shares, err := SplitShares(aff, &sup, dec("100"), decimal.Zero)
	require.NoError(t, err)
	require.Len(t, shares, 2)
	require.Equal(t, "-10", shares[0].Amount.String())
	require.Equal(t, "-15", shares[1].Amount.String())
}

func TestSplitSharesLoneSuperAffiliateTakesFullPercentage(t *testing.T) {
	sup := superAffiliate(5, "25")

	shares, err := SplitShares(sup, nil, decimal.Zero, dec("200"))
	require.NoError(t, err)
	require.Len(t, shares, 1)
	require.Equal(t, 5, shares[0].AdminUserId)
	require.Equal(t, "50", shares[0].Amount.String())
}

func TestSplitSharesLoneAffiliateNoUplineRow(t *testing.T) {
	aff := affiliate(2, "10")

	shares, err := SplitShares(aff, nil, decimal.Zero, dec("100"))
	require.NoError(t, err)
	require.Len(t, shares, 1)
	require.Equal(t, 2, shares[0].AdminUserId)
}

func TestSplitSharesEqualPercentagesSkipUplineRow(t *testing.T) {
	// Marginal share of zero is never persisted.
	aff := affiliate(2, "25")
	sup := superAffiliate(3, "25")

	shares, err := SplitShares(aff, &sup, decimal.Zero, dec("100"))
	require.NoError(t, err)
	require.Len(t, shares, 1)
	require.Equal(t, 2, shares[0].AdminUserId)
}

func TestSplitSharesInvertedPercentagesAbort(t *testing.T) {
	aff := affiliate(2, "30")
	sup := superAffiliate(3, "25")

	_, err := SplitShares(aff, &sup, decimal.Zero, dec("100"))
	require.ErrorIs(t, err, ErrInvariantViolation)
}

func TestSplitSharesBreakEvenBetYieldsNothing(t *testing.T) {
	aff := affiliate(2, "10")

	shares, err := SplitShares(aff, nil, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.Empty(t, shares)
}

func TestSplitSharesPlayerReferrerYieldsNothing(t *testing.T) {
	player := models.User{ID: 9, Role: models.RolePlayer, CommissionPercent: dec("10")}

	shares, err := SplitShares(player, nil, decimal.Zero, dec("100"))
	require.NoError(t, err)
	require.Empty(t, shares)
}

func TestSplitSharesZeroPercentAffiliateSkipped(t *testing.T) {
	aff := affiliate(2, "0")
	sup := superAffiliate(3, "25")

	shares, err := SplitShares(aff, &sup, decimal.Zero, dec("100"))
	require.NoError(t, err)
	require.Len(t, shares, 1)
	require.Equal(t, 3, shares[0].AdminUserId)
	require.Equal(t, "25", shares[0].Amount.String())
}

func TestAffiliateWithdrawLifecycle(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	seedCurrency(t, 1, "1")
	aff := seedUser(t, models.User{
		Username:          "payee",
		Role:              models.RoleAffiliate,
		CommissionPercent: dec("10"),
		RemainingBalance:  dec("80"),
		CurrencyId:        1,
	})
	testDB.Create(&models.CommissionRecord{
		BetResultId:      1,
		PlayerId:         99,
		AdminUserId:      aff.ID,
		CommissionAmount: dec("80"),
		Percentage:       dec("10"),
		Status:           models.CommissionApproved,
	})

	helper := NewHelperService(testDB, nil)
	svc := NewCommissionService(testDB, helper)

	_, err := svc.RequestAffiliateWithdraw(AffiliateWithdrawDTO{AffiliateId: aff.ID, Amount: dec("100"), CurrencyId: 1})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	trx, err := svc.RequestAffiliateWithdraw(AffiliateWithdrawDTO{AffiliateId: aff.ID, Amount: dec("80"), CurrencyId: 1})
	require.NoError(t, err)

	// Request time: approved commissions flip to paid, balance is debited.
	var record models.CommissionRecord
	testDB.Where("admin_user_id = ?", aff.ID).First(&record)
	require.Equal(t, models.CommissionPaid, record.Status)

	var reloaded models.User
	testDB.First(&reloaded, aff.ID)
	require.True(t, reloaded.RemainingBalance.IsZero())

	// Approval settles the paid commissions.
	_, err = svc.UpdateAffiliateWithdrawStatus(trx.ID, models.StatusApproved, "paid out")
	require.NoError(t, err)

	testDB.Where("admin_user_id = ?", aff.ID).First(&record)
	require.Equal(t, models.CommissionSettled, record.Status)
}

func TestAffiliateWithdrawRejectionRevertsPaidAndZeroesBalance(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	seedCurrency(t, 1, "1")
	aff := seedUser(t, models.User{
		Username:          "reverted",
		Role:              models.RoleAffiliate,
		CommissionPercent: dec("10"),
		RemainingBalance:  dec("50"),
		CurrencyId:        1,
	})
	testDB.Create(&models.CommissionRecord{
		BetResultId:      1,
		PlayerId:         99,
		AdminUserId:      aff.ID,
		CommissionAmount: dec("50"),
		Percentage:       dec("10"),
		Status:           models.CommissionApproved,
	})

	helper := NewHelperService(testDB, nil)
	svc := NewCommissionService(testDB, helper)

	trx, err := svc.RequestAffiliateWithdraw(AffiliateWithdrawDTO{AffiliateId: aff.ID, Amount: dec("50"), CurrencyId: 1})
	require.NoError(t, err)

	// Commissions reached paid, so rejection reverts them to approved and
	// leaves the withdrawable balance at zero rather than restoring it.
	_, err = svc.UpdateAffiliateWithdrawStatus(trx.ID, models.StatusRejected, "bank bounce")
	require.NoError(t, err)

	var record models.CommissionRecord
	testDB.Where("admin_user_id = ?", aff.ID).First(&record)
	require.Equal(t, models.CommissionApproved, record.Status)

	var reloaded models.User
	testDB.First(&reloaded, aff.ID)
	require.True(t, reloaded.RemainingBalance.IsZero())
}

func TestAffiliateWithdrawRepeatedRejectionCreditsOnce(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	seedCurrency(t, 1, "1")
	aff := seedUser(t, models.User{
		Username:          "replayed",
		Role:              models.RoleAffiliate,
		CommissionPercent: dec("10"),
		RemainingBalance:  dec("50"),
		CurrencyId:        1,
	})

	helper := NewHelperService(testDB, nil)
	svc := NewCommissionService(testDB, helper)

	// No commission row, so rejection restores the debited amount directly.
	trx, err := svc.RequestAffiliateWithdraw(AffiliateWithdrawDTO{AffiliateId: aff.ID, Amount: dec("50"), CurrencyId: 1})
	require.NoError(t, err)

	_, err = svc.UpdateAffiliateWithdrawStatus(trx.ID, models.StatusRejected, "bank bounce")
	require.NoError(t, err)

	var reloaded models.User
	testDB.First(&reloaded, aff.ID)
	require.Equal(t, "50", reloaded.RemainingBalance.String())

	// A replayed rejection is refused and mints nothing.
	_, err = svc.UpdateAffiliateWithdrawStatus(trx.ID, models.StatusRejected, "bank bounce")
	require.ErrorIs(t, err, ErrValidation)

	testDB.First(&reloaded, aff.ID)
	require.Equal(t, "50", reloaded.RemainingBalance.String())
}

func TestAffiliateWithdrawSettledTransactionCannotBeRejected(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	seedCurrency(t, 1, "1")
	aff := seedUser(t, models.User{
		Username:          "settled",
		Role:              models.RoleAffiliate,
		CommissionPercent: dec("10"),
		RemainingBalance:  dec("80"),
		CurrencyId:        1,
	})
	testDB.Create(&models.CommissionRecord{
		BetResultId:      1,
		PlayerId:         99,
		AdminUserId:      aff.ID,
		CommissionAmount: dec("80"),
		Percentage:       dec("10"),
		Status:           models.CommissionApproved,
	})

	helper := NewHelperService(testDB, nil)
	svc := NewCommissionService(testDB, helper)

	trx, err := svc.RequestAffiliateWithdraw(AffiliateWithdrawDTO{AffiliateId: aff.ID, Amount: dec("80"), CurrencyId: 1})
	require.NoError(t, err)

	_, err = svc.UpdateAffiliateWithdrawStatus(trx.ID, models.StatusApproved, "paid out")
	require.NoError(t, err)

	// Approval disbursed the funds; a late rejection must not claw anything
	// back into the withdrawable balance.
	_, err = svc.UpdateAffiliateWithdrawStatus(trx.ID, models.StatusRejected, "operator mistake")
	require.ErrorIs(t, err, ErrValidation)

	var record models.CommissionRecord
	testDB.Where("admin_user_id = ?", aff.ID).First(&record)
	require.Equal(t, models.CommissionSettled, record.Status)

	var reloaded models.User
	testDB.First(&reloaded, aff.ID)
	require.True(t, reloaded.RemainingBalance.IsZero())
}
