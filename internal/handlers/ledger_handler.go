package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ledger-service/internal/models"
	"ledger-service/internal/services"
	"ledger-service/pkg/common"
)

// LedgerHandler exposes the settlement engine over HTTP. It does request
// binding and error mapping only; every rule lives in the services.
type LedgerHandler struct {
	DB          *gorm.DB
	Transaction *services.TransactionService
	Withdrawal  *services.WithdrawalService
	Balance     *services.BalanceService
	Bet         *services.BetService
	Commission  *services.CommissionService
}

func NewLedgerHandler(db *gorm.DB, transaction *services.TransactionService, withdrawal *services.WithdrawalService, balance *services.BalanceService, bet *services.BetService, commission *services.CommissionService) *LedgerHandler {
	return &LedgerHandler{
		DB:          db,
		Transaction: transaction,
		Withdrawal:  withdrawal,
		Balance:     balance,
		Bet:         bet,
		Commission:  commission,
	}
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrKycRequired),
		errors.Is(err, services.ErrAccountInactive),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrTurnoverPending):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrConcurrencyConflict):
		status = http.StatusConflict
	}
	c.JSON(status, common.NewErrorResponse(err.Error(), nil, status))
}

type CreateDepositRequest struct {
	UserId      int             `json:"userId" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	CurrencyId  int             `json:"currencyId" binding:"required"`
	PromotionId *int            `json:"promotionId"`
	GatewayId   *int            `json:"gatewayId"`
	Notes       string          `json:"notes"`
}

func (h *LedgerHandler) CreateDeposit(c *gin.Context) {
	var req CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	result, err := h.Transaction.CreateDeposit(services.DepositDTO{
		UserId:      req.UserId,
		Amount:      req.Amount,
		CurrencyId:  req.CurrencyId,
		PromotionId: req.PromotionId,
		GatewayId:   req.GatewayId,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(result, "Deposit request created"))
}

type CreateWithdrawRequest struct {
	UserId     int             `json:"userId" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	CurrencyId int             `json:"currencyId" binding:"required"`
	GatewayId  *int            `json:"gatewayId"`
	Notes      string          `json:"notes"`
}

func (h *LedgerHandler) CreateWithdraw(c *gin.Context) {
	var req CreateWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	trx, err := h.Withdrawal.CreateWithdraw(services.WithdrawDTO{
		UserId:     req.UserId,
		Amount:     req.Amount,
		CurrencyId: req.CurrencyId,
		GatewayId:  req.GatewayId,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(gin.H{"transactionId": trx.ID}, "Withdrawal request created"))
}

type UpdateStatusRequest struct {
	Status          string `json:"status" binding:"required"`
	Notes           string `json:"notes"`
	ProcessedBy     string `json:"processedBy"`
	ProcessedByUser *int   `json:"processedByUser"`
}

func (h *LedgerHandler) UpdateTransactionStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid transaction id", nil, http.StatusBadRequest))
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	trx, err := h.Transaction.UpdateTransactionStatus(id, req.Status, req.Notes, req.ProcessedBy, req.ProcessedByUser)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(trx, "Transaction updated"))
}

type ClaimSpinBonusRequest struct {
	UserId             int             `json:"userId" binding:"required"`
	Amount             decimal.Decimal `json:"amount" binding:"required"`
	CurrencyId         int             `json:"currencyId" binding:"required"`
	TurnoverMultiplier decimal.Decimal `json:"turnoverMultiplier"`
	Notes              string          `json:"notes"`
}

func (h *LedgerHandler) ClaimSpinBonus(c *gin.Context) {
	var req ClaimSpinBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	trx, err := h.Transaction.ClaimSpinBonus(services.SpinBonusDTO{
		UserId:             req.UserId,
		Amount:             req.Amount,
		CurrencyId:         req.CurrencyId,
		TurnoverMultiplier: req.TurnoverMultiplier,
		Notes:              req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(trx, "Spin bonus claimed"))
}

type ClaimNotificationRequest struct {
	UserId int `json:"userId" binding:"required"`
}

func (h *LedgerHandler) ClaimNotification(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid transaction id", nil, http.StatusBadRequest))
		return
	}

	var req ClaimNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	trx, err := h.Transaction.ClaimNotification(id, req.UserId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(trx, "Bonus claimed"))
}

func (h *LedgerHandler) GetBalance(c *gin.Context) {
	userId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid user id", nil, http.StatusBadRequest))
		return
	}

	var currencyId *int
	if raw := c.Query("currencyId"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid currencyId", nil, http.StatusBadRequest))
			return
		}
		currencyId = &parsed
	}

	balance, err := h.Balance.CalculatePlayerBalance(nil, userId, currencyId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(balance, "Balance computed"))
}

func (h *LedgerHandler) CheckWithdrawCapability(c *gin.Context) {
	userId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid user id", nil, http.StatusBadRequest))
		return
	}

	capability, err := h.Withdrawal.CheckWithdrawCapability(userId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(capability, "Capability checked"))
}

type CreateBetSessionRequest struct {
	UserId    int             `json:"userId" binding:"required"`
	GameId    string          `json:"gameId"`
	BetAmount decimal.Decimal `json:"betAmount" binding:"required"`
}

func (h *LedgerHandler) CreateBetSession(c *gin.Context) {
	var req CreateBetSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	bet, err := h.Bet.CreateBetSession(req.UserId, req.GameId, req.BetAmount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(gin.H{
		"betResultId":  bet.ID,
		"sessionToken": bet.SessionToken,
	}, "Bet session created"))
}

type UpdateBetResultRequest struct {
	SessionToken  string          `json:"sessionToken" binding:"required"`
	Status        string          `json:"status" binding:"required"`
	WinAmount     decimal.Decimal `json:"winAmount"`
	LossAmount    decimal.Decimal `json:"lossAmount"`
	GameSessionId string          `json:"gameSessionId"`
}

func (h *LedgerHandler) UpdateBetResult(c *gin.Context) {
	var req UpdateBetResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	ok, err := h.Bet.UpdateBetResult(req.SessionToken, req.Status, req.WinAmount, req.LossAmount, req.GameSessionId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"settled": ok}, "Bet settled"))
}

type AffiliateWithdrawRequest struct {
	AffiliateId int             `json:"affiliateId" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	CurrencyId  int             `json:"currencyId" binding:"required"`
}

func (h *LedgerHandler) RequestAffiliateWithdraw(c *gin.Context) {
	var req AffiliateWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	trx, err := h.Commission.RequestAffiliateWithdraw(services.AffiliateWithdrawDTO{
		AffiliateId: req.AffiliateId,
		Amount:      req.Amount,
		CurrencyId:  req.CurrencyId,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(gin.H{"transactionId": trx.ID}, "Affiliate withdrawal requested"))
}

type AffiliateWithdrawStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

func (h *LedgerHandler) UpdateAffiliateWithdrawStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid transaction id", nil, http.StatusBadRequest))
		return
	}

	var req AffiliateWithdrawStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	trx, err := h.Commission.UpdateAffiliateWithdrawStatus(id, req.Status, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(trx, "Affiliate withdrawal updated"))
}

type CommissionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *LedgerHandler) UpdateCommissionStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid commission id", nil, http.StatusBadRequest))
		return
	}

	var req CommissionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	record, err := h.Commission.UpdateCommissionStatus(id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(record, "Commission updated"))
}

func (h *LedgerHandler) CompanyBalance(c *gin.Context) {
	total, err := h.Balance.CompanyMainBalance()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"mainBalance": total}, "Company balance computed"))
}

func (h *LedgerHandler) GetTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.DB.Model(&models.Transaction{})
	if raw := c.Query("userId"); raw != "" {
		userId, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid userId", nil, http.StatusBadRequest))
			return
		}
		query = query.Where("user_id = ?", userId)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var rows []models.Transaction
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.PaginateResponse(rows, total, page, limit, ""))
}
