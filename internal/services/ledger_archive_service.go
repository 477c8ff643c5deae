package services

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"ledger-service/internal/models"
)

// LedgerArchiveService moves stale rejected transactions into the cold table.
// Approved rows are never archived: balances are derived by folding the live
// log, so removing an approved row would change every balance computed after
// the sweep. Rejected rows carry no balance weight and can move safely.
type LedgerArchiveService struct {
	DB *gorm.DB
}

func NewLedgerArchiveService(db *gorm.DB) *LedgerArchiveService {
	return &LedgerArchiveService{DB: db}
}

// ArchiveTransactions sweeps rejected transactions older than four months.
func (s *LedgerArchiveService) ArchiveTransactions() {
	cutoff := time.Now().AddDate(0, -4, 0)

	var stale []models.Transaction
	if err := s.DB.Where("status = ? AND created_at < ?", models.StatusRejected, cutoff).
		Find(&stale).Error; err != nil {
		log.Printf("archive: finding stale transactions failed: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	archived := make([]models.ArchivedTransaction, 0, len(stale))
	ids := make([]int, 0, len(stale))
	for _, trx := range stale {
		archived = append(archived, models.ArchivedTransaction{
			UserId:              trx.UserId,
			AffiliateId:         trx.AffiliateId,
			Type:                trx.Type,
			Amount:              trx.Amount,
			BonusAmount:         trx.BonusAmount,
			CurrencyId:          trx.CurrencyId,
			ConversionRate:      trx.ConversionRate,
			Status:              trx.Status,
			CustomTransactionId: trx.CustomTransactionId,
			Notes:               trx.Notes,
			CreatedAt:           trx.CreatedAt,
			UpdatedAt:           trx.UpdatedAt,
		})
		ids = append(ids, trx.ID)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&archived).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Transaction{}, ids).Error
	})
	if err != nil {
		log.Printf("archive: moving %d transactions failed: %v", len(stale), err)
		return
	}
	log.Printf("archive: moved %d rejected transactions", len(stale))
}

// StartScheduler runs the sweep daily at midnight.
func (s *LedgerArchiveService) StartScheduler() {
	c := cron.New()
	if _, err := c.AddFunc("0 0 * * *", s.ArchiveTransactions); err != nil {
		log.Printf("archive: scheduling failed: %v", err)
		return
	}
	c.Start()
	log.Println("transaction archive scheduler started (daily at 00:00)")
}
